// SPDX-License-Identifier: Apache-2.0

package migratecmd

import (
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/cmd/airlift/commands/common"
	"github.com/dataops-works/airlift/internal/workflows"
)

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Migrate only the connections file",
	Long:  "Normalizes connection types and extras from the exported connections JSON file into the target directory.",
	Run: func(cmd *cobra.Command, args []string) {
		p := common.BuildPipeline(cmd.Context(), migrateFlags(), false)
		common.RunWorkflow(cmd.Context(), workflows.ConnectionsWorkflow(p))
	},
}
