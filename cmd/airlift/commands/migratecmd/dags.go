// SPDX-License-Identifier: Apache-2.0

package migratecmd

import (
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/cmd/airlift/commands/common"
	"github.com/dataops-works/airlift/internal/workflows"
)

var dagsCmd = &cobra.Command{
	Use:   "dags",
	Short: "Migrate only the DAG source files",
	Long:  "Rewrites the DAG source tree into the target directory and validates the result. No backup or schema stages run.",
	Run: func(cmd *cobra.Command, args []string) {
		p := common.BuildPipeline(cmd.Context(), migrateFlags(), false)
		common.RunWorkflow(cmd.Context(), workflows.DagsWorkflow(p))
	},
}
