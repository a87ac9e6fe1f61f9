// SPDX-License-Identifier: Apache-2.0

package migratecmd

import (
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/cmd/airlift/commands/common"
	"github.com/dataops-works/airlift/internal/workflows"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Migrate only the plugin files",
	Long:  "Rewrites plugin sources into the target plugins subtree, annotating hook, operator and sensor classes with upgrade advisories.",
	Run: func(cmd *cobra.Command, args []string) {
		p := common.BuildPipeline(cmd.Context(), migrateFlags(), false)
		common.RunWorkflow(cmd.Context(), workflows.PluginsWorkflow(p))
	},
}
