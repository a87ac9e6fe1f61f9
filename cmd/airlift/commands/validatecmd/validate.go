// SPDX-License-Identifier: Apache-2.0

// Package validatecmd implements `airlift validate`, advisory validation of
// an already migrated target tree.
package validatecmd

import (
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/cmd/airlift/commands/common"
	"github.com/dataops-works/airlift/internal/workflows"
)

var (
	flagTargetDir       string
	flagConnectionsFile string

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Scan migrated files for residual deprecated patterns",
		Long: "Checks the migrated target tree and connections file for deprecated imports, " +
			"operator classes, parameters and connection types. Findings are advisory and " +
			"never fail the command.",
		Run: func(cmd *cobra.Command, args []string) {
			p := common.BuildPipeline(cmd.Context(), common.MigrateFlags{
				// validation reads the target tree only; the source
				// directory is irrelevant but required by the pipeline
				SourceDir:       flagTargetDir,
				TargetDir:       flagTargetDir,
				ConnectionsFile: flagConnectionsFile,
			}, false)
			common.RunWorkflow(cmd.Context(), workflows.ValidateWorkflow(p))
		},
	}
)

func init() {
	common.FlagTargetDir.SetVar(validateCmd, &flagTargetDir, true)
	common.FlagConnectionsFile.SetVar(validateCmd, &flagConnectionsFile, false)
}

func GetCmd() *cobra.Command {
	return validateCmd
}
