// SPDX-License-Identifier: Apache-2.0

// Package rollbackcmd implements `airlift rollback`, restoring the target
// tree from the most recent backup snapshot.
package rollbackcmd

import (
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/cmd/airlift/commands/common"
	"github.com/dataops-works/airlift/internal/workflows"
)

var (
	flagTargetDir string
	flagBackupDir string

	rollbackCmd = &cobra.Command{
		Use:   "rollback",
		Short: "Restore the target directory from the latest backup",
		Run: func(cmd *cobra.Command, args []string) {
			p := common.BuildPipeline(cmd.Context(), common.MigrateFlags{
				SourceDir: flagTargetDir,
				TargetDir: flagTargetDir,
				BackupDir: flagBackupDir,
			}, false)
			common.RunWorkflow(cmd.Context(), workflows.RollbackWorkflow(p))
		},
	}
)

func init() {
	common.FlagTargetDir.SetVar(rollbackCmd, &flagTargetDir, true)
	common.FlagBackupDir.SetVar(rollbackCmd, &flagBackupDir, false)
}

func GetCmd() *cobra.Command {
	return rollbackCmd
}
