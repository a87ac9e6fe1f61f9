// SPDX-License-Identifier: Apache-2.0

// Package migratecmd implements the `airlift migrate` command group: the
// full pipeline plus per-artifact subcommands for DAGs, connections and
// plugins.
package migratecmd

import (
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/cmd/airlift/commands/common"
	"github.com/dataops-works/airlift/internal/workflows"
)

var (
	flagSourceDir       string
	flagTargetDir       string
	flagBackupDir       string
	flagConnectionsFile string
	flagPluginsDir      string
	flagDryRun          bool
	flagSkipTaskflow    bool

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Run the full Airflow 1.x to 2.x migration pipeline",
		Long: "Runs backup, schema migration, DAG file migration, connection migration, " +
			"plugin migration and validation as one pipeline. A failed stage rolls the " +
			"migration back from the backup.",
		Run: func(cmd *cobra.Command, args []string) {
			p := common.BuildPipeline(cmd.Context(), migrateFlags(), true)
			common.RunWorkflow(cmd.Context(), workflows.MigrationWorkflow(p))
		},
	}
)

func init() {
	common.FlagSourceDir.SetVarP(migrateCmd, &flagSourceDir, true)
	common.FlagTargetDir.SetVarP(migrateCmd, &flagTargetDir, true)
	common.FlagBackupDir.SetVarP(migrateCmd, &flagBackupDir, false)
	common.FlagConnectionsFile.SetVarP(migrateCmd, &flagConnectionsFile, false)
	common.FlagPluginsDir.SetVarP(migrateCmd, &flagPluginsDir, false)
	common.FlagDryRun.SetVarP(migrateCmd, &flagDryRun, false)
	common.FlagSkipTaskflow.SetVarP(migrateCmd, &flagSkipTaskflow, false)

	migrateCmd.AddCommand(dagsCmd)
	migrateCmd.AddCommand(connectionsCmd)
	migrateCmd.AddCommand(pluginsCmd)
}

func migrateFlags() common.MigrateFlags {
	return common.MigrateFlags{
		SourceDir:       flagSourceDir,
		TargetDir:       flagTargetDir,
		BackupDir:       flagBackupDir,
		ConnectionsFile: flagConnectionsFile,
		PluginsDir:      flagPluginsDir,
		DryRun:          flagDryRun,
		SkipTaskflow:    flagSkipTaskflow,
	}
}

func GetCmd() *cobra.Command {
	return migrateCmd
}
