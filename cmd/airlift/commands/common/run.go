// SPDX-License-Identifier: Apache-2.0

package common

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/automa-saga/automa"
	"github.com/automa-saga/logx"
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/internal/config"
	"github.com/dataops-works/airlift/internal/core"
	"github.com/dataops-works/airlift/internal/doctor"
	"github.com/dataops-works/airlift/internal/pattern"
	"github.com/dataops-works/airlift/internal/schema"
	"github.com/dataops-works/airlift/internal/workflows/steps"
)

// RunWorkflow executes a workflow and handles error
func RunWorkflow(ctx context.Context, b automa.Builder) {
	wb, err := b.Build()
	if err != nil {
		doctor.CheckErr(ctx, err)
	}

	report := wb.Execute(ctx)
	CheckWorkflowReport(ctx, report)
}

func CheckWorkflowReport(ctx context.Context, report *automa.Report) {
	if report.Error != nil {
		doctor.CheckReportErr(ctx, report)
	}

	// For each step that failed, run the doctor to diagnose the error
	if len(report.StepReports) > 0 {
		for _, stepReport := range report.StepReports {
			if stepReport.Status == automa.StatusFailed {
				doctor.CheckReportErr(ctx, stepReport)
			}
		}
	}

	timestamp := time.Now().Format("20060102_150405")
	reportPath := path.Join(core.Paths().ReportsDir, fmt.Sprintf("migration_report_%s.yaml", timestamp))
	steps.PrintWorkflowReport(report, reportPath)
	logx.As().Info().Str("report_path", reportPath).Msg("Workflow report is saved")
}

// MigrateFlags carries the per-command flag overrides for pipeline runs.
type MigrateFlags struct {
	SourceDir       string
	TargetDir       string
	BackupDir       string
	ConnectionsFile string
	PluginsDir      string
	DryRun          bool
	SkipTaskflow    bool
}

// BuildPipeline merges the flag overrides into the loaded configuration and
// wires a pipeline. When withSchema is set, a database environment for the
// configured deployment environment is attached (required outside dry runs).
func BuildPipeline(ctx context.Context, flags MigrateFlags, withSchema bool) *steps.Pipeline {
	config.OverrideMigrationConfig(config.MigrationConfig{
		SourceDir:       flags.SourceDir,
		TargetDir:       flags.TargetDir,
		BackupDir:       flags.BackupDir,
		ConnectionsFile: flags.ConnectionsFile,
		PluginsDir:      flags.PluginsDir,
		DryRun:          flags.DryRun,
		SkipTaskflow:    flags.SkipTaskflow,
	})
	cfg := config.Get()

	var env *schema.Environment
	if withSchema && !cfg.Migration.DryRun {
		if target, err := cfg.Database.Target(cfg.Environment); err == nil {
			env = ConnectSchemaEnvironment(ctx, target)
		} else {
			logx.As().Warn().
				Str("environment", cfg.Environment).
				Msg("No database target configured, schema stage will be skipped")
		}
	}

	p, err := steps.NewPipeline(cfg.Migration, pattern.Default(), logx.As(), env)
	if err != nil {
		doctor.CheckErr(ctx, err)
	}
	return p
}

// ConnectSchemaEnvironment opens the metadata database for the given target.
// Credentials come from the process environment.
func ConnectSchemaEnvironment(ctx context.Context, target config.DatabaseTarget) *schema.Environment {
	user := os.Getenv(config.EnvVarDatabaseUser)
	password := os.Getenv(config.EnvVarDatabasePassword)

	env, _, err := schema.Connect(schema.DefaultChain(), schema.Target{
		Environment: config.Get().Environment,
		Instance:    target.Instance,
		Project:     target.Project,
		Region:      target.Region,
		Host:        target.Host,
		Port:        target.Port,
		Database:    target.Database,
		SSLMode:     target.SSLMode,
	}, user, password, schema.WithLogger(logx.As()))
	if err != nil {
		doctor.CheckErr(ctx, err)
	}
	return env
}

// DefaultRunE is a default RunE function that shows help message and provides a placeholder to add common behaviour.
// We always add a run function to commands to ensure cobra marks it as Runnable and allows our commands to invoke
// PersistentPreRunE functions of the root command.
func DefaultRunE(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}
