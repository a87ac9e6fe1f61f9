// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"
	"os"
	"path/filepath"

	"github.com/automa-saga/automa"

	"github.com/dataops-works/airlift/internal/migrate"
	"github.com/dataops-works/airlift/internal/workflows/notify"
)

// pluginsTargetName mirrors the conventional plugins subtree in the target.
const pluginsTargetName = "plugins"

// MigratePlugins rewrites the plugins subtree. A missing plugins directory
// is normal (many deployments have none) and skips the stage.
func MigratePlugins(p *Pipeline) *automa.StepBuilder {
	return automa.NewStepBuilder().WithId(MigratePluginsStepId).
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Migrating plugins from %s", p.Config.PluginsDir)
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "Plugin migration failed")
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "Plugin migration finished")
		}).
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			if p.Config.PluginsDir == "" {
				return automa.SkippedReport(stp, automa.WithDetail("no plugins directory configured"))
			}
			if _, err := os.Stat(p.Config.PluginsDir); os.IsNotExist(err) {
				return automa.SkippedReport(stp, automa.WithDetail("plugins directory does not exist"))
			}

			target := filepath.Join(p.Config.TargetDir, pluginsTargetName)
			migrator := migrate.NewPluginMigrator(p.Table, pluginOptions(p)...)
			batch := migrator.MigrateDirectory(p.Config.PluginsDir, target)
			if batch.Status == migrate.StatusError {
				return automa.FailureReport(stp, automa.WithError(batchError(batch)))
			}
			return automa.SuccessReport(stp, automa.WithMetadata(batchMetadata(batch)))
		})
}

func pluginOptions(p *Pipeline) []migrate.DAGOption {
	opts := []migrate.DAGOption{migrate.WithDAGLogger(p.Logger), migrate.WithSkipTaskflow(true)}
	if p.Config.DryRun {
		opts = append(opts, migrate.WithDryRun(true))
	}
	return opts
}
