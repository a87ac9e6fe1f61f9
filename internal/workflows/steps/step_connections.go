// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"
	"path/filepath"

	"github.com/automa-saga/automa"

	"github.com/dataops-works/airlift/internal/migrate"
	"github.com/dataops-works/airlift/internal/workflows/notify"
)

// connectionsTargetName is used when no explicit target path is configured.
const connectionsTargetName = "connections.json"

// MigrateConnections normalizes the connections file into the target
// directory. The stage is skipped when no connections file is configured;
// per-record decode failures only degrade the batch to warning.
func MigrateConnections(p *Pipeline) *automa.StepBuilder {
	return automa.NewStepBuilder().WithId(MigrateConnectionsStepId).
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Migrating connections from %s", p.Config.ConnectionsFile)
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "Connection migration failed")
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "Connection migration finished")
		}).
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			if p.Config.ConnectionsFile == "" {
				return automa.SkippedReport(stp, automa.WithDetail("no connections file configured"))
			}

			target := filepath.Join(p.Config.TargetDir, connectionsTargetName)
			batch := p.connMigrator().MigrateConnections(p.Config.ConnectionsFile, target)
			if batch.Status == migrate.StatusError {
				return automa.FailureReport(stp, automa.WithError(batchError(batch)))
			}
			return automa.SuccessReport(stp, automa.WithMetadata(batchMetadata(batch)))
		})
}
