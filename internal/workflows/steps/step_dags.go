// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"
	"strconv"

	"github.com/automa-saga/automa"

	"github.com/dataops-works/airlift/internal/migrate"
	"github.com/dataops-works/airlift/internal/workflows/notify"
)

// MigrateDags rewrites the DAG source tree into the target directory. The
// batch is best-effort: individual file failures downgrade the batch to
// warning and never fail the step. Only an I/O level fault on the batch
// itself (unreadable source directory) fails the stage.
func MigrateDags(p *Pipeline) *automa.StepBuilder {
	return automa.NewStepBuilder().WithId(MigrateDagsStepId).
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Migrating DAG files from %s", p.Config.SourceDir)
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "DAG migration failed")
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "DAG migration finished")
		}).
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			batch := p.dagMigrator().MigrateDirectory(p.Config.SourceDir, p.Config.TargetDir)
			if batch.Status == migrate.StatusError {
				return automa.FailureReport(stp, automa.WithError(batchError(batch)))
			}
			return automa.SuccessReport(stp, automa.WithMetadata(batchMetadata(batch)))
		})
}

// batchMetadata flattens batch counters for the workflow report.
func batchMetadata(batch migrate.BatchResult) map[string]string {
	return map[string]string{
		"status":     string(batch.Status),
		"processed":  strconv.Itoa(batch.Stats.Processed),
		"successful": strconv.Itoa(batch.Stats.Successful),
		"issues":     strconv.Itoa(batch.Stats.Issues),
	}
}

// batchError surfaces the first per-item issue as the step error.
func batchError(batch migrate.BatchResult) error {
	for _, r := range batch.Results {
		if r.Status == migrate.StatusError && len(r.Issues) > 0 {
			return migrate.IOError.New("%s: %s", r.SourcePath, r.Issues[0])
		}
	}
	return migrate.IOError.New("migration batch failed")
}
