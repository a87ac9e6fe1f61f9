// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"

	"github.com/automa-saga/automa"
	"github.com/joomcode/errorx"

	"github.com/dataops-works/airlift/internal/workflows/notify"
)

// MigrateSchema upgrades the metadata database to the chain head. The
// starting revision is recorded in step state so rollback can downgrade
// back to exactly where the run began. Dry runs and runs without a
// configured database environment skip the stage.
func MigrateSchema(p *Pipeline) *automa.StepBuilder {
	return automa.NewStepBuilder().WithId(MigrateSchemaStepId).
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Migrating database schema")
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "Database schema migration failed")
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "Database schema migration finished")
		}).
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			if p.Config.DryRun {
				return automa.SkippedReport(stp, automa.WithDetail("dry run, schema left untouched"))
			}
			if p.Environ == nil {
				return automa.SkippedReport(stp, automa.WithDetail("no database environment configured"))
			}

			current, err := p.Environ.Current(ctx)
			if err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			if err := p.Environ.Upgrade(ctx, ""); err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			stp.State().Local().Set(StateStartRevision, current)
			stp.State().Local().Set(StateSchemaApplied, true)
			return automa.SuccessReport(stp, automa.WithMetadata(map[string]string{
				"from": orBase(current),
				"to":   p.Environ.HeadRevision(),
			}))
		}).
		WithRollback(func(ctx context.Context, stp automa.Step) *automa.Report {
			applied, _ := stp.State().Local().Bool(StateSchemaApplied)
			if !applied {
				return automa.StepSkippedReport(stp.Id())
			}

			start, _ := stp.State().Local().String(StateStartRevision)
			target := start
			if target == "" {
				target = "base"
			}
			if err := p.Environ.Downgrade(ctx, target); err != nil {
				return automa.FailureReport(stp,
					automa.WithError(errorx.IllegalState.Wrap(err, "failed to downgrade schema to %s", orBase(start))))
			}
			return automa.SuccessReport(stp, automa.WithMetadata(map[string]string{
				"downgradedTo": orBase(start),
			}))
		})
}

func orBase(revision string) string {
	if revision == "" {
		return "base"
	}
	return revision
}
