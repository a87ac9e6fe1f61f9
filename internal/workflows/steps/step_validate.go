// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/automa-saga/automa"

	"github.com/dataops-works/airlift/internal/validate"
	"github.com/dataops-works/airlift/internal/workflows/notify"
)

// ValidateMigration scans the migrated tree for residual deprecated
// patterns. Findings are advisory: a warning status never fails the step
// and never triggers rollback. Only a fault inside the scan itself fails.
func ValidateMigration(p *Pipeline) *automa.StepBuilder {
	return automa.NewStepBuilder().WithId(ValidateMigrationStepId).
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Validating migrated files in %s", p.Config.TargetDir)
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "Validation failed")
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "Validation finished")
		}).
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			if p.Config.DryRun {
				return automa.SkippedReport(stp, automa.WithDetail("dry run, no migrated files to validate"))
			}

			validator := validate.New(p.Table, validate.WithLogger(p.Logger))
			report, err := validator.ValidateTree(p.Config.TargetDir)
			if err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			if p.Config.ConnectionsFile != "" {
				target := filepath.Join(p.Config.TargetDir, connectionsTargetName)
				if err := validator.ValidateConnections(target, report); err != nil {
					return automa.FailureReport(stp, automa.WithError(err))
				}
			}

			p.ValidationReport = report
			return automa.SuccessReport(stp, automa.WithMetadata(map[string]string{
				"status":         string(report.Status),
				"dagsChecked":    strconv.Itoa(report.Stats.DagsChecked),
				"dagsWithIssues": strconv.Itoa(report.Stats.DagsWithIssues),
				"totalIssues":    strconv.Itoa(report.Stats.TotalIssues),
			}))
		})
}
