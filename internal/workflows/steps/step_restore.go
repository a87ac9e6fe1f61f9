// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"

	"github.com/automa-saga/automa"

	"github.com/dataops-works/airlift/internal/workflows/notify"
)

const RestoreBackupStepId = "restore-backup"

// RestoreBackup restores the target tree from the most recent snapshot.
// Used by the standalone rollback command; the pipeline's automatic
// rollback goes through the backup step's rollback handler instead.
func RestoreBackup(p *Pipeline) *automa.StepBuilder {
	return automa.NewStepBuilder().WithId(RestoreBackupStepId).
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Restoring %s from latest backup", p.Config.TargetDir)
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "Restore failed")
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "Restore finished")
		}).
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			snap, err := p.Backup.Latest(BackupName)
			if err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			if err := p.Backup.Restore(snap, p.Config.TargetDir); err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			return automa.SuccessReport(stp, automa.WithMetadata(map[string]string{
				"snapshot": snap.Path,
				"restored": p.Config.TargetDir,
			}))
		})
}
