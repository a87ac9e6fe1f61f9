// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"

	"github.com/automa-saga/automa"
	"github.com/joomcode/errorx"

	"github.com/dataops-works/airlift/internal/backup"
	"github.com/dataops-works/airlift/internal/workflows/notify"
)

// CreateBackup snapshots the source tree before any mutating stage runs.
// Its rollback restores the target tree from that snapshot, which undoes
// every later stage in one move when the pipeline runs with rollback-on-error.
// In dry-run mode nothing is mutated, so the step is skipped entirely.
func CreateBackup(p *Pipeline) *automa.StepBuilder {
	return automa.NewStepBuilder().WithId(CreateBackupStepId).
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Creating backup of %s", p.Config.SourceDir)
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "Backup creation failed")
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "Backup created")
		}).
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			if p.Config.DryRun {
				return automa.SkippedReport(stp, automa.WithDetail("dry run, nothing will be mutated"))
			}

			snap, err := p.Backup.Create(BackupName, p.Config.SourceDir)
			if err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			if p.Config.KeepBackups > 0 {
				if _, err := p.Backup.Prune(BackupName, p.Config.KeepBackups); err != nil {
					// pruning failure must not abort the migration
					p.Logger.Warn().Err(err).Msg("Failed to prune old backups")
				}
			}

			stp.State().Local().Set(StateSnapshotPath, snap.Path)
			return automa.SuccessReport(stp, automa.WithMetadata(map[string]string{
				"snapshot": snap.Path,
			}))
		}).
		WithRollback(func(ctx context.Context, stp automa.Step) *automa.Report {
			snapshotPath, _ := stp.State().Local().String(StateSnapshotPath)
			if snapshotPath == "" {
				return automa.StepSkippedReport(stp.Id())
			}

			snap := &backup.Snapshot{Name: BackupName, Path: snapshotPath}
			if err := p.Backup.Restore(snap, p.Config.TargetDir); err != nil {
				return automa.FailureReport(stp,
					automa.WithError(errorx.IllegalState.Wrap(err, "failed to restore %s from backup", p.Config.TargetDir)))
			}
			return automa.SuccessReport(stp, automa.WithMetadata(map[string]string{
				"restored": p.Config.TargetDir,
				"snapshot": snapshotPath,
			}))
		})
}
