// SPDX-License-Identifier: Apache-2.0

// Package steps defines the individual saga steps of the migration pipeline.
// Each step factory returns an automa step builder; the workflows package
// assembles them into the full pipeline. Steps share state through the
// Pipeline value and, for rollback bookkeeping, through per-step state.
package steps

import (
	"github.com/joomcode/errorx"
	"github.com/rs/zerolog"

	"github.com/dataops-works/airlift/internal/backup"
	"github.com/dataops-works/airlift/internal/config"
	"github.com/dataops-works/airlift/internal/migrate"
	"github.com/dataops-works/airlift/internal/pattern"
	"github.com/dataops-works/airlift/internal/schema"
	"github.com/dataops-works/airlift/internal/validate"
)

// Step ids used by the migration pipeline.
const (
	CreateBackupStepId       = "create-backup"
	MigrateSchemaStepId      = "migrate-database-schema"
	MigrateDagsStepId        = "migrate-dag-files"
	MigrateConnectionsStepId = "migrate-connections"
	MigratePluginsStepId     = "migrate-plugins"
	ValidateMigrationStepId  = "validate-migration"
)

// Per-step state keys used for rollback bookkeeping.
const (
	StateSnapshotPath  = "snapshotPath"
	StateStartRevision = "startRevision"
	StateSchemaApplied = "schemaApplied"
)

// BackupName is the logical snapshot name shared by all pipeline backups.
const BackupName = "airflow_migration"

// Pipeline carries the shared collaborators of one migration run. It is
// built once per invocation and closed over by every step.
type Pipeline struct {
	Config  config.MigrationConfig
	Table   *pattern.Table
	Backup  *backup.Manager
	Logger  *zerolog.Logger
	Environ *schema.Environment // nil when the schema stage is skipped

	// ValidationReport is populated by the validation step so the caller
	// can render it after the workflow finishes.
	ValidationReport *validate.Report
}

// NewPipeline wires the migrators and backup manager for one run.
func NewPipeline(cfg config.MigrationConfig, table *pattern.Table, logger *zerolog.Logger, env *schema.Environment) (*Pipeline, error) {
	if cfg.SourceDir == "" || cfg.TargetDir == "" {
		return nil, errorx.IllegalArgument.New("source and target directories are required")
	}

	p := &Pipeline{
		Config:  cfg,
		Table:   table,
		Logger:  logger,
		Environ: env,
	}

	if !cfg.DryRun {
		mgr, err := backup.NewManager(cfg.BackupDir, backup.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		p.Backup = mgr
	}
	return p, nil
}

// dagMigrator builds a DAG migrator honoring the pipeline flags.
func (p *Pipeline) dagMigrator() *migrate.DAGMigrator {
	opts := []migrate.DAGOption{migrate.WithDAGLogger(p.Logger)}
	if p.Config.DryRun {
		opts = append(opts, migrate.WithDryRun(true))
	}
	if p.Config.SkipTaskflow {
		opts = append(opts, migrate.WithSkipTaskflow(true))
	}
	return migrate.NewDAGMigrator(p.Table, opts...)
}

// connMigrator builds a connection migrator honoring the pipeline flags.
func (p *Pipeline) connMigrator() *migrate.ConnectionMigrator {
	opts := []migrate.ConnOption{migrate.WithConnLogger(p.Logger)}
	if p.Config.DryRun {
		opts = append(opts, migrate.WithConnDryRun(true))
	}
	return migrate.NewConnectionMigrator(p.Table, opts...)
}
