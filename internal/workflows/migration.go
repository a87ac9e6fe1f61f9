// SPDX-License-Identifier: Apache-2.0

// Package workflows assembles the saga steps into runnable pipelines. The
// full migration runs with rollback-on-error so a failed stage restores the
// target tree and downgrades the schema before the process exits.
package workflows

import (
	"github.com/automa-saga/automa"

	"github.com/dataops-works/airlift/internal/workflows/steps"
)

const MigrationWorkflowId = "airflow-migration"

// MigrationWorkflow sequences the full migration pipeline:
// backup, schema, DAG files, connections, plugins, validation.
func MigrationWorkflow(p *steps.Pipeline) automa.Builder {
	return automa.NewWorkflowBuilder().WithId(MigrationWorkflowId).
		WithExecutionMode(automa.RollbackOnError).
		Steps(
			steps.CreateBackup(p),
			steps.MigrateSchema(p),
			steps.MigrateDags(p),
			steps.MigrateConnections(p),
			steps.MigratePlugins(p),
			steps.ValidateMigration(p),
		)
}

// DagsWorkflow migrates only the DAG source tree, without backup or schema
// stages. Intended for iterating on code migration results.
func DagsWorkflow(p *steps.Pipeline) automa.Builder {
	return automa.NewWorkflowBuilder().WithId("migrate-dags").
		WithExecutionMode(automa.StopOnError).
		Steps(
			steps.MigrateDags(p),
			steps.ValidateMigration(p),
		)
}

// ConnectionsWorkflow migrates only the connections file.
func ConnectionsWorkflow(p *steps.Pipeline) automa.Builder {
	return automa.NewWorkflowBuilder().WithId("migrate-connections").
		WithExecutionMode(automa.StopOnError).
		Steps(
			steps.MigrateConnections(p),
		)
}

// PluginsWorkflow migrates only the plugins subtree.
func PluginsWorkflow(p *steps.Pipeline) automa.Builder {
	return automa.NewWorkflowBuilder().WithId("migrate-plugins").
		WithExecutionMode(automa.StopOnError).
		Steps(
			steps.MigratePlugins(p),
		)
}

// RollbackWorkflow restores the target tree from the latest backup.
func RollbackWorkflow(p *steps.Pipeline) automa.Builder {
	return automa.NewWorkflowBuilder().WithId("rollback-migration").
		WithExecutionMode(automa.StopOnError).
		Steps(
			steps.RestoreBackup(p),
		)
}

// ValidateWorkflow runs only the validation stage against an already
// migrated target tree.
func ValidateWorkflow(p *steps.Pipeline) automa.Builder {
	return automa.NewWorkflowBuilder().WithId("validate-migration").
		WithExecutionMode(automa.StopOnError).
		Steps(
			steps.ValidateMigration(p),
		)
}
