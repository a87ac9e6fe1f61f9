// SPDX-License-Identifier: Apache-2.0

package workflows

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/automa-saga/automa"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataops-works/airlift/internal/config"
	"github.com/dataops-works/airlift/internal/pattern"
	"github.com/dataops-works/airlift/internal/workflows/steps"
)

const workflowTestDag = `from airflow import DAG
from airflow.operators.bash_operator import BashOperator

dag = DAG('nightly')
t1 = BashOperator(task_id='t1', bash_command='echo hi', xcom_push=True)
`

func newTestPipeline(t *testing.T, mutate func(*config.MigrationConfig)) *steps.Pipeline {
	t.Helper()

	sourceDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "nightly.py"), []byte(workflowTestDag), 0o644))

	cfg := config.MigrationConfig{
		SourceDir:   sourceDir,
		TargetDir:   filepath.Join(t.TempDir(), "dags"),
		BackupDir:   t.TempDir(),
		KeepBackups: 3,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	nop := zerolog.Nop()
	p, err := steps.NewPipeline(cfg, pattern.Default(), &nop, nil)
	require.NoError(t, err)
	return p
}

func TestMigrationWorkflow(t *testing.T) {
	//
	// Given
	//

	connectionsFile := filepath.Join(t.TempDir(), "connections.json")
	require.NoError(t, os.WriteFile(connectionsFile, []byte(`{"gcp_default": {"conn_type": "gcp"}}`), 0o644))

	p := newTestPipeline(t, func(cfg *config.MigrationConfig) {
		cfg.ConnectionsFile = connectionsFile
	})

	workflow, err := MigrationWorkflow(p).Build()
	require.NoError(t, err)

	//
	// When
	//

	report := workflow.Execute(context.Background())

	//
	// Then
	//

	require.NoError(t, report.Error)
	require.Equal(t, automa.StatusSuccess, report.Status)

	// The backup snapshot holds the pre-migration source.
	snap, err := p.Backup.Latest(steps.BackupName)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(snap.Path, "nightly.py"))

	// The migrated DAG landed in the target tree with the import rewritten
	// and the deprecated parameter stripped.
	out, err := os.ReadFile(filepath.Join(p.Config.TargetDir, "nightly.py"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "from airflow.operators.bash import BashOperator")
	assert.NotContains(t, string(out), "xcom_push")

	// Connections were normalized into the target tree.
	conns, err := os.ReadFile(filepath.Join(p.Config.TargetDir, "connections.json"))
	require.NoError(t, err)
	assert.Contains(t, string(conns), "google_cloud_platform")

	// Validation ran and produced an advisory report.
	require.NotNil(t, p.ValidationReport)
	assert.Equal(t, 1, p.ValidationReport.Stats.DagsChecked)
}

func TestMigrationWorkflowSkipsOptionalStages(t *testing.T) {
	p := newTestPipeline(t, nil)

	workflow, err := MigrationWorkflow(p).Build()
	require.NoError(t, err)

	report := workflow.Execute(context.Background())
	require.NoError(t, report.Error)
	require.Equal(t, automa.StatusSuccess, report.Status)

	// No connections file or plugins directory configured: those stages are
	// skipped, nothing appears in the target tree for them.
	assert.NoFileExists(t, filepath.Join(p.Config.TargetDir, "connections.json"))
	assert.NoDirExists(t, filepath.Join(p.Config.TargetDir, "plugins"))
}

func TestMigrationWorkflowDryRun(t *testing.T) {
	p := newTestPipeline(t, func(cfg *config.MigrationConfig) {
		cfg.DryRun = true
	})

	workflow, err := MigrationWorkflow(p).Build()
	require.NoError(t, err)

	report := workflow.Execute(context.Background())
	require.NoError(t, report.Error)

	// Dry run mutates nothing: no snapshot, no target tree.
	assert.NoFileExists(t, filepath.Join(p.Config.TargetDir, "nightly.py"))
}

func TestMigrationWorkflowRollsBackOnFailure(t *testing.T) {
	//
	// Given a connections path that is actually a directory, so the
	// connections stage fails after backup and DAG migration succeeded.
	//

	p := newTestPipeline(t, func(cfg *config.MigrationConfig) {
		cfg.ConnectionsFile = t.TempDir()
	})

	workflow, err := MigrationWorkflow(p).Build()
	require.NoError(t, err)

	//
	// When
	//

	report := workflow.Execute(context.Background())

	//
	// Then
	//

	require.Error(t, report.Error)
	assert.NotEqual(t, automa.StatusSuccess, report.Status)

	// The rollback restored the target tree from the snapshot, so it holds
	// the original un-migrated source again.
	out, err := os.ReadFile(filepath.Join(p.Config.TargetDir, "nightly.py"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "from airflow.operators.bash_operator import BashOperator")
	assert.Contains(t, string(out), "xcom_push=True")
}

func TestPluginsWorkflow(t *testing.T) {
	pluginsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(pluginsDir, "vault_hook.py"), []byte(
		"from airflow.hooks.base_hook import BaseHook\n\nclass VaultHook(BaseHook):\n    pass\n"), 0o644))

	p := newTestPipeline(t, func(cfg *config.MigrationConfig) {
		cfg.PluginsDir = pluginsDir
	})

	workflow, err := PluginsWorkflow(p).Build()
	require.NoError(t, err)

	report := workflow.Execute(context.Background())
	require.NoError(t, report.Error)

	out, err := os.ReadFile(filepath.Join(p.Config.TargetDir, "plugins", "vault_hook.py"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "from airflow.hooks.base import BaseHook")
	assert.Contains(t, string(out), "hooks should ship as provider packages")
}

func TestRollbackWorkflow(t *testing.T) {
	p := newTestPipeline(t, nil)

	// Run the full migration first so a snapshot exists.
	workflow, err := MigrationWorkflow(p).Build()
	require.NoError(t, err)
	report := workflow.Execute(context.Background())
	require.NoError(t, report.Error)

	// Clobber the target tree, then roll back from the snapshot.
	require.NoError(t, os.WriteFile(filepath.Join(p.Config.TargetDir, "nightly.py"), []byte("broken"), 0o644))

	rollback, err := RollbackWorkflow(p).Build()
	require.NoError(t, err)
	report = rollback.Execute(context.Background())
	require.NoError(t, report.Error)

	out, err := os.ReadFile(filepath.Join(p.Config.TargetDir, "nightly.py"))
	require.NoError(t, err)
	assert.Equal(t, workflowTestDag, string(out))
}

func TestDagsWorkflowSetsValidationReport(t *testing.T) {
	p := newTestPipeline(t, nil)

	workflow, err := DagsWorkflow(p).Build()
	require.NoError(t, err)

	report := workflow.Execute(context.Background())
	require.NoError(t, report.Error)
	require.Equal(t, automa.StatusSuccess, report.Status)

	require.NotNil(t, p.ValidationReport)
	assert.Equal(t, 1, p.ValidationReport.Stats.DagsChecked)
}
