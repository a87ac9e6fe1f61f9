// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "airlift.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resetGlobalConfig(t *testing.T) {
	t.Helper()
	saved := globalConfig
	t.Cleanup(func() { globalConfig = saved })
}

func TestInitialize(t *testing.T) {
	resetGlobalConfig(t)

	path := writeConfigFile(t, `
environment: qa
airflow:
  sourceVersion: 1.10.12
  targetVersion: 2.1.0
migration:
  sourceDir: /srv/airflow/dags
  targetDir: /srv/airflow2/dags
  backupDir: /srv/backups
  connectionsFile: /srv/airflow/connections.json
  skipTaskflow: true
  keepBackups: 3
database:
  environments:
    qa:
      instance: airflow-meta
      project: data-platform
      region: us-east1
      database: airflow
`)

	require.NoError(t, Initialize(path))
	cfg := Get()

	assert.Equal(t, EnvQA, cfg.Environment)
	assert.Equal(t, "1.10.12", cfg.Airflow.SourceVersion)
	assert.Equal(t, "2.1.0", cfg.Airflow.TargetVersion)
	assert.Equal(t, "/srv/airflow/dags", cfg.Migration.SourceDir)
	assert.Equal(t, "/srv/airflow2/dags", cfg.Migration.TargetDir)
	assert.Equal(t, "/srv/backups", cfg.Migration.BackupDir)
	assert.True(t, cfg.Migration.SkipTaskflow)
	assert.Equal(t, 3, cfg.Migration.KeepBackups)

	target, err := cfg.Database.Target("qa")
	require.NoError(t, err)
	assert.Equal(t, "airflow-meta", target.Instance)
	assert.Equal(t, "data-platform", target.Project)

	require.NoError(t, cfg.Validate())
}

func TestInitializeMissingFile(t *testing.T) {
	resetGlobalConfig(t)

	err := Initialize(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errorx.HasTrait(err, errorx.NotFound()))
}

func TestInitializeEmptyPathKeepsDefaults(t *testing.T) {
	resetGlobalConfig(t)

	require.NoError(t, Initialize(""))
	cfg := Get()

	assert.Equal(t, EnvDev, cfg.Environment)
	assert.Equal(t, "1.10.15", cfg.Airflow.SourceVersion)
	assert.Equal(t, "2.0.2", cfg.Airflow.TargetVersion)
	assert.Equal(t, "./backups", cfg.Migration.BackupDir)
	assert.Equal(t, 5, cfg.Migration.KeepBackups)
}

func TestInitializeDeprecatedKeys(t *testing.T) {
	resetGlobalConfig(t)

	path := writeConfigFile(t, `
environment: dev
migration:
  dagsDir: /old/dags
  outputDir: /new/dags
`)

	require.NoError(t, Initialize(path))
	cfg := Get()

	assert.Equal(t, "/old/dags", cfg.Migration.SourceDir)
	assert.Equal(t, "/new/dags", cfg.Migration.TargetDir)
}

func TestAirflowConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       AirflowConfig
		expectErr bool
	}{
		{
			name: "valid one dot x to two dot x",
			cfg:  AirflowConfig{SourceVersion: "1.10.15", TargetVersion: "2.0.2"},
		},
		{
			name: "both empty is fine",
			cfg:  AirflowConfig{},
		},
		{
			name:      "source not one dot x",
			cfg:       AirflowConfig{SourceVersion: "2.0.0", TargetVersion: "2.1.0"},
			expectErr: true,
		},
		{
			name:      "target below two",
			cfg:       AirflowConfig{SourceVersion: "1.10.15", TargetVersion: "1.10.16"},
			expectErr: true,
		},
		{
			name:      "unparseable version",
			cfg:       AirflowConfig{SourceVersion: "one", TargetVersion: "2.0.0"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectErr {
				require.Error(t, err)
				assert.True(t, errorx.IsOfType(err, errorx.IllegalArgument))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMigrationConfigValidate(t *testing.T) {
	err := MigrationConfig{SourceDir: "/same", TargetDir: "/same"}.Validate()
	require.Error(t, err)

	err = MigrationConfig{KeepBackups: -1}.Validate()
	require.Error(t, err)

	require.NoError(t, MigrationConfig{SourceDir: "/a", TargetDir: "/b", KeepBackups: 2}.Validate())
}

func TestConfigValidateEnvironment(t *testing.T) {
	cfg := Config{Environment: "staging"}
	require.Error(t, cfg.Validate())

	cfg.Environment = EnvProd
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsProd())
}

func TestDatabaseTargetNotFound(t *testing.T) {
	cfg := DatabaseConfig{Environments: map[string]DatabaseTarget{"dev": {}}}

	_, err := cfg.Target("prod")
	require.Error(t, err)
	assert.True(t, errorx.HasTrait(err, errorx.NotFound()))
}

func TestOverrideMigrationConfig(t *testing.T) {
	resetGlobalConfig(t)
	globalConfig.Migration = MigrationConfig{
		SourceDir:   "/cfg/src",
		TargetDir:   "/cfg/dst",
		BackupDir:   "/cfg/backups",
		KeepBackups: 5,
	}

	OverrideMigrationConfig(MigrationConfig{
		SourceDir: "/flag/src",
		DryRun:    true,
	})

	cfg := Get()
	assert.Equal(t, "/flag/src", cfg.Migration.SourceDir)
	// Unset string overrides keep the configured values.
	assert.Equal(t, "/cfg/dst", cfg.Migration.TargetDir)
	assert.Equal(t, "/cfg/backups", cfg.Migration.BackupDir)
	assert.Equal(t, 5, cfg.Migration.KeepBackups)
	// Booleans always reflect the flags.
	assert.True(t, cfg.Migration.DryRun)
	assert.False(t, cfg.Migration.SkipTaskflow)
}
