// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/automa-saga/logx"
	"github.com/joomcode/errorx"
	"github.com/spf13/viper"
)

// Environment names accepted by the --environment flag and config file.
const (
	EnvDev  = "dev"
	EnvQA   = "qa"
	EnvProd = "prod"
)

// Environment variables carrying database credentials. Credentials never
// live in the config file.
const (
	EnvVarDatabaseUser     = "AIRLIFT_DATABASE_USER"
	EnvVarDatabasePassword = "AIRLIFT_DATABASE_PASSWORD"
)

// Config holds the global configuration for the application.
type Config struct {
	Environment string             `yaml:"environment" json:"environment"` // Deployment environment (dev, qa, prod)
	Log         logx.LoggingConfig `yaml:"log" json:"log"`
	Airflow     AirflowConfig      `yaml:"airflow" json:"airflow"`
	Migration   MigrationConfig    `yaml:"migration" json:"migration"`
	Database    DatabaseConfig     `yaml:"database" json:"database"`
}

// AirflowConfig pins the source and target platform versions the migration
// is written for.
type AirflowConfig struct {
	SourceVersion string `yaml:"sourceVersion" json:"sourceVersion"`
	TargetVersion string `yaml:"targetVersion" json:"targetVersion"`
}

// Validate checks that both versions parse and that the migration direction
// is 1.x to 2.x.
func (c AirflowConfig) Validate() error {
	if c.SourceVersion == "" && c.TargetVersion == "" {
		return nil
	}

	source, err := semver.NewVersion(c.SourceVersion)
	if err != nil {
		return errorx.IllegalArgument.Wrap(err, "invalid airflow source version: %s", c.SourceVersion)
	}
	target, err := semver.NewVersion(c.TargetVersion)
	if err != nil {
		return errorx.IllegalArgument.Wrap(err, "invalid airflow target version: %s", c.TargetVersion)
	}

	if source.Major() != 1 {
		return errorx.IllegalArgument.New("airflow source version must be 1.x, got %s", c.SourceVersion)
	}
	if target.Major() < 2 {
		return errorx.IllegalArgument.New("airflow target version must be at least 2.0.0, got %s", c.TargetVersion)
	}
	return nil
}

// MigrationConfig holds the directory layout and behavior flags for one run.
type MigrationConfig struct {
	SourceDir       string `yaml:"sourceDir" json:"sourceDir"`
	TargetDir       string `yaml:"targetDir" json:"targetDir"`
	BackupDir       string `yaml:"backupDir" json:"backupDir"`
	ConnectionsFile string `yaml:"connectionsFile" json:"connectionsFile"`
	PluginsDir      string `yaml:"pluginsDir" json:"pluginsDir"`
	DryRun          bool   `yaml:"dryRun" json:"dryRun"`
	SkipTaskflow    bool   `yaml:"skipTaskflow" json:"skipTaskflow"`
	KeepBackups     int    `yaml:"keepBackups" json:"keepBackups"`
}

// Validate checks the migration section.
func (c MigrationConfig) Validate() error {
	if c.SourceDir != "" && c.SourceDir == c.TargetDir {
		return errorx.IllegalArgument.New("source and target directories must differ: %s", c.SourceDir)
	}
	if c.KeepBackups < 0 {
		return errorx.IllegalArgument.New("keepBackups must not be negative, got %d", c.KeepBackups)
	}
	return nil
}

// DatabaseTarget identifies the metadata database of one environment.
type DatabaseTarget struct {
	Instance string `yaml:"instance" json:"instance"`
	Project  string `yaml:"project" json:"project"`
	Region   string `yaml:"region" json:"region"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Database string `yaml:"database" json:"database"`
	SSLMode  string `yaml:"sslMode" json:"sslMode"`
}

// DatabaseConfig maps environments to database targets.
type DatabaseConfig struct {
	Environments map[string]DatabaseTarget `yaml:"environments" json:"environments"`
}

// Target resolves the database target for the named environment.
func (c DatabaseConfig) Target(environment string) (DatabaseTarget, error) {
	target, ok := c.Environments[environment]
	if !ok {
		return DatabaseTarget{}, NotFoundError.New("no database target configured for environment %q", environment)
	}
	return target, nil
}

// Validate validates all configuration fields.
func (c Config) Validate() error {
	switch c.Environment {
	case "", EnvDev, EnvQA, EnvProd:
	default:
		return errorx.IllegalArgument.New("invalid environment %q, expected one of dev, qa, prod", c.Environment)
	}
	if err := c.Airflow.Validate(); err != nil {
		return err
	}
	if err := c.Migration.Validate(); err != nil {
		return err
	}
	return nil
}

var globalConfig = Config{
	Environment: EnvDev,
	Log: logx.LoggingConfig{
		Level:          "Debug",
		ConsoleLogging: true,
		FileLogging:    false,
	},
	Airflow: AirflowConfig{
		SourceVersion: "1.10.15",
		TargetVersion: "2.0.2",
	},
	Migration: MigrationConfig{
		BackupDir:   "./backups",
		KeepBackups: 5,
	},
}

// Initialize loads the configuration from the specified file.
//
// Parameters:
//   - path: The path to the configuration file.
//
// Returns:
//   - An error if the configuration cannot be loaded.
func Initialize(path string) error {
	if path != "" {
		globalConfig = Config{}
		viper.Reset()
		viper.SetConfigFile(path)
		viper.SetEnvPrefix("AIRLIFT")
		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		err := viper.ReadInConfig()
		if err != nil {
			return NotFoundError.Wrap(err, "failed to read config file: %s", path).
				WithProperty(errorx.PropertyPayload(), path)
		}

		migrateOldConfigKeys()

		if err := viper.Unmarshal(&globalConfig); err != nil {
			return errorx.IllegalFormat.Wrap(err, "failed to parse configuration").
				WithProperty(errorx.PropertyPayload(), path)
		}
	}

	return nil
}

// Get returns the loaded configuration.
//
// Returns:
//   - The global configuration.
func Get() Config {
	return globalConfig
}

func Set(c *Config) error {
	globalConfig = *c
	return nil
}

// SetEnvironment sets the deployment environment in the global configuration.
func SetEnvironment(environment string) {
	globalConfig.Environment = environment
}

// IsProd reports whether the current environment is production.
func (c Config) IsProd() bool {
	return c.Environment == EnvProd
}

// OverrideMigrationConfig updates the migration configuration with provided
// overrides. Empty string values are ignored (not applied); boolean flags are
// always applied.
func OverrideMigrationConfig(overrides MigrationConfig) {
	if overrides.SourceDir != "" {
		globalConfig.Migration.SourceDir = overrides.SourceDir
	}
	if overrides.TargetDir != "" {
		globalConfig.Migration.TargetDir = overrides.TargetDir
	}
	if overrides.BackupDir != "" {
		globalConfig.Migration.BackupDir = overrides.BackupDir
	}
	if overrides.ConnectionsFile != "" {
		globalConfig.Migration.ConnectionsFile = overrides.ConnectionsFile
	}
	if overrides.PluginsDir != "" {
		globalConfig.Migration.PluginsDir = overrides.PluginsDir
	}
	if overrides.KeepBackups != 0 {
		globalConfig.Migration.KeepBackups = overrides.KeepBackups
	}
	globalConfig.Migration.DryRun = overrides.DryRun
	globalConfig.Migration.SkipTaskflow = overrides.SkipTaskflow
}
