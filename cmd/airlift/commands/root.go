// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/automa-saga/logx"
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/cmd/airlift/commands/migratecmd"
	"github.com/dataops-works/airlift/cmd/airlift/commands/rollbackcmd"
	"github.com/dataops-works/airlift/cmd/airlift/commands/schemacmd"
	"github.com/dataops-works/airlift/cmd/airlift/commands/validatecmd"
	"github.com/dataops-works/airlift/cmd/airlift/commands/version"
	"github.com/dataops-works/airlift/internal/config"
	"github.com/dataops-works/airlift/internal/doctor"
)

// examples:
// ./airlift migrate --environment=dev --source-dir ./dags --target-dir ./dags_v2
// ./airlift migrate dags --source-dir ./dags --target-dir ./dags_v2 --dry-run
// ./airlift schema upgrade --environment=qa
// ./airlift schema upgrade --offline --current base --output-file upgrade.sql
// ./airlift validate --target-dir ./dags_v2

// rootCmd represents the base command when called without any subcommands
var (
	// Used for flags.
	flagConfig       string
	flagVersion      bool
	flagOutputFormat string
	flagEnvironment  string

	rootCmd = &cobra.Command{
		Use:   "airlift",
		Short: "A tool to migrate Airflow 1.x deployments to 2.x",
		Long:  "Airlift - migrates Airflow 1.x DAGs, connections, plugins and metadata database schema to 2.x",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagVersion {
				version.PrintVersion(cmd, flagOutputFormat)
				return nil
			}

			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&flagEnvironment, "environment", "e", "", "Deployment environment (dev|qa|prod)")

	// support '--version', '-v' to show version information
	rootCmd.PersistentFlags().BoolVarP(&flagVersion, "version", "v", false, "Show version")
	rootCmd.PersistentFlags().StringVarP(&flagOutputFormat, "output", "o", "yaml", "Output format (yaml|json)")

	// disable command sorting to keep the order of commands as added
	cobra.EnableCommandSorting = false

	// add subcommands
	rootCmd.AddCommand(migratecmd.GetCmd())
	rootCmd.AddCommand(schemacmd.GetCmd())
	rootCmd.AddCommand(validatecmd.GetCmd())
	rootCmd.AddCommand(rollbackcmd.GetCmd())
	rootCmd.AddCommand(version.GetCmd())
}

// Execute executes the root command.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errorx.IllegalArgument.New("context is required")
	}

	cobra.OnInitialize(func() {
		initConfig(ctx)
	})

	// execute the root command
	_, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		return errorx.IllegalState.Wrap(err, "failed to execute command")
	}

	return nil
}

func initConfig(ctx context.Context) {
	var err error
	err = config.Initialize(flagConfig)
	if err != nil {
		doctor.CheckErr(ctx, err)
	}

	if flagEnvironment != "" {
		config.SetEnvironment(flagEnvironment)
	}

	if err := config.Get().Validate(); err != nil {
		doctor.CheckErr(ctx, err)
	}

	logConfig := config.Get().Log
	err = logx.Initialize(logConfig)
	if err != nil {
		doctor.CheckErr(ctx, err)
	}
}
