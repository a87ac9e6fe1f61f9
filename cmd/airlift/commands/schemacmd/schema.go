// SPDX-License-Identifier: Apache-2.0

// Package schemacmd implements the `airlift schema` command group for
// driving the metadata database revision chain.
package schemacmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/cmd/airlift/commands/common"
	"github.com/dataops-works/airlift/internal/config"
	"github.com/dataops-works/airlift/internal/doctor"
	"github.com/dataops-works/airlift/internal/schema"
)

var (
	flagRevision   string
	flagCurrent    string
	flagOffline    bool
	flagOutputFile string

	schemaCmd = &cobra.Command{
		Use:   "schema",
		Short: "Manage the Airflow metadata database schema",
		Long: "Applies or reverts the chained schema revisions of the metadata database, " +
			"either online against a live connection or offline as a reviewable SQL script.",
		RunE: common.DefaultRunE,
	}
)

func init() {
	schemaCmd.AddCommand(upgradeCmd)
	schemaCmd.AddCommand(downgradeCmd)
	schemaCmd.AddCommand(currentCmd)
	schemaCmd.AddCommand(headCmd)
}

func GetCmd() *cobra.Command {
	return schemaCmd
}

// connect resolves the configured database target and opens an environment.
func connect(ctx context.Context) *schema.Environment {
	cfg := config.Get()
	target, err := cfg.Database.Target(cfg.Environment)
	if err != nil {
		doctor.CheckErr(ctx, err)
	}
	return common.ConnectSchemaEnvironment(ctx, target)
}

// scriptWriter opens the offline script destination, stdout by default.
func scriptWriter(ctx context.Context) (io.Writer, func()) {
	if flagOutputFile == "" {
		return os.Stdout, func() {}
	}

	f, err := os.Create(flagOutputFile)
	if err != nil {
		doctor.CheckErr(ctx, err)
	}
	return f, func() { _ = f.Close() }
}

// normalizeCurrent maps the "base" sentinel to the empty revision id.
func normalizeCurrent(current string) string {
	if current == "base" {
		return ""
	}
	return current
}
