// SPDX-License-Identifier: Apache-2.0

package schemacmd

import (
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/internal/doctor"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current schema revision",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := connect(ctx)

		current, err := env.Current(ctx)
		if err != nil {
			doctor.CheckErr(ctx, err)
		}
		if current == "" {
			current = "base (uninitialized)"
		}

		needed, err := env.MigrationNeeded(ctx)
		if err != nil {
			doctor.CheckErr(ctx, err)
		}

		cmd.Printf("current: %s\n", current)
		cmd.Printf("head: %s\n", env.HeadRevision())
		cmd.Printf("migration needed: %t\n", needed)
	},
}
