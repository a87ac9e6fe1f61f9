// SPDX-License-Identifier: Apache-2.0

package schemacmd

import (
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/internal/schema"
)

var headCmd = &cobra.Command{
	Use:   "head",
	Short: "Show the head revision of the built-in chain",
	Run: func(cmd *cobra.Command, args []string) {
		chain := schema.DefaultChain()
		cmd.Printf("head: %s\n", chain.Head())
		for _, rev := range chain.All() {
			cmd.Printf("  %s  %s\n", rev.ID, rev.Description)
		}
	},
}
