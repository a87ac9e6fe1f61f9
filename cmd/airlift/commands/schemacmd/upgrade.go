// SPDX-License-Identifier: Apache-2.0

package schemacmd

import (
	"github.com/automa-saga/logx"
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/cmd/airlift/commands/common"
	"github.com/dataops-works/airlift/internal/doctor"
	"github.com/dataops-works/airlift/internal/schema"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the schema to a target revision (default: head)",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		if flagOffline {
			env := schema.NewEnvironment(schema.DefaultChain(), nil)
			w, done := scriptWriter(ctx)
			defer done()

			err := env.RenderScript(w, schema.ScriptRequest{
				Current: normalizeCurrent(flagCurrent),
				Target:  flagRevision,
			})
			if err != nil {
				doctor.CheckErr(ctx, err)
			}
			return
		}

		env := connect(ctx)
		if err := env.Upgrade(ctx, flagRevision); err != nil {
			doctor.CheckErr(ctx, err)
		}
		logx.As().Info().Str("head", env.HeadRevision()).Msg("Schema upgrade finished")
	},
}

func init() {
	common.FlagRevision.SetVar(upgradeCmd, &flagRevision, false)
	common.FlagOffline.SetVar(upgradeCmd, &flagOffline, false)
	common.FlagCurrent.SetVar(upgradeCmd, &flagCurrent, false)
	common.FlagOutputFile.SetVar(upgradeCmd, &flagOutputFile, false)
}
