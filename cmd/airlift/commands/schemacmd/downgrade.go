// SPDX-License-Identifier: Apache-2.0

package schemacmd

import (
	"github.com/automa-saga/logx"
	"github.com/spf13/cobra"

	"github.com/dataops-works/airlift/cmd/airlift/commands/common"
	"github.com/dataops-works/airlift/internal/doctor"
	"github.com/dataops-works/airlift/internal/schema"
)

var downgradeCmd = &cobra.Command{
	Use:   "downgrade",
	Short: "Downgrade the schema to a target revision (default: base)",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		if flagOffline {
			env := schema.NewEnvironment(schema.DefaultChain(), nil)
			w, done := scriptWriter(ctx)
			defer done()

			err := env.RenderScript(w, schema.ScriptRequest{
				Current:   normalizeCurrent(flagCurrent),
				Target:    flagRevision,
				Downgrade: true,
			})
			if err != nil {
				doctor.CheckErr(ctx, err)
			}
			return
		}

		env := connect(ctx)
		if err := env.Downgrade(ctx, flagRevision); err != nil {
			doctor.CheckErr(ctx, err)
		}
		logx.As().Info().Str("revision", flagRevision).Msg("Schema downgrade finished")
	},
}

func init() {
	common.FlagRevision.SetVar(downgradeCmd, &flagRevision, false)
	common.FlagOffline.SetVar(downgradeCmd, &flagOffline, false)
	common.FlagCurrent.SetVar(downgradeCmd, &flagCurrent, false)
	common.FlagOutputFile.SetVar(downgradeCmd, &flagOutputFile, false)
}
