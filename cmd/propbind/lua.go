// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/holomush/propbind/internal/luabind"
	"github.com/holomush/propbind/internal/xdg"
)

func newLuaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lua FILE",
		Short: "Run a Lua script against the registry",
		Long: `Run a sandboxed Lua script with the manifest's registry available as
the props table. A FILE that does not exist is looked up in
XDG_DATA_HOME/propbind/scripts.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			rt := luabind.NewRuntime(reg,
				luabind.WithOutput(cmd.OutOrStdout()),
				luabind.WithLogger(a.logger))
			return rt.RunFile(ctx, xdg.ScriptPath(args[0]))
		}),
	}
}
