// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/propbind/internal/script"
)

// evalConfig holds configuration for the eval command.
type evalConfig struct {
	file string
}

func newEvalCmd(a *app) *cobra.Command {
	cfg := &evalConfig{}

	cmd := &cobra.Command{
		Use:   "eval [STATEMENT...]",
		Short: "Run property statements",
		Long: `Run statements against the manifest's registry. Each argument is one
line; with --file the statements are read from a file ("-" for stdin).

  get NAME [or LITERAL]
  set NAME = LITERAL
  list [PATTERN]
  sync NAME -> NAME
  sync NAME <- NAME`,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			src, err := evalSource(cmd, cfg, args)
			if err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}
			return script.NewInterpreter(reg, cmd.OutOrStdout(), script.WithLogger(a.logger)).Run(ctx, src)
		}),
	}

	cmd.Flags().StringVarP(&cfg.file, "file", "f", "", "read statements from file")

	return cmd
}

func evalSource(cmd *cobra.Command, cfg *evalConfig, args []string) (string, error) {
	switch {
	case cfg.file != "" && len(args) > 0:
		return "", oops.In("cli").Errorf("pass statements as arguments or with --file, not both")
	case cfg.file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", oops.In("cli").Wrapf(err, "read stdin")
		}
		return string(data), nil
	case cfg.file != "":
		data, err := os.ReadFile(cfg.file)
		if err != nil {
			return "", oops.In("cli").With("path", cfg.file).Wrapf(err, "read script")
		}
		return string(data), nil
	default:
		return strings.Join(args, "\n"), nil
	}
}
