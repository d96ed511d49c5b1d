// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/propbind/internal/manifest"
	"github.com/holomush/propbind/internal/xdg"
	"github.com/holomush/propbind/pkg/propbind"
)

// schemaConfig holds configuration for the schema command.
type schemaConfig struct {
	out string
}

func newSchemaCmd(a *app) *cobra.Command {
	cfg := &schemaConfig{}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the manifest JSON Schema",
		Args:  cobra.NoArgs,
		RunE: a.run(func(_ context.Context, cmd *cobra.Command, _ []string) error {
			data, err := manifest.GenerateSchema()
			if err != nil {
				return err
			}
			if cfg.out == "" {
				printf(cmd, "%s\n", data)
				return nil
			}
			if err := xdg.EnsureDir(filepath.Dir(cfg.out)); err != nil {
				return err
			}
			if err := os.WriteFile(cfg.out, append(data, '\n'), 0o600); err != nil {
				return oops.In("cli").With("path", cfg.out).Wrapf(err, "write schema")
			}
			a.logger.Info("schema written", "path", cfg.out)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&cfg.out, "out", "o", "", "write the schema to a file instead of stdout")

	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate property manifests",
		Long: `Validate each manifest against the schema, check its declarations,
and build it to confirm every binding is permitted by visibility.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.run(func(_ context.Context, cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				if err := validateManifest(path, a); err != nil {
					failed++
					printf(cmd, "%s: %s\n", path, manifest.FormatSchemaError(err))
					continue
				}
				printf(cmd, "%s: ok\n", path)
			}
			if failed > 0 {
				return oops.In("cli").
					Code(manifest.CodeInvalid).
					With("failed", failed).
					Errorf("%d of %d manifests invalid", failed, len(args))
			}
			return nil
		}),
	}
}

func validateManifest(path string, a *app) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}
	_, err = m.Build(propbind.WithLogger(a.logger))
	return err
}
