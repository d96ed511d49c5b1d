// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/holomush/propbind/internal/config"
	"github.com/holomush/propbind/internal/logging"
	"github.com/holomush/propbind/internal/manifest"
	"github.com/holomush/propbind/pkg/errutil"
	"github.com/holomush/propbind/pkg/propbind"
)

// CodeManifestRequired is returned when a command needs a manifest and none
// was configured.
const CodeManifestRequired = "MANIFEST_REQUIRED"

// loggedError marks an error that was already logged by the command wrapper.
type loggedError struct{ err error }

func (e *loggedError) Error() string { return e.err.Error() }
func (e *loggedError) Unwrap() error { return e.err }

// app carries state shared by subcommands for one invocation.
type app struct {
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *prometheus.Registry
	set        *manifest.Set
}

// NewRootCmd creates the root command for the propbind CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "propbind",
		Short: "Inspect and drive property manifests",
		Long: `propbind loads a property manifest and exposes its properties through
a registry that enforces each property's visibility. Properties can be
listed, read, written, scripted, and bound to one another.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/propbind/config.yaml)")
	cmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (json or text)")
	cmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringP("manifest", "m", "", "property manifest file")
	cmd.PersistentFlags().Bool("metrics", false, "print access counters after the command")

	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newGetCmd(a))
	cmd.AddCommand(newSetCmd(a))
	cmd.AddCommand(newEvalCmd(a))
	cmd.AddCommand(newLuaCmd(a))
	cmd.AddCommand(newSchemaCmd(a))
	cmd.AddCommand(newValidateCmd(a))

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.Setup(logging.Options{
		Service: "propbind",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
	})
	a.metrics = prometheus.NewRegistry()
	propbind.RegisterMetrics(a.metrics)
	return nil
}

// run wraps a command body in a trace span, logs its failure, and prints
// metrics when requested.
func (a *app) run(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, span := otel.Tracer("propbind").Start(cmd.Context(), "propbind "+cmd.Name())
		defer span.End()
		span.SetAttributes(attribute.StringSlice("args", args))

		err := fn(ctx, cmd, args)
		if a.cfg.Metrics {
			if dumpErr := writeMetrics(cmd.ErrOrStderr(), a.metrics); dumpErr != nil {
				a.logger.WarnContext(ctx, "metrics dump failed", "error", dumpErr)
			}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			errutil.LogError(a.logger, "command failed", err, "command", cmd.Name())
			return &loggedError{err: err}
		}
		return nil
	}
}

// registry loads the configured manifest once per invocation.
func (a *app) registry() (*propbind.Registry, error) {
	if a.set != nil {
		return a.set.Registry(), nil
	}
	if a.cfg.Manifest == "" {
		return nil, oops.In("cli").Code(CodeManifestRequired).
			Errorf("no manifest given: pass --manifest or set manifest in the config file")
	}
	m, err := manifest.Load(a.cfg.Manifest)
	if err != nil {
		return nil, err
	}
	set, err := m.Build(propbind.WithLogger(a.logger))
	if err != nil {
		return nil, oops.With("path", a.cfg.Manifest).Wrap(err)
	}
	a.logger.Debug("manifest loaded",
		"path", a.cfg.Manifest,
		"properties", set.Registry().Len(),
		"bindings", len(set.Bindings()))
	a.set = set
	return set.Registry(), nil
}

// printf writes command output to stdout.
func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
