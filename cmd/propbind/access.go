// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/holomush/propbind/internal/valueconv"
	"github.com/holomush/propbind/pkg/propbind"
)

// getConfig holds configuration for the get command.
type getConfig struct {
	def string
}

func newGetCmd(a *app) *cobra.Command {
	cfg := &getConfig{}

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Read a property through the registry",
		Long: `Read a property through the registry. NAME may be abbreviated to any
unique prefix. With --default, a missing property prints the default
instead of failing.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(_ context.Context, cmd *cobra.Command, args []string) error {
			return runGet(a, cmd, args[0], cfg, cmd.Flags().Changed("default"))
		}),
	}

	cmd.Flags().StringVar(&cfg.def, "default", "", "value to print when the property does not exist")

	return cmd
}

func runGet(a *app, cmd *cobra.Command, name string, cfg *getConfig, hasDefault bool) error {
	reg, err := a.registry()
	if err != nil {
		return err
	}

	entry, err := reg.Resolve(name)
	if err != nil {
		if hasDefault && propbind.IsNotFound(err) {
			printf(cmd, "%s = %s\n", name, cfg.def)
			return nil
		}
		return err
	}

	v, err := reg.GetValueGeneric(entry.Name)
	if err != nil {
		return err
	}
	printf(cmd, "%s = %s\n", entry.Name, valueconv.Format(v))
	return nil
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Write a property through the registry",
		Long: `Write a property through the registry, then push the new value along
the manifest's bindings. VALUE is parsed as the property's type. NAME may
be abbreviated to any unique prefix.`,
		Args: cobra.ExactArgs(2),
		RunE: a.run(func(_ context.Context, cmd *cobra.Command, args []string) error {
			return runSet(a, cmd, args[0], args[1])
		}),
	}
}

func runSet(a *app, cmd *cobra.Command, name, text string) error {
	reg, err := a.registry()
	if err != nil {
		return err
	}

	entry, err := reg.Resolve(name)
	if err != nil {
		return err
	}

	var value any = text
	if entry.Handle.CanSet() {
		value, err = valueconv.Parse(text, entry.Handle.Type())
		if err != nil {
			return err
		}
	}
	if _, err := reg.SetValueGeneric(entry.Name, value); err != nil {
		return err
	}
	if err := a.set.Propagate(entry.Name); err != nil {
		return err
	}

	if !entry.Handle.CanGet() {
		printf(cmd, "set %s\n", entry.Name)
		return nil
	}
	v, err := reg.GetValueGeneric(entry.Name)
	if err != nil {
		return err
	}
	printf(cmd, "%s = %s\n", entry.Name, valueconv.Format(v))
	return nil
}
