// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/holomush/propbind/internal/valueconv"
	"github.com/holomush/propbind/pkg/propbind"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [pattern]",
		Short: "List registered properties",
		Long: `List the manifest's properties with their type and visibility.
The optional pattern is a glob where '*' stays within one dotted segment
and '**' crosses segments.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.run(func(_ context.Context, cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			entries, err := reg.Match(pattern)
			if err != nil {
				return err
			}
			printf(cmd, "%s", formatEntries(entries))
			return nil
		}),
	}
}

// formatEntries renders entries as an aligned table.
func formatEntries(entries []propbind.Entry) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTYPE\tKIND\tGET\tSET")
	for _, e := range entries {
		h := e.Handle
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Name, valueconv.NameOf(h.Type()), h.Kind(), visibility(h.CanGet()), visibility(h.CanSet()))
	}
	_ = w.Flush()
	return sb.String()
}

func visibility(public bool) propbind.Visibility {
	if public {
		return propbind.Public
	}
	return propbind.Private
}
