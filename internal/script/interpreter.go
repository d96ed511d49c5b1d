// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/propbind/internal/valueconv"
	"github.com/holomush/propbind/pkg/propbind"
)

// Interpreter runs programs against a registry and writes one line of
// output per statement. Missing properties and type mismatches are reported
// and evaluation continues; an access denial stops it.
type Interpreter struct {
	registry *propbind.Registry
	out      io.Writer
	logger   *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the interpreter's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

// NewInterpreter creates an interpreter over reg writing to out.
func NewInterpreter(reg *propbind.Registry, out io.Writer, opts ...Option) *Interpreter {
	in := &Interpreter{registry: reg, out: out, logger: slog.Default()}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run parses and executes src.
func (in *Interpreter) Run(ctx context.Context, src string) error {
	prog, err := Parse(src)
	if err != nil {
		return err
	}
	return in.Exec(ctx, prog)
}

// Exec executes a parsed program. It stops at the first statement that
// fails with an error, or when ctx is done.
func (in *Interpreter) Exec(ctx context.Context, prog *Program) error {
	for _, stmt := range prog.Statements {
		if err := ctx.Err(); err != nil {
			return oops.In("script").Code(CodeRuntime).Wrapf(err, "script interrupted")
		}
		if err := in.exec(stmt); err != nil {
			return oops.In("script").
				Code(CodeRuntime).
				With("line", stmt.Pos.Line).
				With("statement", stmt.String()).
				Wrapf(err, "line %d: %s", stmt.Pos.Line, stmt)
		}
	}
	in.logger.DebugContext(ctx, "script finished", "statements", len(prog.Statements))
	return nil
}

func (in *Interpreter) exec(stmt *Statement) error {
	switch {
	case stmt.Get != nil:
		return in.get(stmt.Get)
	case stmt.Set != nil:
		return in.set(stmt.Set)
	case stmt.List != nil:
		return in.list(stmt.List)
	case stmt.Sync != nil:
		return in.sync(stmt.Sync)
	default:
		return oops.Errorf("empty statement")
	}
}

func (in *Interpreter) get(s *GetStmt) error {
	var (
		v   any
		err error
	)
	if s.Default != nil {
		v, err = in.registry.GetValueGenericOr(s.Name, s.Default.Value())
	} else {
		v, err = in.registry.GetValueGeneric(s.Name)
	}
	switch {
	case propbind.IsNotFound(err):
		return in.printf("%s: not found\n", s.Name)
	case err != nil:
		return err
	}
	return in.printf("%s = %s\n", s.Name, valueconv.Format(v))
}

func (in *Interpreter) set(s *SetStmt) error {
	h, ok := in.registry.Find(s.Name)
	if !ok {
		return in.printf("%s: not found\n", s.Name)
	}

	value := s.Value.Value()
	if h.CanSet() {
		converted, err := valueconv.Coerce(value, h.Type())
		if err != nil {
			return in.printf("%s: type mismatch\n", s.Name)
		}
		value = converted
	}

	ok, err := in.registry.SetValueGeneric(s.Name, value)
	switch {
	case err != nil:
		return err
	case !ok:
		return in.printf("%s: type mismatch\n", s.Name)
	}
	return in.printf("set %s\n", s.Name)
}

func (in *Interpreter) list(s *ListStmt) error {
	pattern := ""
	if s.Pattern != nil {
		pattern = *s.Pattern
	}
	entries, err := in.registry.Match(pattern)
	if err != nil {
		return err
	}
	for _, e := range entries {
		h := e.Handle
		if err := in.printf("%s %s get=%s set=%s\n",
			e.Name, valueconv.NameOf(h.Type()), visibility(h.CanGet()), visibility(h.CanSet())); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) sync(s *SyncStmt) error {
	for _, name := range []string{s.Left, s.Right} {
		if _, ok := in.registry.Find(name); !ok {
			return in.printf("%s: not found\n", name)
		}
	}

	var (
		b      *propbind.Binding
		err    error
		target string
	)
	if s.Arrow == "->" {
		target = s.Right
		b, err = in.registry.Bind(s.Left, s.Right, propbind.OneWay)
		if err == nil {
			err = b.UpdateTarget()
		}
	} else {
		target = s.Left
		b, err = in.registry.Bind(s.Left, s.Right, propbind.OneWayToSource)
		if err == nil {
			err = b.UpdateSource()
		}
	}
	switch {
	case propbind.IsTypeMismatch(err):
		return in.printf("%s: type mismatch\n", target)
	case err != nil:
		return err
	}
	return in.printf("sync %s %s %s\n", s.Left, s.Arrow, s.Right)
}

func (in *Interpreter) printf(format string, args ...any) error {
	if _, err := fmt.Fprintf(in.out, format, args...); err != nil {
		return oops.Wrapf(err, "write output")
	}
	return nil
}

func visibility(public bool) propbind.Visibility {
	if public {
		return propbind.Public
	}
	return propbind.Private
}
