// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package luabind

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/propbind/pkg/propbind"
)

// CodeRuntime is the oops code for script failures.
const CodeRuntime = "LUA_RUNTIME"

// Runtime executes Lua scripts against a registry. Each run gets a fresh
// sandboxed state, so scripts share nothing but the registry.
type Runtime struct {
	factory  *StateFactory
	registry *propbind.Registry
	out      io.Writer
	logger   *slog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithOutput redirects the Lua print function.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.out = w
	}
}

// WithLogger sets the runtime's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// NewRuntime creates a runtime over reg. Output goes to os.Stdout unless
// WithOutput is given.
func NewRuntime(reg *propbind.Registry, opts ...Option) *Runtime {
	r := &Runtime{
		factory:  NewStateFactory(),
		registry: reg,
		out:      os.Stdout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes source. name labels the chunk in error messages.
//
// An access denial raised by props.get or props.set and not caught by
// pcall is returned with its original error chain, so propbind.IsAccessDenied
// holds. Cancelling ctx stops the script.
func (r *Runtime) Run(ctx context.Context, name, source string) error {
	L, err := r.factory.NewState(ctx)
	if err != nil {
		return err
	}
	defer L.Close()

	(&module{registry: r.registry, logger: r.logger}).register(L)
	L.SetGlobal("print", L.NewFunction(r.print))

	fn, err := L.Load(strings.NewReader(source), name)
	if err != nil {
		return oops.In("lua").Code(CodeRuntime).With("script", name).Wrapf(err, "compile script")
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return r.runError(ctx, name, err)
	}

	r.logger.DebugContext(ctx, "lua script finished", "script", name)
	return nil
}

// RunFile reads and executes the script at path.
func (r *Runtime) RunFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator supplied
	if err != nil {
		return oops.In("lua").Code(CodeRuntime).With("script", path).Wrapf(err, "read script")
	}
	return r.Run(ctx, path, string(data))
}

func (r *Runtime) runError(ctx context.Context, name string, err error) error {
	b := oops.In("lua").Code(CodeRuntime).With("script", name)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return b.Wrapf(ctxErr, "script interrupted")
	}

	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		if ud, ok := apiErr.Object.(*lua.LUserData); ok {
			if denied, ok := ud.Value.(error); ok {
				return b.Wrapf(denied, "script %s", name)
			}
		}
	}
	return b.Wrapf(err, "run script")
}

func (r *Runtime) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, top)
	for i := 1; i <= top; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	if _, err := io.WriteString(r.out, strings.Join(parts, "\t")+"\n"); err != nil {
		L.RaiseError("print: %s", err.Error())
	}
	return 0
}
