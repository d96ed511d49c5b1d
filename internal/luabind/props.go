// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//nolint:gocritic // captLocal: L is the idiomatic name for lua.LState
package luabind

import (
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/propbind/internal/valueconv"
	"github.com/holomush/propbind/pkg/propbind"
)

// ModuleName is the global the registry is exposed under.
const ModuleName = "props"

const deniedTypeName = "propbind.denied"

// module exposes one registry to one Lua state.
type module struct {
	registry *propbind.Registry
	logger   *slog.Logger
}

// register installs the props table in L.
func (m *module) register(L *lua.LState) {
	mt := L.NewTypeMetatable(deniedTypeName)
	L.SetField(mt, "__tostring", L.NewFunction(deniedToString))

	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(m.get))
	L.SetField(mod, "set", L.NewFunction(m.set))
	L.SetField(mod, "can_get", L.NewFunction(m.canGet))
	L.SetField(mod, "can_set", L.NewFunction(m.canSet))
	L.SetField(mod, "names", L.NewFunction(m.names))
	L.SetGlobal(ModuleName, mod)
}

// get(name [, default]) returns the value, or nil plus "not found".
func (m *module) get(L *lua.LState) int {
	name := L.CheckString(1)

	var (
		v   any
		err error
	)
	if L.GetTop() >= 2 {
		def, ok := fromLua(L.Get(2))
		if !ok {
			L.ArgError(2, "default must be a number, string, or boolean")
			return 0
		}
		v, err = m.registry.GetValueGenericOr(name, def)
	} else {
		v, err = m.registry.GetValueGeneric(name)
	}
	switch {
	case propbind.IsNotFound(err):
		return pushError(L, "not found")
	case err != nil:
		return raiseDenied(L, err)
	}
	return pushSuccess(L, toLua(v))
}

// set(name, value) returns true, or false plus a reason.
func (m *module) set(L *lua.LState) int {
	name := L.CheckString(1)
	raw, ok := fromLua(L.CheckAny(2))
	if !ok {
		return pushFailure(L, "type mismatch")
	}

	h, found := m.registry.Find(name)
	if !found {
		return pushFailure(L, "not found")
	}

	value := raw
	if h.CanSet() {
		converted, err := valueconv.Coerce(raw, h.Type())
		if err != nil {
			m.logger.Debug("lua set conversion failed", "property", name, "error", err)
			return pushFailure(L, "type mismatch")
		}
		value = converted
	}

	written, err := m.registry.SetValueGeneric(name, value)
	switch {
	case err != nil:
		return raiseDenied(L, err)
	case !written:
		return pushFailure(L, "type mismatch")
	}
	L.Push(lua.LTrue)
	return 1
}

func (m *module) canGet(L *lua.LState) int {
	h, ok := m.registry.Find(L.CheckString(1))
	L.Push(lua.LBool(ok && h.CanGet()))
	return 1
}

func (m *module) canSet(L *lua.LState) int {
	h, ok := m.registry.Find(L.CheckString(1))
	L.Push(lua.LBool(ok && h.CanSet()))
	return 1
}

// names([pattern]) returns a sorted array of registered names.
func (m *module) names(L *lua.LState) int {
	entries, err := m.registry.Match(L.OptString(1, ""))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	tbl := L.CreateTable(len(entries), 0)
	for _, e := range entries {
		tbl.Append(lua.LString(e.Name))
	}
	L.Push(tbl)
	return 1
}

// raiseDenied raises err as a userdata so Runtime can recover the Go error
// once the script unwinds. pcall still sees a printable message.
func raiseDenied(L *lua.LState, err error) int {
	ud := L.NewUserData()
	ud.Value = err
	L.SetMetatable(ud, L.GetTypeMetatable(deniedTypeName))
	L.Error(ud, 1)
	return 0
}

func deniedToString(L *lua.LState) int {
	ud := L.CheckUserData(1)
	if err, ok := ud.Value.(error); ok {
		L.Push(lua.LString(err.Error()))
	} else {
		L.Push(lua.LString("access denied"))
	}
	return 1
}

// pushError pushes nil followed by an error string to the Lua stack and returns 2.
func pushError(L *lua.LState, errMsg string) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(errMsg))
	return 2
}

// pushSuccess pushes a value followed by nil (no error) to the Lua stack and returns 2.
func pushSuccess(L *lua.LState, value lua.LValue) int {
	L.Push(value)
	L.Push(lua.LNil)
	return 2
}

func pushFailure(L *lua.LState, reason string) int {
	L.Push(lua.LFalse)
	L.Push(lua.LString(reason))
	return 2
}
