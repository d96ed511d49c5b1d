// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package luabind

import (
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"
)

// toLua converts a property value into a Lua value. Lua has a single number
// type, so every numeric kind becomes an LNumber.
func toLua(v any) lua.LValue {
	if v == nil {
		return lua.LNil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	default:
		return lua.LString(fmt.Sprint(v))
	}
}

// fromLua converts a scalar Lua value into a Go value. Tables, functions and
// userdata have no property equivalent.
func fromLua(lv lua.LValue) (any, bool) {
	switch v := lv.(type) {
	case lua.LNumber:
		return float64(v), true
	case lua.LString:
		return string(v), true
	case lua.LBool:
		return bool(v), true
	case *lua.LNilType:
		return nil, true
	default:
		return nil, false
	}
}
