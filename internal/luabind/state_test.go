// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package luabind_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/propbind/internal/luabind"
)

func TestStateFactory_NewState_LoadsSafeLibraries(t *testing.T) {
	L, err := luabind.NewStateFactory().NewState(context.Background())
	require.NoError(t, err)
	defer L.Close()

	for _, lib := range []string{"table", "string", "math"} {
		assert.NotEqual(t, lua.LTNil, L.GetGlobal(lib).Type(), "library %q not loaded", lib)
	}
}

func TestStateFactory_NewState_BlocksUnsafeLibraries(t *testing.T) {
	L, err := luabind.NewStateFactory().NewState(context.Background())
	require.NoError(t, err)
	defer L.Close()

	for _, lib := range []string{"os", "io", "debug", "package"} {
		assert.Equal(t, lua.LTNil, L.GetGlobal(lib).Type(), "unsafe library %q should not be loaded", lib)
	}
	for _, fn := range []string{"dofile", "loadfile", "loadstring", "load"} {
		assert.Equal(t, lua.LTNil, L.GetGlobal(fn).Type(), "unsafe function %q should not be available", fn)
	}
}

func TestStateFactory_NewState_CanExecuteLua(t *testing.T) {
	L, err := luabind.NewStateFactory().NewState(context.Background())
	require.NoError(t, err)
	defer L.Close()

	require.NoError(t, L.DoString(`result = string.upper("hello") .. (1 + 1)`))
	assert.Equal(t, "HELLO2", L.GetGlobal("result").String())
}
