// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/propbind/internal/script"
	"github.com/holomush/propbind/pkg/errutil"
)

func TestParse_Statements(t *testing.T) {
	prog, err := script.Parse(`
# setup
set player.health = 90; set hud.title = "Hello, \"you\""
get player.health or -1
get missing
list player.*
list "hud.*"
list
sync player.health -> hud.health
sync hud.health<-player.health
set ratio = 0.75
set flag = true
`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 11)

	s := prog.Statements
	require.NotNil(t, s[0].Set)
	assert.Equal(t, "player.health", s[0].Set.Name)
	assert.Equal(t, 90, s[0].Set.Value.Value())

	require.NotNil(t, s[1].Set)
	assert.Equal(t, `Hello, "you"`, s[1].Set.Value.Value())

	require.NotNil(t, s[2].Get)
	assert.Equal(t, -1, s[2].Get.Default.Value())
	assert.Nil(t, s[3].Get.Default)

	require.NotNil(t, s[4].List.Pattern)
	assert.Equal(t, "player.*", *s[4].List.Pattern)
	assert.Equal(t, "hud.*", *s[5].List.Pattern)
	assert.Nil(t, s[6].List.Pattern)

	assert.Equal(t, "->", s[7].Sync.Arrow)
	assert.Equal(t, "<-", s[8].Sync.Arrow)
	assert.Equal(t, "hud.health", s[8].Sync.Left)

	assert.InDelta(t, 0.75, s[9].Set.Value.Value(), 1e-9)
	assert.Equal(t, true, s[10].Set.Value.Value())

	assert.Equal(t, 4, s[2].Pos.Line)
}

func TestParse_Empty(t *testing.T) {
	for _, src := range []string{"", "\n\n", "# only a comment\n", ";;"} {
		prog, err := script.Parse(src)
		require.NoError(t, err, src)
		assert.Empty(t, prog.Statements, src)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	src := "get a or 1.5\nset b = \"x\"\nlist \"p.*\"\nlist\nsync a -> b\nset c = false"
	prog, err := script.Parse(src)
	require.NoError(t, err)

	again, err := script.Parse(prog.String())
	require.NoError(t, err)
	assert.Equal(t, prog.String(), again.String())
	assert.Equal(t, src, prog.String())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing equals", "set a 5"},
		{"missing value", "set a ="},
		{"missing name", "get"},
		{"two statements on a line", "get a get b"},
		{"unknown keyword", "frobnicate a"},
		{"bad arrow", "sync a = b"},
		{"unterminated string", `set a = "oops`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := script.Parse(tt.src)
			errutil.AssertErrorCode(t, err, script.CodeParse)
		})
	}
}
