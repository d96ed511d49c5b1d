// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/propbind/internal/manifest"
	"github.com/holomush/propbind/pkg/errutil"
	"github.com/holomush/propbind/pkg/propbind"
)

var gameManifest = filepath.Join("testdata", "game.yaml")

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func rows(out string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		rows = append(rows, strings.Fields(line))
	}
	return rows
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"list", "get", "set", "eval", "lua", "schema", "validate"})

	for _, flag := range []string{"config", "log-format", "log-level", "manifest", "metrics"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestList(t *testing.T) {
	r := execute(t, "", "-m", gameManifest, "list")
	require.NoError(t, r.err)

	got := rows(r.stdout)
	require.Len(t, got, 9)
	assert.Equal(t, []string{"NAME", "TYPE", "KIND", "GET", "SET"}, got[0])
	assert.Contains(t, got, []string{"player.health", "int", "stored", "public", "private"})
	assert.Contains(t, got, []string{"secret.seed", "int", "stored", "private", "private"})
	assert.Contains(t, got, []string{"settings.volume", "float", "stored", "public", "public"})
}

func TestList_Pattern(t *testing.T) {
	r := execute(t, "", "-m", gameManifest, "list", "hud.*")
	require.NoError(t, r.err)

	got := rows(r.stdout)
	require.Len(t, got, 3)
	assert.Equal(t, "hud.health", got[1][0])
	assert.Equal(t, "hud.title", got[2][0])

	r = execute(t, "", "-m", gameManifest, "list", "hud.[")
	errutil.AssertErrorCode(t, r.err, propbind.CodeInvalidPattern)
}

func TestGet(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bound target", []string{"get", "hud.health"}, "hud.health = 80\n"},
		{"unique prefix", []string{"get", "player.n"}, "player.name = \"Ada\"\n"},
		{"float", []string{"get", "settings.volume"}, "settings.volume = 0.8\n"},
		{"default for missing", []string{"get", "nope", "--default", "5"}, "nope = 5\n"},
		{"default ignored when present", []string{"get", "debug.enabled", "--default", "true"}, "debug.enabled = false\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := execute(t, "", append([]string{"-m", gameManifest}, tt.args...)...)
			require.NoError(t, r.err)
			assert.Equal(t, tt.want, r.stdout)
		})
	}
}

func TestGet_Failures(t *testing.T) {
	r := execute(t, "", "-m", gameManifest, "get", "secret.seed")
	require.Error(t, r.err)
	assert.True(t, propbind.IsAccessDenied(r.err))
	assert.Contains(t, r.stderr, "command failed")
	assert.Contains(t, r.stderr, "PROPERTY_ACCESS_DENIED")
	assert.Empty(t, r.stdout)

	r = execute(t, "", "-m", gameManifest, "get", "nope")
	assert.True(t, propbind.IsNotFound(r.err))

	r = execute(t, "", "-m", gameManifest, "get", "player.")
	errutil.AssertErrorCode(t, r.err, propbind.CodeAmbiguous)
}

func TestSet(t *testing.T) {
	r := execute(t, "", "-m", gameManifest, "set", "player.name", "Grace")
	require.NoError(t, r.err)
	assert.Equal(t, "player.name = \"Grace\"\n", r.stdout)

	r = execute(t, "", "-m", gameManifest, "set", "ui.volume", "0.3")
	require.NoError(t, r.err)
	assert.Equal(t, "ui.volume = 0.3\n", r.stdout)
}

func TestSet_Failures(t *testing.T) {
	r := execute(t, "", "-m", gameManifest, "set", "player.health", "10")
	assert.True(t, propbind.IsAccessDenied(r.err))

	r = execute(t, "", "-m", gameManifest, "set", "secret.seed", "not-a-number")
	assert.True(t, propbind.IsAccessDenied(r.err), "visibility is checked before type")

	r = execute(t, "", "-m", gameManifest, "set", "hud.health", "lots")
	assert.True(t, propbind.IsTypeMismatch(r.err))

	r = execute(t, "", "-m", gameManifest, "set", "hud.health")
	require.Error(t, r.err)
}

func TestEval(t *testing.T) {
	r := execute(t, "", "-m", gameManifest, "eval",
		"get hud.title",
		`set hud.title = "Zed"`,
		"sync player.name <- hud.title",
		"get player.name",
		"get secret.seed or 0",
	)
	require.Error(t, r.err)
	assert.True(t, propbind.IsAccessDenied(r.err))
	assert.Equal(t, "hud.title = \"Ada\"\nset hud.title\nsync player.name <- hud.title\nplayer.name = \"Zed\"\n", r.stdout)
}

func TestEval_File(t *testing.T) {
	want := "hud.title = \"Ada\"\nset hud.title\nsync player.name <- hud.title\nplayer.name = \"Zed\"\n"

	r := execute(t, "", "-m", gameManifest, "eval", "--file", filepath.Join("testdata", "rename.txt"))
	require.NoError(t, r.err)
	assert.Equal(t, want, r.stdout)

	src, err := os.ReadFile(filepath.Join("testdata", "rename.txt"))
	require.NoError(t, err)
	r = execute(t, string(src), "-m", gameManifest, "eval", "-f", "-")
	require.NoError(t, r.err)
	assert.Equal(t, want, r.stdout)

	r = execute(t, "", "-m", gameManifest, "eval", "-f", "x.txt", "get a")
	require.Error(t, r.err)
}

func TestEval_ParseError(t *testing.T) {
	r := execute(t, "", "-m", gameManifest, "eval", "set hud.title")
	errutil.AssertErrorCode(t, r.err, "SCRIPT_PARSE")
	assert.Empty(t, r.stdout)
}

func TestLua(t *testing.T) {
	r := execute(t, "", "-m", gameManifest, "lua", filepath.Join("testdata", "heal.lua"))
	require.NoError(t, r.err)
	assert.Equal(t, "hud\t80\ntrue\tnil\n85\tnil\nfalse\n", r.stdout)
}

func TestLua_ScriptsDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dataDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataDir)
	scripts := filepath.Join(dataDir, "propbind", "scripts")
	require.NoError(t, os.MkdirAll(scripts, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "peek.lua"), []byte(`print(props.get("player.name"))`), 0o600))

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-m", gameManifest, "lua", "peek.lua"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Ada\tnil\n", out.String())
}

func TestSchema(t *testing.T) {
	r := execute(t, "", "schema")
	require.NoError(t, r.err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &schema))
	assert.Equal(t, manifest.SchemaID, schema["$id"])

	out := filepath.Join(t.TempDir(), "nested", "manifest.schema.json")
	r = execute(t, "", "schema", "--out", out)
	require.NoError(t, r.err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestValidate(t *testing.T) {
	r := execute(t, "", "validate", gameManifest)
	require.NoError(t, r.err)
	assert.Equal(t, gameManifest+": ok\n", r.stdout)

	locked := filepath.Join("testdata", "locked.yaml")
	r = execute(t, "", "validate", gameManifest, locked, filepath.Join("testdata", "missing.yaml"))
	errutil.AssertErrorCode(t, r.err, manifest.CodeInvalid)
	lines := strings.Split(strings.TrimSpace(r.stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, gameManifest+": ok", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], locked+": "))
	assert.Contains(t, lines[1], "vault.code")
}

func TestManifestRequired(t *testing.T) {
	r := execute(t, "", "list")
	errutil.AssertErrorCode(t, r.err, CodeManifestRequired)
}

func TestMetricsFlag(t *testing.T) {
	r := execute(t, "", "--metrics", "-m", gameManifest, "get", "hud.health")
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, "# TYPE propbind_access_total counter\n")
	assert.Contains(t, r.stderr, `propbind_access_total{op="get",path="generic",status="ok"}`)
	assert.Contains(t, r.stderr, `propbind_binding_updates_total{direction="to_target",status="ok"}`)
}

func TestConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	abs, err := filepath.Abs(gameManifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfgPath, []byte("log-format: json\nmanifest: "+abs+"\n"), 0o600))

	r := execute(t, "", "--config", cfgPath, "get", "secret.seed")
	require.Error(t, r.err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(r.stderr)), &entry), r.stderr)
	assert.Equal(t, "command failed", entry["msg"])
	assert.Equal(t, "PROPERTY_ACCESS_DENIED", entry["code"])
	assert.Equal(t, "get", entry["command"])
	assert.Equal(t, "propbind", entry["service"])
}

func TestSetupErrorsAreNotLogged(t *testing.T) {
	r := execute(t, "", "--log-level", "chatty", "schema")
	require.Error(t, r.err)

	var logged *loggedError
	assert.NotErrorAs(t, r.err, &logged)
}
