// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package script implements a small statement language for inspecting and
// changing registered properties:
//
//	get NAME [or LITERAL]
//	set NAME = LITERAL
//	list [PATTERN]
//	sync NAME -> NAME
//	sync NAME <- NAME
//
// Statements are separated by newlines or semicolons; '#' starts a comment.
package script

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// scriptLexer keeps newlines significant since they end statements.
// Name also covers glob syntax so list patterns need no quoting.
var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Float", Pattern: `[-+]?\d+\.\d+([eE][-+]?\d+)?`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Arrow", Pattern: `->|<-`},
	{Name: "Name", Pattern: `[a-zA-Z_*?\[{][\w.*?\[\]{}!,]*`},
	{Name: "Punct", Pattern: `=`},
	{Name: "Sep", Pattern: `[;\n]`},
	{Name: "whitespace", Pattern: `[ \t\r]+`},
})

// Program is a parsed script.
type Program struct {
	Pos        lexer.Position `parser:""`
	Statements []*Statement   `parser:"Sep* ( @@ ( Sep+ @@? )* )?"`
}

// Statement is exactly one of the statement forms.
type Statement struct {
	Pos  lexer.Position `parser:""`
	Get  *GetStmt       `parser:"  @@"`
	Set  *SetStmt       `parser:"| @@"`
	List *ListStmt      `parser:"| @@"`
	Sync *SyncStmt      `parser:"| @@"`
}

// GetStmt reads a property, optionally falling back to a default.
type GetStmt struct {
	Name    string   `parser:"'get' @Name"`
	Default *Literal `parser:"( 'or' @@ )?"`
}

// SetStmt writes a property.
type SetStmt struct {
	Name  string   `parser:"'set' @Name '='"`
	Value *Literal `parser:"@@"`
}

// ListStmt lists registered properties, optionally filtered by a glob.
type ListStmt struct {
	Keyword string  `parser:"@'list'"`
	Pattern *string `parser:"@( Name | String )?"`
}

// SyncStmt copies a value once through a temporary binding. Arrow points
// from the value's source to its destination.
type SyncStmt struct {
	Left  string `parser:"'sync' @Name"`
	Arrow string `parser:"@Arrow"`
	Right string `parser:"@Name"`
}

// Literal is a constant in a statement.
type Literal struct {
	Str   *string  `parser:"  @String"`
	Float *float64 `parser:"| @Float"`
	Int   *int64   `parser:"| @Int"`
	Bool  *Boolean `parser:"| @( 'true' | 'false' )"`
}

// Boolean captures the keywords true and false.
type Boolean bool

// Capture implements participle.Capture.
func (b *Boolean) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

// Value returns the literal as a string, float64, int, or bool.
func (l *Literal) Value() any {
	switch {
	case l == nil:
		return nil
	case l.Str != nil:
		return *l.Str
	case l.Float != nil:
		return *l.Float
	case l.Int != nil:
		return int(*l.Int)
	case l.Bool != nil:
		return bool(*l.Bool)
	default:
		return nil
	}
}

func (l *Literal) String() string {
	switch {
	case l == nil:
		return ""
	case l.Str != nil:
		return strconv.Quote(*l.Str)
	case l.Float != nil:
		s := strconv.FormatFloat(*l.Float, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case l.Int != nil:
		return strconv.FormatInt(*l.Int, 10)
	case l.Bool != nil:
		return strconv.FormatBool(bool(*l.Bool))
	default:
		return ""
	}
}

func (s *Statement) String() string {
	switch {
	case s.Get != nil:
		if s.Get.Default != nil {
			return "get " + s.Get.Name + " or " + s.Get.Default.String()
		}
		return "get " + s.Get.Name
	case s.Set != nil:
		return "set " + s.Set.Name + " = " + s.Set.Value.String()
	case s.List != nil:
		if s.List.Pattern != nil {
			return "list " + strconv.Quote(*s.List.Pattern)
		}
		return "list"
	case s.Sync != nil:
		return "sync " + s.Sync.Left + " " + s.Sync.Arrow + " " + s.Sync.Right
	default:
		return ""
	}
}

func (p *Program) String() string {
	lines := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}

// NewParser constructs a participle parser for the script grammar.
func NewParser() (*participle.Parser[Program], error) {
	return participle.Build[Program](
		participle.Lexer(scriptLexer),
		participle.Unquote("String"),
	)
}
