// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/samber/oops"
)

// Error codes returned by this package.
const (
	CodeParse   = "SCRIPT_PARSE"
	CodeRuntime = "SCRIPT_RUNTIME"
)

var parser *participle.Parser[Program]

func init() {
	var err error
	parser, err = NewParser()
	if err != nil {
		panic(fmt.Sprintf("failed to build script parser: %v", err))
	}
}

// Parse parses script source into a Program.
func Parse(src string) (*Program, error) {
	prog, err := parser.ParseString("", src)
	if err != nil {
		return nil, oops.In("script").Code(CodeParse).Wrapf(err, "parse script")
	}
	return prog, nil
}
