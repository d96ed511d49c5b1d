// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propbind

import (
	"strings"

	"github.com/samber/oops"
)

// Visibility controls whether mediated callers may perform an operation.
type Visibility uint8

// Visibility values. The zero value is Private.
const (
	Private Visibility = iota
	Public
)

// String returns "public" or "private".
func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}

// ParseVisibility parses "public" or "private" (case-insensitive).
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return Public, nil
	case "private":
		return Private, nil
	default:
		return Private, oops.In("propbind").
			Code(CodeInvalidVisibility).
			With("visibility", s).
			Errorf("invalid visibility %q: must be 'public' or 'private'", s)
	}
}

// Op names a mediated operation.
type Op string

// Mediated operations.
const (
	OpGet Op = "get"
	OpSet Op = "set"
)
