// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propbind

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/samber/oops"
)

// Error codes attached to every error this package returns.
const (
	CodeNotFound                = "PROPERTY_NOT_FOUND"
	CodeTypeMismatch            = "PROPERTY_TYPE_MISMATCH"
	CodeAccessDenied            = "PROPERTY_ACCESS_DENIED"
	CodeInvalidName             = "INVALID_PROPERTY_NAME"
	CodeNilHandle               = "NIL_PROPERTY_HANDLE"
	CodeMissingAccessor         = "MISSING_ACCESSOR"
	CodeAmbiguous               = "AMBIGUOUS_PROPERTY"
	CodeInvalidVisibility       = "INVALID_VISIBILITY"
	CodeInvalidPattern          = "INVALID_PATTERN"
	CodeInvalidBindingMode      = "INVALID_BINDING_MODE"
	CodeInvalidBindingDirection = "INVALID_BINDING_DIRECTION"
)

// Sentinel errors wrapped by the coded errors, for use with errors.Is.
var (
	// ErrNotFound indicates no property is registered under a name.
	ErrNotFound = errors.New("property not found")

	// ErrTypeMismatch indicates the requested type differs from the property's type.
	ErrTypeMismatch = errors.New("property type mismatch")

	// ErrAccessDenied indicates a mediated get or set hit a private visibility flag.
	ErrAccessDenied = errors.New("property access denied")

	// ErrInvalidPropertyName indicates the property name is empty or blank.
	ErrInvalidPropertyName = errors.New("property name cannot be empty")

	// ErrNilHandle indicates a nil handle was passed where one is required.
	ErrNilHandle = errors.New("property handle cannot be nil")

	// ErrMissingAccessor indicates a computed property was built without a getter or setter.
	ErrMissingAccessor = errors.New("computed property requires both getter and setter")
)

func errNotFound(name string) error {
	return oops.In("propbind").
		Code(CodeNotFound).
		With("property", name).
		Wrapf(ErrNotFound, "%s", describe(name))
}

func errTypeMismatch(name string, want, got reflect.Type) error {
	return oops.In("propbind").
		Code(CodeTypeMismatch).
		With("property", name).
		With("want", typeName(want)).
		With("got", typeName(got)).
		Wrapf(ErrTypeMismatch, "%s is %s, not %s", describe(name), typeName(want), typeName(got))
}

func errAccessDenied(name string, op Op) error {
	return oops.In("propbind").
		Code(CodeAccessDenied).
		With("property", name).
		With("op", string(op)).
		Wrapf(ErrAccessDenied, "cannot %s private value of %s", op, describe(name))
}

// IsNotFound reports whether err is a NotFound failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTypeMismatch reports whether err is a TypeMismatch failure.
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsAccessDenied reports whether err is an AccessDenied failure.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// AmbiguousPropertyError indicates multiple properties match a prefix.
type AmbiguousPropertyError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousPropertyError) Error() string {
	return "ambiguous property '" + e.Prefix + "' - matches: " + joinSorted(e.Matches)
}

// describe names a property in messages; handles used outside a registry
// have no name.
func describe(name string) string {
	if name == "" {
		return "property"
	}
	return fmt.Sprintf("property %q", name)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// status maps an access outcome onto a metrics label.
func status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case IsAccessDenied(err):
		return StatusAccessDenied
	case IsTypeMismatch(err):
		return StatusTypeMismatch
	case IsNotFound(err):
		return StatusNotFound
	default:
		return StatusError
	}
}
