// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package valueconv converts text and loosely typed values into the Go type
// captured by a property handle.
//
// Callers outside Go (the CLI, manifests, scripts, Lua) only ever hold
// strings, float64, int, and bool. A handle only accepts its exact type, so
// those values are coerced here before reaching the registry.
package valueconv

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/samber/oops"

	"github.com/holomush/propbind/pkg/propbind"
)

// CodeConversion is the oops code for values that cannot be coerced.
const CodeConversion = "VALUE_CONVERSION"

// Type names used by manifests and listings.
const (
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeString = "string"
	TypeBool   = "bool"
)

var byName = map[string]reflect.Type{
	TypeInt:    reflect.TypeFor[int](),
	TypeFloat:  reflect.TypeFor[float64](),
	TypeString: reflect.TypeFor[string](),
	TypeBool:   reflect.TypeFor[bool](),
}

// TypeByName returns the Go type for a manifest type name.
func TypeByName(name string) (reflect.Type, bool) {
	t, ok := byName[name]
	return t, ok
}

// TypeNames returns the manifest type names in a stable order.
func TypeNames() []string {
	return []string{TypeInt, TypeFloat, TypeString, TypeBool}
}

// NameOf returns the short name for t: the manifest name for the four basic
// types, otherwise t.String().
func NameOf(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	for name, bt := range byName {
		if bt == t {
			return name
		}
	}
	return t.String()
}

// Supported reports whether values can be coerced into t.
func Supported(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String, reflect.Bool:
		return true
	case reflect.Interface:
		return t.NumMethod() == 0
	default:
		return false
	}
}

// Parse converts text into a value of type t.
// Strings are taken verbatim.
func Parse(text string, t reflect.Type) (any, error) {
	if !Supported(t) {
		return nil, unsupported(text, t)
	}
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, t.Bits())
		if err != nil {
			return nil, mismatch(text, t, err)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(text, 10, t.Bits())
		if err != nil {
			return nil, mismatch(text, t, err)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, t.Bits())
		if err != nil {
			return nil, mismatch(text, t, err)
		}
		out.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, mismatch(text, t, err)
		}
		out.SetBool(b)
	case reflect.String:
		out.SetString(text)
	case reflect.Interface:
		return text, nil
	}
	return out.Interface(), nil
}

// Coerce converts v into a value of type t. Numbers convert between integer
// and float types when no precision is lost; strings are parsed as for Parse
// unless t is itself a string type.
func Coerce(v any, t reflect.Type) (any, error) {
	if !Supported(t) {
		return nil, unsupported(v, t)
	}
	if v == nil {
		return nil, mismatch(v, t, nil)
	}
	if reflect.TypeOf(v) == t || t.Kind() == reflect.Interface {
		return v, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return Parse(rv.String(), t)
	case reflect.Bool:
		if t.Kind() != reflect.Bool {
			return nil, mismatch(v, t, nil)
		}
		out := reflect.New(t).Elem()
		out.SetBool(rv.Bool())
		return out.Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if isFloat(t) {
			return fromFloat(float64(n), v, t)
		}
		return fromInt(n, v, t)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if isFloat(t) {
			return fromFloat(float64(n), v, t)
		}
		return fromUint(n, v, t)
	case reflect.Float32, reflect.Float64:
		return fromFloat(rv.Float(), v, t)
	default:
		return nil, mismatch(v, t, nil)
	}
}

func isFloat(t reflect.Type) bool {
	return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}

// fromInt converts a signed integer into an integer type without going
// through float64.
func fromInt(n int64, orig any, t reflect.Type) (any, error) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if out.OverflowInt(n) {
			return nil, mismatch(orig, t, nil)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n < 0 || out.OverflowUint(uint64(n)) {
			return nil, mismatch(orig, t, nil)
		}
		out.SetUint(uint64(n))
	default:
		return nil, mismatch(orig, t, nil)
	}
	return out.Interface(), nil
}

// fromUint converts an unsigned integer into an integer type without going
// through float64.
func fromUint(n uint64, orig any, t reflect.Type) (any, error) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n > math.MaxInt64 || out.OverflowInt(int64(n)) {
			return nil, mismatch(orig, t, nil)
		}
		out.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if out.OverflowUint(n) {
			return nil, mismatch(orig, t, nil)
		}
		out.SetUint(n)
	default:
		return nil, mismatch(orig, t, nil)
	}
	return out.Interface(), nil
}

func fromFloat(f float64, orig any, t reflect.Type) (any, error) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
			return nil, mismatch(orig, t, nil)
		}
		out.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f < 0 || f != math.Trunc(f) || f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
			return nil, mismatch(orig, t, nil)
		}
		out.SetUint(uint64(f))
	case reflect.Float32, reflect.Float64:
		if out.OverflowFloat(f) {
			return nil, mismatch(orig, t, nil)
		}
		out.SetFloat(f)
	default:
		return nil, mismatch(orig, t, nil)
	}
	return out.Interface(), nil
}

// Format renders v for display. Floats use the shortest representation that
// round-trips; strings are quoted.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return strconv.Quote(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.String:
		return strconv.Quote(rv.String())
	default:
		return fmt.Sprint(v)
	}
}

func mismatch(v any, t reflect.Type, cause error) error {
	b := oops.In("valueconv").
		Code(CodeConversion).
		With("value", v).
		With("want", NameOf(t))
	if cause != nil {
		return b.Wrapf(propbind.ErrTypeMismatch, "cannot convert %v to %s: %v", v, NameOf(t), cause)
	}
	return b.Wrapf(propbind.ErrTypeMismatch, "cannot convert %v to %s", v, NameOf(t))
}

func unsupported(v any, t reflect.Type) error {
	return oops.In("valueconv").
		Code(CodeConversion).
		With("value", v).
		With("want", NameOf(t)).
		Wrapf(propbind.ErrTypeMismatch, "values cannot be converted to %s", NameOf(t))
}
