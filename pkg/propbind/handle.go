// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propbind

import (
	"reflect"
)

// Handle is a type-erased, non-owning view over a Property.
//
// A Handle must not be used after the property it wraps has been discarded.
type Handle struct {
	typ    reflect.Type
	kind   Kind
	getVis Visibility
	setVis Visibility
	get    func() any
	set    func(any) bool // false when the value is not a T
	prop   any            // *Property[T]
}

// HandleOf wraps p, capturing the runtime type identifier of T.
// It panics if p is nil.
func HandleOf[T any](p *Property[T]) *Handle {
	if p == nil {
		panic("propbind: HandleOf requires a non-nil property")
	}
	typ := reflect.TypeFor[T]()
	return &Handle{
		typ:    typ,
		kind:   p.kind,
		getVis: p.getVis,
		setVis: p.setVis,
		get:    func() any { return p.Get() },
		set: func(v any) bool {
			if v == nil {
				if !nillable(typ) {
					return false
				}
				var zero T
				p.Set(zero)
				return true
			}
			tv, ok := v.(T)
			if !ok {
				return false
			}
			p.Set(tv)
			return true
		},
		prop: p,
	}
}

// Downcast recovers the typed property behind h. It succeeds only when T is
// exactly the type h captured.
func Downcast[T any](h *Handle) (*Property[T], bool) {
	if h == nil || h.typ != reflect.TypeFor[T]() {
		return nil, false
	}
	p, ok := h.prop.(*Property[T])
	return p, ok
}

// Type returns the static type of the wrapped property.
func (h *Handle) Type() reflect.Type { return h.typ }

// Kind returns the wrapped property's kind.
func (h *Handle) Kind() Kind { return h.kind }

// CanGet reports whether mediated reads are allowed.
func (h *Handle) CanGet() bool { return h.getVis == Public }

// CanSet reports whether mediated writes are allowed.
func (h *Handle) CanSet() bool { return h.setVis == Public }

// Get returns the current value, or an AccessDenied error when the property
// is private for reads.
func (h *Handle) Get() (any, error) {
	return h.read("")
}

// Set stores v, failing with AccessDenied when the property is private for
// writes and with TypeMismatch when v is not a value of the property's type.
func (h *Handle) Set(v any) error {
	return h.write("", v)
}

// authorize is the single visibility gate for every mediated path.
func (h *Handle) authorize(name string, op Op) error {
	allowed := h.CanGet()
	if op == OpSet {
		allowed = h.CanSet()
	}
	if !allowed {
		return errAccessDenied(name, op)
	}
	return nil
}

func (h *Handle) read(name string) (any, error) {
	if err := h.authorize(name, OpGet); err != nil {
		return nil, err
	}
	return h.get(), nil
}

func (h *Handle) write(name string, v any) error {
	if err := h.authorize(name, OpSet); err != nil {
		return err
	}
	if !h.set(v) {
		return errTypeMismatch(name, h.typ, reflect.TypeOf(v))
	}
	return nil
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return true
	default:
		return false
	}
}
