// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propbind

import (
	"github.com/samber/oops"
)

// Kind identifies how a property backs its value.
type Kind uint8

// Property kinds.
const (
	// Stored properties hold their value directly.
	Stored Kind = iota
	// Computed properties delegate Get and Set to owner-supplied accessors.
	Computed
)

// String returns "stored" or "computed".
func (k Kind) String() string {
	if k == Computed {
		return "computed"
	}
	return "stored"
}

// Readable is the read-only view an owner can share with other code.
type Readable[T any] interface {
	Get() T
}

// Writable is the write-only view an owner can share with other code.
type Writable[T any] interface {
	Set(value T)
}

// ReadWriter combines Readable and Writable.
type ReadWriter[T any] interface {
	Readable[T]
	Writable[T]
}

// Option configures a Property at construction.
type Option[T any] func(*Property[T])

// WithOnChange installs a callback invoked with the new value after every Set,
// direct or mediated.
func WithOnChange[T any](fn func(T)) Option[T] {
	return func(p *Property[T]) {
		p.onChange = fn
	}
}

// Property is a value slot of static type T with fixed get and set visibility.
//
// Property is not safe for concurrent use.
type Property[T any] struct {
	kind     Kind
	value    T
	getter   func() T
	setter   func(T)
	getVis   Visibility
	setVis   Visibility
	onChange func(T)
}

// NewStored creates a property that holds initial directly.
func NewStored[T any](initial T, get, set Visibility, opts ...Option[T]) *Property[T] {
	p := &Property[T]{
		kind:   Stored,
		value:  initial,
		getVis: get,
		setVis: set,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewComputed creates a property whose Get and Set call the owner's getter
// and setter. Both accessors are required.
func NewComputed[T any](getter func() T, setter func(T), get, set Visibility, opts ...Option[T]) (*Property[T], error) {
	if getter == nil || setter == nil {
		return nil, oops.In("propbind").
			Code(CodeMissingAccessor).
			With("has_getter", getter != nil).
			With("has_setter", setter != nil).
			Wrap(ErrMissingAccessor)
	}
	p := &Property[T]{
		kind:   Computed,
		getter: getter,
		setter: setter,
		getVis: get,
		setVis: set,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// BindField creates a computed property reading and writing *field, so an
// owner can keep its own storage and still publish it as a property.
// It panics if field is nil.
func BindField[T any](field *T, get, set Visibility, opts ...Option[T]) *Property[T] {
	if field == nil {
		panic("propbind: BindField requires a non-nil field")
	}
	p, err := NewComputed(
		func() T { return *field },
		func(v T) { *field = v },
		get, set, opts...,
	)
	if err != nil {
		panic(err)
	}
	return p
}

// Get returns the current value. It is not visibility-checked.
func (p *Property[T]) Get() T {
	if p.kind == Computed {
		return p.getter()
	}
	return p.value
}

// Set replaces the value. It is not visibility-checked.
func (p *Property[T]) Set(value T) {
	if p.kind == Computed {
		p.setter(value)
	} else {
		p.value = value
	}
	if p.onChange != nil {
		p.onChange(value)
	}
}

// CanGet reports whether mediated callers may read the property.
func (p *Property[T]) CanGet() bool { return p.getVis == Public }

// CanSet reports whether mediated callers may write the property.
func (p *Property[T]) CanSet() bool { return p.setVis == Public }

// GetVisibility returns the visibility of mediated reads.
func (p *Property[T]) GetVisibility() Visibility { return p.getVis }

// SetVisibility returns the visibility of mediated writes.
func (p *Property[T]) SetVisibility() Visibility { return p.setVis }

// Kind returns how the property backs its value.
func (p *Property[T]) Kind() Kind { return p.kind }

// Handle returns a type-erased handle over p.
func (p *Property[T]) Handle() *Handle {
	return HandleOf(p)
}
