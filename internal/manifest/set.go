// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package manifest

import (
	"reflect"

	"github.com/samber/oops"

	"github.com/holomush/propbind/internal/valueconv"
	"github.com/holomush/propbind/pkg/propbind"
)

// Set owns the properties declared by a manifest. It is the owner entity:
// Peek reads a value regardless of its visibility, while everyone else goes
// through Registry.
type Set struct {
	registry *propbind.Registry
	peek     map[string]func() any
	bindings []*propbind.Binding
	links    []link
}

// link remembers which names a binding connects.
type link struct {
	source, target string
	binding        *propbind.Binding
}

// Registry returns the registry holding every declared property.
func (s *Set) Registry() *propbind.Registry { return s.registry }

// Bindings returns the bindings in declaration order.
func (s *Set) Bindings() []*propbind.Binding {
	out := make([]*propbind.Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

// Peek returns the current value of a declared property without checking
// its visibility.
func (s *Set) Peek(name string) (any, bool) {
	fn, ok := s.peek[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Sync runs every binding once in its primary direction: OneWay and TwoWay
// update the target, OneWayToSource updates the source.
func (s *Set) Sync() error {
	for _, b := range s.bindings {
		if err := syncBinding(b); err != nil {
			return err
		}
	}
	return nil
}

// Propagate pushes the value of name along every binding that carries it
// away from name, then onward from each property it reached. Each property
// is updated at most once, so cycles terminate.
func (s *Set) Propagate(name string) error {
	visited := map[string]bool{name: true}
	queue := []string{name}
	for len(queue) > 0 {
		from := queue[0]
		queue = queue[1:]
		for _, l := range s.links {
			mode := l.binding.Mode()
			switch {
			case l.source == from && mode != propbind.OneWayToSource && !visited[l.target]:
				if err := l.binding.UpdateTarget(); err != nil {
					return err
				}
				visited[l.target] = true
				queue = append(queue, l.target)
			case l.target == from && mode != propbind.OneWay && !visited[l.source]:
				if err := l.binding.UpdateSource(); err != nil {
					return err
				}
				visited[l.source] = true
				queue = append(queue, l.source)
			}
		}
	}
	return nil
}

func syncBinding(b *propbind.Binding) error {
	if b.Mode() == propbind.OneWayToSource {
		return b.UpdateSource()
	}
	return b.UpdateTarget()
}

// Build creates the declared properties, registers them, and wires the
// declared bindings. Each binding runs once so targets start consistent with
// their sources.
func (m *Manifest) Build(opts ...propbind.RegistryOption) (*Set, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	s := &Set{
		registry: propbind.NewRegistry(opts...),
		peek:     make(map[string]func() any, len(m.Properties)),
	}

	for _, p := range m.Properties {
		h, peek, err := p.build()
		if err != nil {
			return nil, oops.In("manifest").With("property", p.Name).Wrapf(err, "build property %q", p.Name)
		}
		if err := s.registry.Register(p.Name, h); err != nil {
			return nil, oops.In("manifest").With("property", p.Name).Wrap(err)
		}
		s.peek[p.Name] = peek
	}

	for i, decl := range m.Bindings {
		mode, _ := decl.mode() // checked by Validate
		b, err := s.registry.Bind(decl.Source, decl.Target, mode)
		if err != nil {
			return nil, oops.In("manifest").
				With("index", i).
				Wrapf(err, "bind %s to %s", decl.Source, decl.Target)
		}
		if err := syncBinding(b); err != nil {
			return nil, oops.In("manifest").
				With("index", i).
				Wrapf(err, "initial update of %s %s %s", decl.Source, mode, decl.Target)
		}
		s.bindings = append(s.bindings, b)
		s.links = append(s.links, link{source: decl.Source, target: decl.Target, binding: b})
	}
	return s, nil
}

func (p Property) build() (*propbind.Handle, func() any, error) {
	get, set, err := p.visibility()
	if err != nil {
		return nil, nil, err
	}
	switch p.Type {
	case valueconv.TypeInt:
		return stored[int](p.Value, get, set)
	case valueconv.TypeFloat:
		return stored[float64](p.Value, get, set)
	case valueconv.TypeString:
		return stored[string](p.Value, get, set)
	case valueconv.TypeBool:
		return stored[bool](p.Value, get, set)
	default:
		return nil, nil, invalid().With("type", p.Type).Errorf("unknown property type %q", p.Type)
	}
}

func stored[T any](raw any, get, set propbind.Visibility) (*propbind.Handle, func() any, error) {
	var initial T
	if raw != nil {
		v, err := valueconv.Coerce(raw, reflect.TypeFor[T]())
		if err != nil {
			return nil, nil, err
		}
		initial = v.(T) //nolint:forcetypeassert // Coerce returns exactly T
	}
	p := propbind.NewStored(initial, get, set)
	return p.Handle(), func() any { return p.Get() }, nil
}
