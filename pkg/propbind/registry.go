// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propbind

import (
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Entry ties a registered name to its handle.
type Entry struct {
	Name   string
	Handle *Handle
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registration and denial events.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry maps names to property handles. Entries are non-owning.
//
// The name table is safe for concurrent use; the properties behind the
// handles are not, so callers sharing properties across goroutines must
// serialize access themselves. The zero value is an empty registry.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{handles: make(map[string]*Handle)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) log() *slog.Logger {
	if r.logger == nil {
		return slog.Default()
	}
	return r.logger
}

// Register inserts or replaces the handle stored under name.
// Returns ErrInvalidPropertyName for blank names and ErrNilHandle for nil handles.
func (r *Registry) Register(name string, h *Handle) error {
	if strings.TrimSpace(name) == "" {
		return oops.In("propbind").Code(CodeInvalidName).Wrap(ErrInvalidPropertyName)
	}
	if h == nil {
		return oops.In("propbind").Code(CodeNilHandle).With("property", name).Wrap(ErrNilHandle)
	}

	r.mu.Lock()
	if r.handles == nil {
		r.handles = make(map[string]*Handle)
	}
	_, replaced := r.handles[name]
	r.handles[name] = h
	r.mu.Unlock()

	if replaced {
		r.log().Debug("property handle replaced", "property", name, "type", typeName(h.typ))
	} else {
		r.log().Debug("property registered", "property", name, "type", typeName(h.typ), "kind", h.kind.String())
	}
	return nil
}

// MustRegister registers h under name, panicking on error.
// This is intended for owner construction only.
func (r *Registry) MustRegister(name string, h *Handle) {
	if err := r.Register(name, h); err != nil {
		panic(err)
	}
}

// Expose registers a handle over p under name.
func Expose[T any](r *Registry, name string, p *Property[T]) error {
	if p == nil {
		return oops.In("propbind").Code(CodeNilHandle).With("property", name).Wrap(ErrNilHandle)
	}
	return r.Register(name, HandleOf(p))
}

// Unregister removes name, reporting whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	_, ok := r.handles[name]
	delete(r.handles, name)
	r.mu.Unlock()

	if ok {
		r.log().Debug("property unregistered", "property", name)
	}
	return ok
}

// Find returns the handle registered under name.
func (r *Registry) Find(name string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handles[name]
	return h, ok
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handles)
}

// Names returns the sorted list of registered names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns every registration sorted by name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.handles))
	for name, h := range r.handles {
		entries = append(entries, Entry{Name: name, Handle: h})
	}
	sortEntries(entries)
	return entries
}

// Resolve finds a property by exact name or unique prefix.
// Returns an AmbiguousPropertyError if multiple properties match and a
// NotFound error if none do.
func (r *Registry) Resolve(nameOrPrefix string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if h, ok := r.handles[nameOrPrefix]; ok {
		return Entry{Name: nameOrPrefix, Handle: h}, nil
	}

	var matches []string
	for name := range r.handles {
		if strings.HasPrefix(name, nameOrPrefix) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return Entry{}, errNotFound(nameOrPrefix)
	case 1:
		return Entry{Name: matches[0], Handle: r.handles[matches[0]]}, nil
	default:
		return Entry{}, oops.In("propbind").
			Code(CodeAmbiguous).
			With("prefix", nameOrPrefix).
			Wrap(&AmbiguousPropertyError{Prefix: nameOrPrefix, Matches: matches})
	}
}

// Match returns the entries whose names match a glob pattern, sorted by name.
// Dots separate name segments, so "player.*" matches "player.health" but not
// "player.stats.str"; use "player.**" for any depth. An empty pattern matches
// every entry.
func (r *Registry) Match(pattern string) ([]Entry, error) {
	if pattern == "" {
		return r.Entries(), nil
	}
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return nil, oops.In("propbind").
			Code(CodeInvalidPattern).
			With("pattern", pattern).
			Wrap(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []Entry
	for name, h := range r.handles {
		if g.Match(name) {
			entries = append(entries, Entry{Name: name, Handle: h})
		}
	}
	sortEntries(entries)
	return entries, nil
}

// SetValue writes value through the handle registered under name.
//
// A missing name or a property of a type other than T yields (false, nil),
// whatever the property's visibility. A property of type T that is private
// for writes yields an AccessDenied error.
func SetValue[T any](r *Registry, name string, value T) (bool, error) {
	h, ok := r.Find(name)
	if !ok {
		recordAccess(OpSet, PathTyped, StatusNotFound)
		return false, nil
	}
	p, ok := Downcast[T](h)
	if !ok {
		recordAccess(OpSet, PathTyped, StatusTypeMismatch)
		return false, nil
	}
	if err := h.authorize(name, OpSet); err != nil {
		r.denied(name, OpSet, PathTyped)
		return false, err
	}
	p.Set(value)
	recordAccess(OpSet, PathTyped, StatusOK)
	return true, nil
}

// GetValue reads the property registered under name as a T.
// It fails with NotFound, AccessDenied or TypeMismatch, checked in that order.
func GetValue[T any](r *Registry, name string) (T, error) {
	var zero T
	h, ok := r.Find(name)
	if !ok {
		recordAccess(OpGet, PathTyped, StatusNotFound)
		return zero, errNotFound(name)
	}
	if err := h.authorize(name, OpGet); err != nil {
		r.denied(name, OpGet, PathTyped)
		return zero, err
	}
	p, ok := Downcast[T](h)
	if !ok {
		recordAccess(OpGet, PathTyped, StatusTypeMismatch)
		return zero, errTypeMismatch(name, h.typ, reflect.TypeFor[T]())
	}
	recordAccess(OpGet, PathTyped, StatusOK)
	return p.Get(), nil
}

// GetValueOr reads the property registered under name as a T, returning def
// when the name is missing or the type differs. AccessDenied is still
// returned as an error (alongside def).
func GetValueOr[T any](r *Registry, name string, def T) (T, error) {
	v, err := GetValue[T](r, name)
	switch {
	case err == nil:
		return v, nil
	case IsAccessDenied(err):
		return def, err
	default:
		return def, nil
	}
}

// SetValueGeneric writes an untyped value through the handle registered under
// name. Only the handle's captured type decides what is accepted: a value of
// another type yields (false, nil), as does a missing name. A property that
// is private for writes yields an AccessDenied error.
func (r *Registry) SetValueGeneric(name string, value any) (bool, error) {
	h, ok := r.Find(name)
	if !ok {
		recordAccess(OpSet, PathGeneric, StatusNotFound)
		return false, nil
	}
	err := h.write(name, value)
	switch {
	case err == nil:
		recordAccess(OpSet, PathGeneric, StatusOK)
		return true, nil
	case IsTypeMismatch(err):
		recordAccess(OpSet, PathGeneric, StatusTypeMismatch)
		return false, nil
	default:
		r.denied(name, OpSet, PathGeneric)
		return false, err
	}
}

// GetValueGeneric reads the property registered under name as an untyped
// value. It fails with NotFound or AccessDenied.
func (r *Registry) GetValueGeneric(name string) (any, error) {
	h, ok := r.Find(name)
	if !ok {
		recordAccess(OpGet, PathGeneric, StatusNotFound)
		return nil, errNotFound(name)
	}
	v, err := h.read(name)
	if err != nil {
		r.denied(name, OpGet, PathGeneric)
		return nil, err
	}
	recordAccess(OpGet, PathGeneric, StatusOK)
	return v, nil
}

// GetValueGenericOr is GetValueGeneric returning def for a missing name.
func (r *Registry) GetValueGenericOr(name string, def any) (any, error) {
	v, err := r.GetValueGeneric(name)
	switch {
	case err == nil:
		return v, nil
	case IsNotFound(err):
		return def, nil
	default:
		return def, err
	}
}

func (r *Registry) denied(name string, op Op, path string) {
	recordAccess(op, path, StatusAccessDenied)
	r.log().Debug("property access denied", "property", name, "op", string(op), "path", path)
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}

func joinSorted(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
