// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propbind

import (
	"crypto/rand"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// BindingMode selects which directions a Binding may transfer values in.
type BindingMode uint8

// Binding modes.
const (
	// OneWay copies source into target.
	OneWay BindingMode = iota
	// OneWayToSource copies target into source.
	OneWayToSource
	// TwoWay allows both directions.
	TwoWay
)

// String returns the manifest spelling of the mode.
func (m BindingMode) String() string {
	switch m {
	case OneWay:
		return "one-way"
	case OneWayToSource:
		return "one-way-to-source"
	case TwoWay:
		return "two-way"
	default:
		return "unknown"
	}
}

// ParseBindingMode parses "one-way", "one-way-to-source" or "two-way".
func ParseBindingMode(s string) (BindingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one-way":
		return OneWay, nil
	case "one-way-to-source":
		return OneWayToSource, nil
	case "two-way":
		return TwoWay, nil
	default:
		return OneWay, oops.In("propbind").
			Code(CodeInvalidBindingMode).
			With("mode", s).
			Errorf("invalid binding mode %q", s)
	}
}

func (m BindingMode) toTarget() bool { return m == OneWay || m == TwoWay }
func (m BindingMode) toSource() bool { return m == OneWayToSource || m == TwoWay }

// Direction label values for binding metrics.
const (
	DirectionToTarget = "to_target"
	DirectionToSource = "to_source"
)

var (
	bindingEntropy     = ulid.Monotonic(rand.Reader, 0)
	bindingEntropyLock sync.Mutex
)

func newBindingID() ulid.ULID {
	bindingEntropyLock.Lock()
	defer bindingEntropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), bindingEntropy)
}

// Binding links two properties of the same type. Values move only when
// UpdateTarget or UpdateSource is called, always through the mediated path.
type Binding struct {
	id         ulid.ULID
	source     *Handle
	target     *Handle
	sourceName string
	targetName string
	mode       BindingMode
	logger     *slog.Logger
}

// NewBinding links source and target. Every direction the mode allows must
// read a readable property and write a writable one, and both handles must
// capture the same type. Access is checked before type.
func NewBinding(source, target *Handle, mode BindingMode) (*Binding, error) {
	return newBinding("", source, "", target, mode, nil)
}

func newBinding(sourceName string, source *Handle, targetName string, target *Handle, mode BindingMode, logger *slog.Logger) (*Binding, error) {
	if source == nil || target == nil {
		return nil, oops.In("propbind").Code(CodeNilHandle).Wrap(ErrNilHandle)
	}
	if mode > TwoWay {
		return nil, oops.In("propbind").
			Code(CodeInvalidBindingMode).
			With("mode", int(mode)).
			Errorf("invalid binding mode %d", mode)
	}
	if mode.toTarget() {
		if err := source.authorize(sourceName, OpGet); err != nil {
			return nil, err
		}
		if err := target.authorize(targetName, OpSet); err != nil {
			return nil, err
		}
	}
	if mode.toSource() {
		if err := target.authorize(targetName, OpGet); err != nil {
			return nil, err
		}
		if err := source.authorize(sourceName, OpSet); err != nil {
			return nil, err
		}
	}
	if source.typ != target.typ {
		return nil, errTypeMismatch(targetName, target.typ, source.typ)
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &Binding{
		id:         newBindingID(),
		source:     source,
		target:     target,
		sourceName: sourceName,
		targetName: targetName,
		mode:       mode,
		logger:     logger,
	}
	b.logger.Debug("binding created",
		"binding_id", b.id.String(),
		"source", sourceName,
		"target", targetName,
		"mode", mode.String())
	return b, nil
}

// Bind links the properties registered under source and target.
func (r *Registry) Bind(source, target string, mode BindingMode) (*Binding, error) {
	sh, ok := r.Find(source)
	if !ok {
		return nil, errNotFound(source)
	}
	th, ok := r.Find(target)
	if !ok {
		return nil, errNotFound(target)
	}
	return newBinding(source, sh, target, th, mode, r.log())
}

// ID returns the binding's unique identifier.
func (b *Binding) ID() ulid.ULID { return b.id }

// Mode returns the binding mode.
func (b *Binding) Mode() BindingMode { return b.mode }

// Source returns the source handle.
func (b *Binding) Source() *Handle { return b.source }

// Target returns the target handle.
func (b *Binding) Target() *Handle { return b.target }

// UpdateTarget copies the source value into the target.
func (b *Binding) UpdateTarget() error {
	if !b.mode.toTarget() {
		return b.errDirection(DirectionToTarget)
	}
	err := transfer(b.sourceName, b.source, b.targetName, b.target)
	b.record(DirectionToTarget, err)
	return err
}

// UpdateSource copies the target value into the source.
func (b *Binding) UpdateSource() error {
	if !b.mode.toSource() {
		return b.errDirection(DirectionToSource)
	}
	err := transfer(b.targetName, b.target, b.sourceName, b.source)
	b.record(DirectionToSource, err)
	return err
}

func transfer(fromName string, from *Handle, toName string, to *Handle) error {
	v, err := from.read(fromName)
	recordAccess(OpGet, PathBinding, status(err))
	if err != nil {
		return err
	}
	err = to.write(toName, v)
	recordAccess(OpSet, PathBinding, status(err))
	return err
}

func (b *Binding) record(direction string, err error) {
	recordBindingUpdate(direction, err)
	if err != nil {
		b.logger.Debug("binding update failed",
			"binding_id", b.id.String(),
			"direction", direction,
			"error", err)
	}
}

func (b *Binding) errDirection(direction string) error {
	return oops.In("propbind").
		Code(CodeInvalidBindingDirection).
		With("binding_id", b.id.String()).
		With("mode", b.mode.String()).
		With("direction", direction).
		Errorf("%s binding cannot update %s", b.mode, strings.TrimPrefix(direction, "to_"))
}
