// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propbind

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStored_InitialValueAndVisibility(t *testing.T) {
	p := NewStored(7, Public, Private)

	assert.Equal(t, 7, p.Get())
	assert.Equal(t, Stored, p.Kind())
	assert.True(t, p.CanGet())
	assert.False(t, p.CanSet())
	assert.Equal(t, Public, p.GetVisibility())
	assert.Equal(t, Private, p.SetVisibility())
}

func TestNewStored_ZeroValueDefault(t *testing.T) {
	var zero string
	p := NewStored(zero, Public, Public)

	assert.Equal(t, "", p.Get())
}

func TestProperty_DirectSetIgnoresVisibility(t *testing.T) {
	p := NewStored(1, Private, Private)

	p.Set(5)
	assert.Equal(t, 5, p.Get())
}

func TestNewComputed_DelegatesToOwner(t *testing.T) {
	type owner struct{ celsius float64 }
	o := &owner{celsius: 20}

	fahrenheit, err := NewComputed(
		func() float64 { return o.celsius*9/5 + 32 },
		func(f float64) { o.celsius = (f - 32) * 5 / 9 },
		Public, Public,
	)
	require.NoError(t, err)
	assert.Equal(t, Computed, fahrenheit.Kind())
	assert.InDelta(t, 68.0, fahrenheit.Get(), 1e-9)

	fahrenheit.Set(212)
	assert.InDelta(t, 100.0, o.celsius, 1e-9)

	o.celsius = 0
	assert.InDelta(t, 32.0, fahrenheit.Get(), 1e-9)
}

func TestNewComputed_MissingAccessor(t *testing.T) {
	tests := []struct {
		name   string
		getter func() int
		setter func(int)
	}{
		{name: "no getter", setter: func(int) {}},
		{name: "no setter", getter: func() int { return 0 }},
		{name: "neither"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewComputed(tt.getter, tt.setter, Public, Public)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrMissingAccessor)

			oopsErr, ok := oops.AsOops(err)
			require.True(t, ok)
			assert.Equal(t, CodeMissingAccessor, oopsErr.Code())
		})
	}
}

func TestBindField_ReadsAndWritesOwnerStorage(t *testing.T) {
	type owner struct {
		name  string
		label *Property[string]
	}
	o := &owner{name: "lamp"}
	o.label = BindField(&o.name, Public, Private)

	assert.Equal(t, Computed, o.label.Kind())
	assert.Equal(t, "lamp", o.label.Get())

	o.name = "lantern"
	assert.Equal(t, "lantern", o.label.Get())

	o.label.Set("torch")
	assert.Equal(t, "torch", o.name)
}

func TestBindField_NilFieldPanics(t *testing.T) {
	assert.Panics(t, func() {
		BindField[int](nil, Public, Public)
	})
}

func TestWithOnChange_CalledForDirectAndMediatedSets(t *testing.T) {
	var seen []int
	p := NewStored(0, Public, Public, WithOnChange(func(v int) {
		seen = append(seen, v)
	}))

	p.Set(1)
	require.NoError(t, p.Handle().Set(2))

	assert.Equal(t, []int{1, 2}, seen)
}

func TestWithOnChange_NotCalledOnRejectedSet(t *testing.T) {
	calls := 0
	p := NewStored(0, Public, Private, WithOnChange(func(int) { calls++ }))

	err := p.Handle().Set(3)
	require.Error(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, p.Get())
}

type counter struct {
	hits *Property[int]
}

// Hits shares only the read view of the property.
func (c *counter) Hits() Readable[int] { return c.hits }

func TestReadable_NarrowsDirectAccess(t *testing.T) {
	c := &counter{hits: NewStored(3, Private, Private)}

	view := c.Hits()
	assert.Equal(t, 3, view.Get())

	c.hits.Set(4)
	assert.Equal(t, 4, view.Get())
}

var _ ReadWriter[int] = (*Property[int])(nil)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "stored", Stored.String())
	assert.Equal(t, "computed", Computed.String())
}

func TestParseVisibility(t *testing.T) {
	tests := []struct {
		in      string
		want    Visibility
		wantErr bool
	}{
		{in: "public", want: Public},
		{in: " Private ", want: Private},
		{in: "PUBLIC", want: Public},
		{in: "secret", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVisibility(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				oopsErr, ok := oops.AsOops(err)
				require.True(t, ok)
				assert.Equal(t, CodeInvalidVisibility, oopsErr.Code())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}
