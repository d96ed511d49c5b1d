// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propbind_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/propbind/pkg/propbind"
)

// widget is an owner entity with one property per visibility combination
// and a computed property derived from its own state.
type widget struct {
	a, b, c, d *propbind.Property[int]
	area       *propbind.Property[int]
	w, h       int
}

func newWidget() *widget {
	wd := &widget{w: 2, h: 3}
	wd.a = propbind.NewStored(1, propbind.Public, propbind.Public)
	wd.b = propbind.NewStored(2, propbind.Public, propbind.Private)
	wd.c = propbind.NewStored(3, propbind.Private, propbind.Public)
	wd.d = propbind.NewStored(4, propbind.Private, propbind.Private)
	area, err := propbind.NewComputed(
		func() int { return wd.w * wd.h },
		func(v int) { wd.w, wd.h = v, 1 },
		propbind.Public, propbind.Private,
	)
	Expect(err).NotTo(HaveOccurred())
	wd.area = area
	return wd
}

func (wd *widget) register(r *propbind.Registry) {
	Expect(propbind.Expose(r, "a", wd.a)).To(Succeed())
	Expect(propbind.Expose(r, "b", wd.b)).To(Succeed())
	Expect(propbind.Expose(r, "c", wd.c)).To(Succeed())
	Expect(propbind.Expose(r, "d", wd.d)).To(Succeed())
	Expect(propbind.Expose(r, "area", wd.area)).To(Succeed())
}

var _ = Describe("Registry-mediated access", func() {
	var (
		wd  *widget
		reg *propbind.Registry
	)

	BeforeEach(func() {
		wd = newWidget()
		reg = propbind.NewRegistry()
		wd.register(reg)
	})

	Describe("the four visibility combinations", func() {
		It("reads a public property", func() {
			Expect(propbind.GetValueOr(reg, "a", 0)).To(Equal(1))
		})

		It("round-trips a fully public property", func() {
			ok, err := propbind.SetValue(reg, "a", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(propbind.GetValueOr(reg, "a", 0)).To(Equal(10))
		})

		It("denies reading a private-get property", func() {
			_, err := propbind.GetValueOr(reg, "c", 0)
			Expect(err).To(MatchError(propbind.ErrAccessDenied))
		})

		It("denies writing a private-set property but still reads it", func() {
			ok, err := propbind.SetValue(reg, "b", 99)
			Expect(err).To(MatchError(propbind.ErrAccessDenied))
			Expect(ok).To(BeFalse())
			Expect(propbind.GetValueOr(reg, "b", 0)).To(Equal(2))
		})

		It("denies both directions on a fully private property", func() {
			_, getErr := reg.GetValueGeneric("d")
			_, setErr := reg.SetValueGeneric("d", 5)
			Expect(getErr).To(MatchError(propbind.ErrAccessDenied))
			Expect(setErr).To(MatchError(propbind.ErrAccessDenied))
		})

		It("lets the owner write what the registry cannot", func() {
			wd.d.Set(40)
			Expect(wd.d.Get()).To(Equal(40))
			_, err := propbind.GetValue[int](reg, "d")
			Expect(propbind.IsAccessDenied(err)).To(BeTrue())
		})
	})

	DescribeTable("private reads fail whatever type is requested",
		func(read func() error) {
			Expect(propbind.IsAccessDenied(read())).To(BeTrue())
		},
		Entry("int", func() error { _, err := propbind.GetValueOr(reg, "c", 0); return err }),
		Entry("string", func() error { _, err := propbind.GetValueOr(reg, "c", ""); return err }),
		Entry("bool", func() error { _, err := propbind.GetValue[bool](reg, "d"); return err }),
		Entry("generic", func() error { _, err := reg.GetValueGeneric("d"); return err }),
	)

	Describe("absence", func() {
		It("finds nothing", func() {
			h, ok := reg.Find("nonexistent")
			Expect(ok).To(BeFalse())
			Expect(h).To(BeNil())
		})

		It("falls back to the default", func() {
			Expect(propbind.GetValueOr(reg, "nonexistent", 42)).To(Equal(42))
		})

		It("fails without a default", func() {
			_, err := propbind.GetValue[int](reg, "nonexistent")
			Expect(err).To(MatchError(propbind.ErrNotFound))
		})
	})

	Describe("type safety", func() {
		It("returns the default and leaves the value untouched", func() {
			Expect(propbind.GetValueOr(reg, "a", "text")).To(Equal("text"))
			Expect(propbind.GetValueOr(reg, "a", 3.5)).To(Equal(3.5))
			Expect(wd.a.Get()).To(Equal(1))
		})

		It("reports a mismatch without a default", func() {
			_, err := propbind.GetValue[string](reg, "a")
			Expect(err).To(MatchError(propbind.ErrTypeMismatch))
		})
	})

	Describe("computed properties", func() {
		It("reflect the owner's state at call time", func() {
			first, err := propbind.GetValue[int](reg, "area")
			Expect(err).NotTo(HaveOccurred())

			wd.w = 10

			second, err := propbind.GetValue[int](reg, "area")
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(Equal(6))
			Expect(second).To(Equal(30))
		})

		It("honor their own visibility", func() {
			_, err := propbind.SetValue(reg, "area", 1)
			Expect(err).To(MatchError(propbind.ErrAccessDenied))
		})
	})
})
