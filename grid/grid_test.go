package grid

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Grid2D", func() {
	It("should build from rows", func() {
		g := From2D([][]float64{{1, 2, 3}, {4, 5, 6}})

		Expect(g.X()).To(Equal(3))
		Expect(g.Y()).To(Equal(2))
		Expect(g.At(1, 0)).To(Equal(4.0))
		Expect(g.Sum()).To(Equal(21.0))
		Expect(g.Max()).To(Equal(6.0))
		Expect(g.Rows()).To(Equal([][]float64{{1, 2, 3}, {4, 5, 6}}))
	})

	It("should panic on ragged rows", func() {
		Expect(func() { From2D([][]float64{{1, 2}, {3}}) }).To(Panic())
	})

	It("should panic on out-of-range access", func() {
		g := New2D(2, 2)

		Expect(func() { g.At(2, 0) }).To(Panic())
		Expect(func() { g.Set(0, -1, 1) }).To(Panic())
	})

	It("should clone deeply", func() {
		g := New2D(2, 2)
		c := g.Clone()
		c.Add(0, 0, 1)

		Expect(g.At(0, 0)).To(Equal(0.0))
		Expect(g.Equal(c, 0.5)).To(BeFalse())
		Expect(g.Equal(c, 1)).To(BeTrue())
	})
})

var _ = Describe("Grid3D", func() {
	var g *Grid3D

	BeforeEach(func() {
		g = New3D(3, 2, 4)
	})

	It("should linearize indices layer by layer", func() {
		Expect(g.Index(0, 0, 0)).To(Equal(0))
		Expect(g.Index(0, 0, 2)).To(Equal(2))
		Expect(g.Index(0, 1, 0)).To(Equal(3))
		Expect(g.Index(1, 0, 0)).To(Equal(6))
		Expect(g.Index(3, 1, 2)).To(Equal(g.Len() - 1))
	})

	It("should report containment", func() {
		Expect(g.Contains(3, 1, 2)).To(BeTrue())
		Expect(g.Contains(4, 0, 0)).To(BeFalse())
		Expect(g.Contains(0, -1, 0)).To(BeFalse())
	})

	It("should accumulate", func() {
		g.Add(1, 1, 1, 2.5)
		g.Add(1, 1, 1, 0.5)

		Expect(g.At(1, 1, 1)).To(Equal(3.0))
		Expect(g.Sum()).To(Equal(3.0))
		Expect(g.Max()).To(Equal(3.0))
		Expect(g.Min()).To(Equal(0.0))
	})

	It("should reduce an empty grid to the identities", func() {
		e := New3D(0, 0, 0)

		Expect(e.Sum()).To(BeZero())
		Expect(math.IsInf(e.Max(), -1)).To(BeTrue())
		Expect(math.IsInf(e.Min(), 1)).To(BeTrue())
		Expect(e.Equal(New3D(0, 0, 0), 0)).To(BeTrue())
	})

	It("should compare within a tolerance", func() {
		o := g.Clone()
		o.Set(0, 0, 0, 1e-3)

		Expect(g.Equal(o, 1e-4)).To(BeFalse())
		Expect(g.Equal(o, 1e-3)).To(BeTrue())
		Expect(g.Equal(New3D(1, 1, 1), 1)).To(BeFalse())
	})

	It("should copy layers in and out", func() {
		g.Set(2, 1, 0, 7)
		l := g.Layer(2)
		Expect(l.At(1, 0)).To(Equal(7.0))

		l.Set(0, 0, 1)
		Expect(g.At(2, 0, 0)).To(Equal(0.0))

		g.SetLayer(3, l)
		Expect(g.At(3, 0, 0)).To(Equal(1.0))
		Expect(g.At(3, 1, 0)).To(Equal(7.0))
	})

	It("should reject a layer of a different footprint", func() {
		Expect(func() { g.SetLayer(0, New2D(2, 2)) }).To(Panic())
	})

	It("should scale without touching the source", func() {
		g.Set(0, 0, 0, 2)
		s := g.Scaled(0.5)

		Expect(s.At(0, 0, 0)).To(Equal(1.0))
		Expect(g.At(0, 0, 0)).To(Equal(2.0))
	})

	It("should round-trip values", func() {
		v := make([]float64, g.Len())
		for i := range v {
			v[i] = float64(i)
		}

		g.SetValues(v)
		v[0] = math.Pi

		Expect(g.At(0, 0, 0)).To(Equal(0.0))
		Expect(g.Values()[5]).To(Equal(5.0))
	})

	It("should zero", func() {
		g.Set(1, 0, 0, 1)
		g.Zero()

		Expect(g.Sum()).To(Equal(0.0))
	})
})
