package resample

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/stacktherm/grid"
)

func ramp(x, y int) *grid.Grid2D {
	g := grid.New2D(x, y)
	for r := 0; r < y; r++ {
		for c := 0; c < x; c++ {
			g.Set(r, c, float64(r*x+c)+1)
		}
	}

	return g
}

var _ = Describe("Resize2D", func() {
	It("should be the identity for the same size", func() {
		g := ramp(5, 3)

		out, err := Resize2D(g, 5, 3)

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Equal(g, 1e-12)).To(BeTrue())
		Expect(out).NotTo(BeIdenticalTo(g))
	})

	It("should preserve uniform maps exactly", func() {
		g := grid.New2D(4, 4)
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				g.Set(r, c, 2)
			}
		}

		up, err := Resize2D(g, 8, 12)
		Expect(err).NotTo(HaveOccurred())
		Expect(up.Sum()).To(BeNumerically("~", 32, 1e-9))
		Expect(up.At(5, 5)).To(BeNumerically("~", 32.0/96, 1e-12))

		down, err := Resize2D(g, 2, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(down.Sum()).To(BeNumerically("~", 32, 1e-9))
	})

	It("should approximately preserve the total when upsampling", func() {
		g := ramp(4, 4)

		up, err := Resize2D(g, 16, 16)

		Expect(err).NotTo(HaveOccurred())
		Expect(up.Sum()).To(BeNumerically("~", g.Sum(), 0.05*g.Sum()))
	})

	It("should approximately preserve the total when downsampling", func() {
		g := ramp(16, 8)

		down, err := Resize2D(g, 4, 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(down.Sum()).To(BeNumerically("~", g.Sum(), 0.05*g.Sum()))
	})

	It("should collapse to a single cell", func() {
		g := ramp(2, 2)

		one, err := Resize2D(g, 1, 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(one.At(0, 0)).To(BeNumerically("~", 10, 1e-12))
	})

	It("should reject empty targets", func() {
		_, err := Resize2D(ramp(2, 2), 0, 3)

		Expect(errors.Is(err, ErrInvalidSize)).To(BeTrue())
	})
})

var _ = Describe("Resize3D", func() {
	It("should resize every layer independently", func() {
		g := grid.New3D(2, 2, 3)
		for l := 0; l < 3; l++ {
			g.SetLayer(l, ramp(2, 2))
		}
		g.Add(2, 0, 0, 10)

		out, err := Resize3D(g, 4, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Z()).To(Equal(3))

		for l := 0; l < 2; l++ {
			expected, _ := Resize2D(ramp(2, 2), 4, 4)
			Expect(out.Layer(l).Equal(expected, 1e-12)).To(BeTrue())
		}
		Expect(out.Layer(2).Sum()).To(BeNumerically(">", out.Layer(0).Sum()))
	})

	It("should be the identity for the same size", func() {
		g := grid.New3D(3, 2, 2)
		g.Set(1, 1, 2, 4)

		out, err := Resize3D(g, 3, 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Equal(g, 0)).To(BeTrue())
	})
})
