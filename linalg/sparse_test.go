package linalg

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// chain builds n nodes in series with conductance g, the first node also
// grounded through g.
func chain(n int, g float64) *Sparse {
	b := NewBuilder(n)
	for i := 0; i+1 < n; i++ {
		b.AddConductance(i, i+1, g)
	}
	b.AddGrounded(0, g)

	return b.Build()
}

var _ = Describe("Sparse", func() {
	It("should sum stamps at the same position", func() {
		b := NewBuilder(3)
		b.Add(0, 2, 1.5)
		b.Add(0, 2, 0.5)

		m := b.Build()

		Expect(m.At(0, 2)).To(Equal(2.0))
		Expect(m.At(2, 0)).To(Equal(0.0))
		Expect(m.NNZ()).To(Equal(4))
	})

	It("should keep rows of floating nodes summing to zero", func() {
		m := chain(4, 2)

		Expect(m.RowSum(0)).To(Equal(2.0))
		for i := 1; i < 4; i++ {
			Expect(m.RowSum(i)).To(BeNumerically("~", 0, 1e-15))
		}
		Expect(m.IsSymmetric(0)).To(BeTrue())
		Expect(m.Diagonal()).To(Equal([]float64{4, 4, 4, 2}))
		Expect(m.RowAbsSum(1)).To(Equal(8.0))
	})

	It("should multiply vectors", func() {
		m := chain(3, 1)
		dst := make([]float64, 3)

		m.MulVec(dst, []float64{1, 2, 3})

		Expect(dst).To(Equal([]float64{0, 0, 1}))
	})

	It("should multiply large vectors in parallel", func() {
		n := parallelRows + 7
		m := chain(n, 1)
		x := make([]float64, n)
		for i := range x {
			x[i] = 1
		}
		dst := make([]float64, n)

		m.MulVec(dst, x)

		Expect(dst[0]).To(Equal(1.0))
		Expect(dst[n/2]).To(Equal(0.0))
		Expect(dst[n-1]).To(Equal(0.0))
	})

	It("should expand to dense", func() {
		d := chain(2, 3).Dense()

		Expect(d.At(0, 0)).To(Equal(6.0))
		Expect(d.At(0, 1)).To(Equal(-3.0))
	})

	It("should refuse self conductances", func() {
		Expect(func() { NewBuilder(2).AddConductance(1, 1, 1) }).To(Panic())
	})
})
