package geometry

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SquareArrangement", func() {
	DescribeTable("should return the smallest side that fits n",
		func(n, side int) {
			Expect(SquareArrangement(n)).To(Equal(side))
		},
		Entry("zero", 0, 0),
		Entry("one", 1, 1),
		Entry("perfect square", 4, 2),
		Entry("just above a square", 5, 3),
		Entry("nine", 9, 3),
		Entry("ten", 10, 4),
		Entry("hundred", 100, 10),
		Entry("32 vaults", 32, 6),
	)

	It("should satisfy s*s >= n > (s-1)*(s-1)", func() {
		for n := 1; n < 2000; n++ {
			s := SquareArrangement(n)
			Expect(s * s).To(BeNumerically(">=", n))
			Expect((s - 1) * (s - 1)).To(BeNumerically("<", n))
		}
	})

	It("should panic on negative counts", func() {
		Expect(func() { SquareArrangement(-1) }).To(Panic())
	})
})
