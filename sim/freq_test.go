package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		var f = 1 * GHz
		Expect(f.Period()).To(BeNumerically("==", 1e-9))
	})

	It("should panic on a zero frequency", func() {
		var f Freq
		Expect(func() { f.Period() }).To(Panic())
	})

	It("should count cycles", func() {
		var f = 800 * MHz
		Expect(f.Cycle(1e-6)).To(Equal(uint64(800)))
	})

	It("should get the duration of n cycles", func() {
		var f = 1.25 * GHz
		Expect(float64(f.Duration(100000))).To(BeNumerically("~", 80e-6, 1e-15))
	})
})
