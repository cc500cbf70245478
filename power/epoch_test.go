package power

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EpochCounter", func() {
	var c *EpochCounter

	BeforeEach(func() {
		c = NewEpochCounter(10)
	})

	It("should fire exactly on multiples of the epoch", func() {
		fired := []uint64{}
		for cycle := uint64(0); cycle <= 35; cycle++ {
			if e, ok := c.Tick(cycle); ok {
				Expect(e.End).To(Equal(cycle))
				fired = append(fired, cycle)
			}
		}

		Expect(fired).To(Equal([]uint64{10, 20, 30}))
	})

	It("should never close an epoch at cycle 0", func() {
		_, ok := c.Tick(0)
		Expect(ok).To(BeFalse())

		e, ok := c.Tick(10)
		Expect(ok).To(BeTrue())
		Expect(e.Start).To(Equal(uint64(0)))
	})

	It("should number events and track their span", func() {
		c.Tick(10)
		e, ok := c.Tick(20)

		Expect(ok).To(BeTrue())
		Expect(e.Index).To(Equal(uint64(1)))
		Expect(e.Start).To(Equal(uint64(10)))
		Expect(e.Length()).To(Equal(uint64(10)))
	})

	It("should not fire twice for the same cycle", func() {
		_, first := c.Tick(10)
		_, second := c.Tick(10)

		Expect(first).To(BeTrue())
		Expect(second).To(BeFalse())
	})

	It("should count from zero after reset", func() {
		c.Tick(10)
		c.Reset()

		e, ok := c.Tick(10)
		Expect(ok).To(BeTrue())
		Expect(e.Index).To(Equal(uint64(0)))
	})

	It("should panic on an empty epoch", func() {
		Expect(func() { NewEpochCounter(0) }).To(Panic())
	})
})
