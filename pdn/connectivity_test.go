package pdn

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ConnectivityMap", func() {
	It("should parse a 0/1 matrix", func() {
		m, err := ParseConnectivityMap(strings.NewReader("0 1 0\n\n1 0 1\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(m.X()).To(Equal(3))
		Expect(m.Y()).To(Equal(2))
		Expect(m.Count()).To(Equal(3))
		Expect(m.Has(1, 0)).To(BeTrue())
		Expect(m.Has(0, 0)).To(BeFalse())
		Expect(m.Cells()).To(Equal([]int{1, 3, 5}))
	})

	DescribeTable("should reject malformed maps",
		func(text string) {
			_, err := ParseConnectivityMap(strings.NewReader(text))

			Expect(errors.Is(err, ErrMalformedMap)).To(BeTrue())
		},
		Entry("empty", ""),
		Entry("not binary", "0 2\n"),
		Entry("ragged", "0 1\n1\n"),
	)

	It("should place connections on a regular pitch", func() {
		m := UniformMap(8, 8, 2)

		Expect(m.Count()).To(Equal(16))
		Expect(m.Has(1, 1)).To(BeTrue())
		Expect(m.Has(0, 0)).To(BeFalse())
		Expect(m.Has(7, 7)).To(BeTrue())
	})

	It("should connect every cell with a pitch of 1", func() {
		Expect(UniformMap(3, 2, 1).Count()).To(Equal(6))
	})

	It("should panic on out-of-range cells", func() {
		m := NewConnectivityMap(2, 2)

		Expect(func() { m.Set(2, 0) }).To(Panic())
	})
})
