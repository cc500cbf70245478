package power

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logic power", func() {
	It("should parse a whitespace matrix", func() {
		g, err := ReadLogicPower(strings.NewReader("1 2 3\n\n4\t5 6\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(g.X()).To(Equal(3))
		Expect(g.Y()).To(Equal(2))
		Expect(g.At(1, 2)).To(Equal(6.0))
	})

	DescribeTable("should reject malformed maps",
		func(text string) {
			_, err := ReadLogicPower(strings.NewReader(text))

			Expect(errors.Is(err, ErrMalformedLogicPower)).To(BeTrue())
		},
		Entry("empty", "\n\n"),
		Entry("ragged", "1 2\n3\n"),
		Entry("not a number", "1 x\n"),
		Entry("negative", "1 -2\n"),
	)

	It("should spread a uniform total", func() {
		g := UniformLogicPower(4, 2, 2)

		Expect(g.Sum()).To(BeNumerically("~", 2, 1e-12))
		Expect(g.At(1, 3)).To(Equal(0.25))
	})
})
