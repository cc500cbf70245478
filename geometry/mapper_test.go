package geometry

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder", func() {
	It("should reject banks that do not spread over layers", func() {
		_, err := MakeBuilder().WithNumBanks(6).WithNumDRAMLayers(4).Build()

		Expect(errors.Is(err, ErrInvalidGeometry)).To(BeTrue())
	})

	It("should reject non-positive counts", func() {
		_, err := MakeBuilder().WithNumVaults(0).Build()

		Expect(errors.Is(err, ErrInvalidGeometry)).To(BeTrue())
	})

	It("should reject banks split finer than their rows", func() {
		_, err := MakeBuilder().WithNumRows(2).WithGridsPerBank(1, 4).Build()

		Expect(errors.Is(err, ErrInvalidGeometry)).To(BeTrue())
	})
})

var _ = Describe("Mapper", func() {
	var m *Mapper

	BeforeEach(func() {
		var err error
		m, err = MakeBuilder().
			WithNumVaults(16).
			WithNumBanks(8).
			WithNumDRAMLayers(4).
			WithNumRows(1024).
			WithNumCols(64).
			WithGridsPerBank(2, 2).
			WithLogicLayer(true).
			Build()
		Expect(err).NotTo(HaveOccurred())
	})

	It("should expose the grid size", func() {
		Expect(m.X()).To(Equal(4 * 2 * 2))
		Expect(m.Y()).To(Equal(4 * 1 * 2))
		Expect(m.Z()).To(Equal(5))
		Expect(m.DRAMLayerOffset()).To(Equal(1))
	})

	It("should map the first address to the first DRAM cell", func() {
		loc, err := m.MapPhysicalLocation(0, 0, 0, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(loc).To(Equal(Location{Layer: 1, Row: 0, Col: 0}))
	})

	It("should place banks on consecutive layers", func() {
		loc, err := m.MapPhysicalLocation(5, 7, 1023, 63)

		Expect(err).NotTo(HaveOccurred())
		Expect(loc.Layer).To(Equal(4))
		// vault 5 is at tile row 1, col 1; bank 7 is the second of layer 3.
		Expect(loc.Row).To(Equal(1*2 + 1))
		Expect(loc.Col).To(Equal((1*2+1)*2 + 1))
	})

	It("should stay in bounds and not alias banks of a layer", func() {
		seen := make(map[Location]string)

		for v := 0; v < 16; v++ {
			for b := 0; b < 8; b++ {
				for _, rc := range [][2]int{{0, 0}, {1023, 63}} {
					loc, err := m.MapPhysicalLocation(v, b, rc[0], rc[1])
					Expect(err).NotTo(HaveOccurred())

					Expect(loc.Layer).To(BeNumerically("<", m.Z()))
					Expect(loc.Row).To(BeNumerically("<", m.Y()))
					Expect(loc.Col).To(BeNumerically("<", m.X()))

					key := Location{loc.Layer, loc.Row, loc.Col}
					owner := string(rune('A'+v)) + string(rune('a'+b))
					if prev, ok := seen[key]; ok {
						Expect(prev).To(Equal(owner))
					}
					seen[key] = owner
				}
			}
		}
	})

	It("should be injective when every row and column has a cell", func() {
		fine, err := MakeBuilder().
			WithNumVaults(3).
			WithNumBanks(2).
			WithNumDRAMLayers(1).
			WithNumRows(3).
			WithNumCols(2).
			WithGridsPerBank(2, 3).
			WithLogicLayer(false).
			Build()
		Expect(err).NotTo(HaveOccurred())

		seen := make(map[Location]bool)
		for v := 0; v < 3; v++ {
			for b := 0; b < 2; b++ {
				for r := 0; r < 3; r++ {
					for c := 0; c < 2; c++ {
						loc, err := fine.MapPhysicalLocation(v, b, r, c)
						Expect(err).NotTo(HaveOccurred())
						Expect(seen).NotTo(HaveKey(loc))
						seen[loc] = true
					}
				}
			}
		}
	})

	DescribeTable("should report addressing errors",
		func(v, b, r, c int, field string) {
			_, err := m.MapPhysicalLocation(v, b, r, c)

			Expect(errors.Is(err, ErrAddressOutOfRange)).To(BeTrue())

			var addrErr *AddrError
			Expect(errors.As(err, &addrErr)).To(BeTrue())
			Expect(addrErr.Field).To(Equal(field))
		},
		Entry("vault", 16, 0, 0, 0, "vault"),
		Entry("negative vault", -1, 0, 0, 0, "vault"),
		Entry("bank", 0, 8, 0, 0, "bank"),
		Entry("row", 0, 0, 1024, 0, "row"),
		Entry("col", 0, 0, 0, 64, "col"),
	)

	It("should map I/O to the logic layer", func() {
		loc, err := m.LogicLocation(5, 7, 1023, 63)
		Expect(err).NotTo(HaveOccurred())

		dram, _ := m.MapPhysicalLocation(5, 7, 1023, 63)
		Expect(loc).To(Equal(Location{Layer: 0, Row: dram.Row, Col: dram.Col}))
	})

	It("should refuse I/O locations without a logic layer", func() {
		noLogic, err := MakeBuilder().WithLogicLayer(false).Build()
		Expect(err).NotTo(HaveOccurred())

		_, err = noLogic.LogicLocation(0, 0, 0, 0)
		Expect(err).To(MatchError(ErrNoLogicLayer))
		Expect(noLogic.Z()).To(Equal(4))
	})
})
