package calculator

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/stacktherm/geometry"
	"github.com/sarchlab/stacktherm/pdn"
	"github.com/sarchlab/stacktherm/power"
	"github.com/sarchlab/stacktherm/sim"
	"github.com/sarchlab/stacktherm/thermal"
)

func testBuilder() Builder {
	m, err := geometry.MakeBuilder().
		WithNumVaults(4).
		WithNumBanks(4).
		WithNumDRAMLayers(2).
		WithNumRows(8).
		WithNumCols(8).
		WithGridsPerBank(1, 1).
		Build()
	Expect(err).NotTo(HaveOccurred())

	return MakeBuilder().
		WithMapper(m).
		WithFreq(1 * sim.GHz).
		WithPowerEpoch(1000).
		WithThermal(thermal.MakeBuilder().WithGrid(4, 2)).
		WithPDN(pdn.MakeBuilder().WithGrid(4, 2))
}

func posOf(pos *sim.HookPos) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		return x.(sim.HookCtx).Pos == pos
	})
}

var _ = Describe("Calculator", func() {
	var (
		mockCtrl *gomock.Controller
		hook     *MockHook
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hook = NewMockHook(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("in transient mode", func() {
		var c *Calculator

		BeforeEach(func() {
			c = testBuilder().
				WithMode(ModeTransient).
				WithTransientPDN(true).
				Build()
			c.AcceptHook(hook)
		})

		It("should not do anything between epochs", func() {
			Expect(c.AddPower(1e-9, 0, 0, 0, 0, true, 10)).To(Succeed())
			Expect(c.Tick(999)).To(Succeed())

			Expect(c.Temperature()).To(BeNil())
			Expect(c.Now()).To(Equal(uint64(999)))
		})

		It("should sample the epoch and step the solvers", func() {
			gomock.InOrder(
				hook.EXPECT().Func(posOf(HookPosEpoch)).
					Do(func(ctx sim.HookCtx) {
						d := ctx.Detail.(EpochDetail)
						Expect(d.SampleID).To(BeZero())
						Expect(d.Snapshot.SampleEnergy).To(Equal(2e-6))
						Expect(d.Power.Sum()).To(BeNumerically("~", 2, 1e-9))
					}),
				hook.EXPECT().Func(posOf(HookPosTransientThermal)).
					Do(func(ctx sim.HookCtx) {
						d := ctx.Detail.(ThermalDetail)
						Expect(d.Cycle).To(Equal(uint64(1000)))
						Expect(d.Temperature.Max()).
							To(BeNumerically(">", c.Thermal().Config().Ambient))
					}),
				hook.EXPECT().Func(posOf(HookPosTransientPDN)).
					Do(func(ctx sim.HookCtx) {
						d := ctx.Detail.(PDNDetail)
						Expect(d.IRDrop).To(BeNumerically(">", 0))
					}),
			)

			Expect(c.AddPower(1e-6, 0, 0, 0, 0, true, 10)).To(Succeed())
			Expect(c.AddPower(1e-6, 3, 3, 7, 7, false, 20)).To(Succeed())
			Expect(c.Tick(1000)).To(Succeed())

			Expect(c.SampleID()).To(Equal(uint64(1)))
			Expect(c.Voltage()).NotTo(BeNil())

			sample, ok := c.Thermal().LastSample()
			Expect(ok).To(BeTrue())
			Expect(sample.Cycle).To(Equal(uint64(1000)))
		})

		It("should let hooks read the calculator", func() {
			hook.EXPECT().Func(gomock.Any()).
				Do(func(ctx sim.HookCtx) {
					calc := ctx.Domain.(*Calculator)
					Expect(calc.Now()).To(Equal(uint64(1000)))
				}).
				Times(3)

			Expect(c.Tick(1000)).To(Succeed())
		})
	})

	Context("in steady mode", func() {
		var c *Calculator

		BeforeEach(func() {
			c = testBuilder().Build()
			c.AcceptHook(hook)
		})

		It("should only report the epoch on ticks", func() {
			hook.EXPECT().Func(posOf(HookPosEpoch))

			Expect(c.Tick(1000)).To(Succeed())

			Expect(c.Temperature()).To(BeNil())
			Expect(c.SampleID()).To(BeZero())

			snap, ok := c.LastSnapshot()
			Expect(ok).To(BeTrue())
			Expect(snap.Epoch.End).To(Equal(uint64(1000)))
		})

		It("should solve the steady state on request", func() {
			gomock.InOrder(
				hook.EXPECT().Func(posOf(HookPosSteadyThermal)),
				hook.EXPECT().Func(posOf(HookPosSteadyPDN)),
			)

			Expect(c.AddPower(5e-9, 1, 2, 3, 4, true, 10)).To(Succeed())
			Expect(c.AddIOPower(1e-9, 1, 2, 3, 4, 10)).To(Succeed())
			Expect(c.CalcSteadyState(2000)).To(Succeed())

			Expect(c.Temperature().Equal(c.Thermal().SteadyState(), 0)).To(BeTrue())
			Expect(c.Voltage().Min()).To(BeNumerically("<", c.PDN().Config().Vdd))

			total, io, _ := c.Energy()
			Expect(total).To(Equal(5e-9))
			Expect(io).To(Equal(1e-9))
			Expect(c.VaultUsage()[1]).To(Equal(power.VaultUsage{Single: 1}))
			Expect(c.AccumulatedMap(true).Sum()).To(BeNumerically("~", 6e-9, 1e-20))
		})

		It("should not solve before time passes", func() {
			err := c.CalcSteadyState(0)

			Expect(err).To(MatchError(power.ErrNoElapsedTime))
		})

		It("should report addressing errors", func() {
			err := c.AddPower(1e-9, 9, 0, 0, 0, true, 1)

			Expect(errors.Is(err, geometry.ErrAddressOutOfRange)).To(BeTrue())
		})
	})

	It("should run without the PDN", func() {
		c := testBuilder().WithoutPDN().Build()
		c.AcceptHook(hook)
		hook.EXPECT().Func(posOf(HookPosSteadyThermal))

		Expect(c.CalcSteadyState(10)).To(Succeed())

		Expect(c.PDN()).To(BeNil())
		Expect(c.Voltage()).To(BeNil())
	})

	It("should describe details for log hooks", func() {
		Expect(ModeTransient.String()).To(Equal("transient"))
		Expect(EpochDetail{SampleID: 2}.String()).To(ContainSubstring("sample 2"))
	})
})
