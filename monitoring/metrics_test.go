package monitoring

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/sarchlab/stacktherm/calculator"
	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/power"
	"github.com/sarchlab/stacktherm/sim"
)

func gaugeValue(g prometheus.Gauge) float64 {
	metric := &dto.Metric{}
	Expect(g.Write(metric)).To(Succeed())

	return metric.GetGauge().GetValue()
}

var _ = Describe("Metrics", func() {
	var m *Metrics

	BeforeEach(func() {
		m = NewMetrics()
	})

	It("should only register on its own registry", func() {
		families, err := m.Registry.Gather()
		Expect(err).NotTo(HaveOccurred())

		defaults, err := prometheus.DefaultGatherer.Gather()
		Expect(err).NotTo(HaveOccurred())

		for _, f := range defaults {
			Expect(f.GetName()).NotTo(HavePrefix("stacktherm_"))
		}

		for _, f := range families {
			Expect(f.GetName()).To(HavePrefix("stacktherm_"))
		}
	})

	It("should follow the epochs", func() {
		p := grid.New3D(2, 2, 1)
		p.Set(0, 1, 1, 3)

		m.Func(sim.HookCtx{
			Pos: calculator.HookPosEpoch,
			Detail: calculator.EpochDetail{
				Snapshot: power.Snapshot{
					SampleEnergy: 2e-6,
					TotalEnergy:  5e-6,
					IOEnergy:     1e-6,
				},
				Power: p,
			},
		})

		Expect(gaugeValue(m.SampleEnergy)).To(Equal(2e-6))
		Expect(gaugeValue(m.CoreEnergy)).To(Equal(5e-6))
		Expect(gaugeValue(m.IOEnergy)).To(Equal(1e-6))
		Expect(gaugeValue(m.SamplePower)).To(Equal(3.0))
	})

	It("should follow the solvers", func() {
		t := grid.New3D(2, 1, 1)
		t.Set(0, 0, 1, 350)

		v := grid.New3D(2, 1, 1)
		v.Set(0, 0, 0, 1.15)
		v.Set(0, 0, 1, 1.18)

		m.Func(sim.HookCtx{
			Pos: calculator.HookPosSteadyThermal,
			Detail: calculator.ThermalDetail{
				Temperature: t,
				Elapsed:     time.Millisecond,
			},
		})
		m.Func(sim.HookCtx{
			Pos: calculator.HookPosSteadyPDN,
			Detail: calculator.PDNDetail{
				Voltage: v,
				IRDrop:  0.05,
				Elapsed: time.Millisecond,
			},
		})

		Expect(gaugeValue(m.PeakTemp.WithLabelValues("steady"))).To(Equal(350.0))
		Expect(gaugeValue(m.MinVoltage.WithLabelValues("steady"))).To(Equal(1.15))
		Expect(gaugeValue(m.IRDrop.WithLabelValues("steady"))).To(Equal(0.05))
	})
})
