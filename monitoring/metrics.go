package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/stacktherm/calculator"
	"github.com/sarchlab/stacktherm/sim"
)

// Metrics holds the Prometheus metrics of a run. It uses a custom registry so
// that several calculators can live in one process. Metrics is a hook; attach
// it to a calculator to keep the metrics up to date.
type Metrics struct {
	Registry *prometheus.Registry

	Epochs         prometheus.Counter
	SampleEnergy   prometheus.Gauge
	CoreEnergy     prometheus.Gauge
	IOEnergy       prometheus.Gauge
	SamplePower    prometheus.Gauge
	PeakTemp       *prometheus.GaugeVec
	MinVoltage     *prometheus.GaugeVec
	IRDrop         *prometheus.GaugeVec
	SolveDurations *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them on a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		Epochs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stacktherm_epochs_total",
			Help: "Number of completed sampling epochs.",
		}),
		SampleEnergy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stacktherm_sample_energy_joules",
			Help: "Energy of the last completed epoch.",
		}),
		CoreEnergy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stacktherm_core_energy_joules",
			Help: "Core access energy since the start of the run.",
		}),
		IOEnergy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stacktherm_io_energy_joules",
			Help: "I/O energy since the start of the run.",
		}),
		SamplePower: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stacktherm_sample_power_watts",
			Help: "Total power handed to the solvers for the last epoch.",
		}),
		PeakTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stacktherm_peak_temperature_kelvin",
			Help: "Highest cell temperature of the last solve.",
		}, []string{"mode"}),
		MinVoltage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stacktherm_min_voltage_volts",
			Help: "Lowest node voltage of the last solve.",
		}, []string{"mode"}),
		IRDrop: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stacktherm_ir_drop_volts",
			Help: "Largest drop below the supply voltage of the last solve.",
		}, []string{"mode"}),
		SolveDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stacktherm_solve_duration_seconds",
			Help:    "Wall time of solver calls.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"solver", "mode"}),
	}

	reg.MustRegister(
		m.Epochs,
		m.SampleEnergy,
		m.CoreEnergy,
		m.IOEnergy,
		m.SamplePower,
		m.PeakTemp,
		m.MinVoltage,
		m.IRDrop,
		m.SolveDurations,
	)

	return m
}

// Func updates the metrics from a calculator hook.
func (m *Metrics) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case calculator.HookPosEpoch:
		d := ctx.Detail.(calculator.EpochDetail)

		m.Epochs.Inc()
		m.SampleEnergy.Set(d.Snapshot.SampleEnergy)
		m.CoreEnergy.Set(d.Snapshot.TotalEnergy)
		m.IOEnergy.Set(d.Snapshot.IOEnergy)

		if d.Power != nil {
			m.SamplePower.Set(d.Power.Sum())
		}
	case calculator.HookPosTransientThermal:
		m.thermal("transient", ctx.Detail.(calculator.ThermalDetail))
	case calculator.HookPosSteadyThermal:
		m.thermal("steady", ctx.Detail.(calculator.ThermalDetail))
	case calculator.HookPosTransientPDN:
		m.pdn("transient", ctx.Detail.(calculator.PDNDetail))
	case calculator.HookPosSteadyPDN:
		m.pdn("steady", ctx.Detail.(calculator.PDNDetail))
	}
}

func (m *Metrics) thermal(mode string, d calculator.ThermalDetail) {
	m.PeakTemp.WithLabelValues(mode).Set(d.Temperature.Max())
	m.SolveDurations.WithLabelValues("thermal", mode).
		Observe(d.Elapsed.Seconds())
}

func (m *Metrics) pdn(mode string, d calculator.PDNDetail) {
	m.MinVoltage.WithLabelValues(mode).Set(d.Voltage.Min())
	m.IRDrop.WithLabelValues(mode).Set(d.IRDrop)
	m.SolveDurations.WithLabelValues("pdn", mode).
		Observe(d.Elapsed.Seconds())
}
