package monitoring

import (
	"github.com/sarchlab/stacktherm/calculator"
	"github.com/sarchlab/stacktherm/report"
	"github.com/sarchlab/stacktherm/sim"
)

// TrendHook adds the transient samples of a calculator to a trend.
type TrendHook struct {
	trend *report.Trend
}

// NewTrendHook creates a hook that fills trend.
func NewTrendHook(trend *report.Trend) *TrendHook {
	return &TrendHook{trend: trend}
}

// Func records one sample.
func (h *TrendHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case calculator.HookPosEpoch:
		d := ctx.Detail.(calculator.EpochDetail)
		if d.Power != nil {
			h.trend.AddPower(d.Snapshot.Epoch.End, d.Power.Sum())
		}
	case calculator.HookPosTransientThermal:
		d := ctx.Detail.(calculator.ThermalDetail)
		h.trend.AddTemperature(d.Cycle, d.Temperature.Max())
	case calculator.HookPosTransientPDN:
		d := ctx.Detail.(calculator.PDNDetail)
		h.trend.AddVoltage(d.Cycle, d.Voltage.Min())
	}
}
