package datarecording

import (
	"github.com/sarchlab/stacktherm/calculator"
	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/sim"
)

// Table names used by the SampleRecorder.
const (
	TablePowerSample          = "power_sample"
	TableTemperatureTransient = "temperature_transient"
	TableTemperatureSteady    = "temperature_steady"
	TableVoltageTransient     = "voltage_transient"
	TableVoltageSteady        = "voltage_steady"
	TableVaultUsage           = "vault_usage"
)

// CellEntry is one cell of a recorded field.
type CellEntry struct {
	SampleID uint64
	Cycle    uint64
	Layer    int
	Row      int
	Col      int
	Value    float64
}

// UsageEntry is the access count of a vault at the end of an epoch.
type UsageEntry struct {
	SampleID uint64
	Cycle    uint64
	Vault    int
	Single   uint64
	Multi    uint64
}

// SampleRecorder is a hook that writes the fields reported by a calculator
// into a DataRecorder.
type SampleRecorder struct {
	recorder DataRecorder
}

// NewSampleRecorder creates the tables and returns the hook.
func NewSampleRecorder(recorder DataRecorder) *SampleRecorder {
	r := &SampleRecorder{recorder: recorder}

	for _, name := range []string{
		TablePowerSample,
		TableTemperatureTransient,
		TableTemperatureSteady,
		TableVoltageTransient,
		TableVoltageSteady,
	} {
		recorder.CreateTable(name, CellEntry{})
	}

	recorder.CreateTable(TableVaultUsage, UsageEntry{})

	return r
}

// Func records the detail of a calculator hook.
func (r *SampleRecorder) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case calculator.HookPosEpoch:
		d := ctx.Detail.(calculator.EpochDetail)
		r.recordEpoch(d)
	case calculator.HookPosTransientThermal:
		d := ctx.Detail.(calculator.ThermalDetail)
		r.recordField(TableTemperatureTransient, d.SampleID, d.Cycle, d.Temperature)
	case calculator.HookPosSteadyThermal:
		d := ctx.Detail.(calculator.ThermalDetail)
		r.recordField(TableTemperatureSteady, d.SampleID, d.Cycle, d.Temperature)
	case calculator.HookPosTransientPDN:
		d := ctx.Detail.(calculator.PDNDetail)
		r.recordField(TableVoltageTransient, d.SampleID, d.Cycle, d.Voltage)
	case calculator.HookPosSteadyPDN:
		d := ctx.Detail.(calculator.PDNDetail)
		r.recordField(TableVoltageSteady, d.SampleID, d.Cycle, d.Voltage)
	}
}

func (r *SampleRecorder) recordEpoch(d calculator.EpochDetail) {
	cycle := d.Snapshot.Epoch.End

	for v, u := range d.Snapshot.Usage {
		r.recorder.InsertData(TableVaultUsage, UsageEntry{
			SampleID: d.SampleID,
			Cycle:    cycle,
			Vault:    v,
			Single:   u.Single,
			Multi:    u.Multi,
		})
	}

	if d.Power != nil {
		r.recordField(TablePowerSample, d.SampleID, cycle, d.Power)
	}
}

func (r *SampleRecorder) recordField(
	table string,
	sampleID, cycle uint64,
	g *grid.Grid3D,
) {
	for l := 0; l < g.Z(); l++ {
		for row := 0; row < g.Y(); row++ {
			for col := 0; col < g.X(); col++ {
				r.recorder.InsertData(table, CellEntry{
					SampleID: sampleID,
					Cycle:    cycle,
					Layer:    l,
					Row:      row,
					Col:      col,
					Value:    g.At(l, row, col),
				})
			}
		}
	}
}
