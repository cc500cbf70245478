package calculator

import (
	"fmt"
	"time"

	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/power"
	"github.com/sarchlab/stacktherm/sim"
)

// Hook positions of the calculator.
var (
	// HookPosEpoch marks the end of a sampling epoch. The item is the epoch
	// event and the detail is an EpochDetail.
	HookPosEpoch = &sim.HookPos{Name: "Epoch"}

	// HookPosTransientThermal follows a transient thermal step. The detail
	// is a ThermalDetail.
	HookPosTransientThermal = &sim.HookPos{Name: "TransientThermal"}

	// HookPosTransientPDN follows a transient PDN step. The detail is a
	// PDNDetail.
	HookPosTransientPDN = &sim.HookPos{Name: "TransientPDN"}

	// HookPosSteadyThermal follows a steady-state thermal solve.
	HookPosSteadyThermal = &sim.HookPos{Name: "SteadyThermal"}

	// HookPosSteadyPDN follows a steady-state PDN solve.
	HookPosSteadyPDN = &sim.HookPos{Name: "SteadyPDN"}
)

// EpochDetail is attached to HookPosEpoch.
type EpochDetail struct {
	Snapshot power.Snapshot
	SampleID uint64

	// Power is the map, in watts per cell, that the solvers receive for the
	// epoch. It is nil in steady mode.
	Power *grid.Grid3D
}

func (d EpochDetail) String() string {
	return fmt.Sprintf("sample %d energy %.4g J", d.SampleID, d.Snapshot.SampleEnergy)
}

// ThermalDetail is attached to the thermal hook positions.
type ThermalDetail struct {
	Cycle       uint64
	SampleID    uint64
	Temperature *grid.Grid3D
	Elapsed     time.Duration
}

func (d ThermalDetail) String() string {
	return fmt.Sprintf("cycle %d peak %.3f K (%s)",
		d.Cycle, d.Temperature.Max(), d.Elapsed)
}

// PDNDetail is attached to the PDN hook positions.
type PDNDetail struct {
	Cycle    uint64
	SampleID uint64
	Voltage  *grid.Grid3D
	IRDrop   float64
	Elapsed  time.Duration
}

func (d PDNDetail) String() string {
	return fmt.Sprintf("cycle %d min %.4f V drop %.4f V (%s)",
		d.Cycle, d.Voltage.Min(), d.IRDrop, d.Elapsed)
}
