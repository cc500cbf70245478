package calculator

import (
	"github.com/sarchlab/stacktherm/geometry"
	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/pdn"
	"github.com/sarchlab/stacktherm/power"
	"github.com/sarchlab/stacktherm/sim"
	"github.com/sarchlab/stacktherm/thermal"
)

// Builder can build calculators.
type Builder struct {
	mapper       *geometry.Mapper
	freq         sim.Freq
	powerEpoch   uint64
	logicPower   *grid.Grid2D
	mode         Mode
	thermal      thermal.Builder
	pdn          pdn.Builder
	withPDN      bool
	transientPDN bool
}

// MakeBuilder creates a builder for a steady-state calculator of the default
// device, clocked at 1.25 GHz with 100000-cycle epochs.
func MakeBuilder() Builder {
	return Builder{
		freq:       1.25 * sim.GHz,
		powerEpoch: 100000,
		mode:       ModeSteady,
		thermal:    thermal.MakeBuilder(),
		pdn:        pdn.MakeBuilder(),
		withPDN:    true,
	}
}

// WithMapper sets the device organization.
func (b Builder) WithMapper(m *geometry.Mapper) Builder {
	b.mapper = m
	return b
}

// WithFreq sets the clock that cycle numbers refer to.
func (b Builder) WithFreq(f sim.Freq) Builder {
	b.freq = f
	return b
}

// WithPowerEpoch sets the number of cycles in a sampling epoch.
func (b Builder) WithPowerEpoch(cycles uint64) Builder {
	b.powerEpoch = cycles
	return b
}

// WithLogicPower sets the static logic-layer power map.
func (b Builder) WithLogicPower(g *grid.Grid2D) Builder {
	b.logicPower = g
	return b
}

// WithMode selects steady or transient operation.
func (b Builder) WithMode(m Mode) Builder {
	b.mode = m
	return b
}

// WithThermal sets how the thermal solver is built. The number of layers
// and the clock are taken from the calculator.
func (b Builder) WithThermal(tb thermal.Builder) Builder {
	b.thermal = tb
	return b
}

// WithPDN sets how the PDN solver is built. The number of layers and the
// clock are taken from the calculator.
func (b Builder) WithPDN(pb pdn.Builder) Builder {
	b.pdn = pb
	b.withPDN = true

	return b
}

// WithoutPDN disables the PDN solver.
func (b Builder) WithoutPDN() Builder {
	b.withPDN = false
	return b
}

// WithTransientPDN sets whether transient mode also steps the PDN.
func (b Builder) WithTransientPDN(enabled bool) Builder {
	b.transientPDN = enabled
	return b
}

// Build creates a Calculator.
func (b Builder) Build() *Calculator {
	m := b.mapper
	if m == nil {
		var err error

		m, err = geometry.MakeBuilder().Build()
		if err != nil {
			panic(err)
		}
	}

	c := &Calculator{
		HookableBase: sim.NewHookableBase(),
		mode:         b.mode,
		transientPDN: b.transientPDN,
		collector: power.MakeBuilder().
			WithMapper(m).
			WithFreq(b.freq).
			WithPowerEpoch(b.powerEpoch).
			WithLogicPower(b.logicPower).
			Build(),
		thermal: b.thermal.
			WithLayers(m.Z()).
			WithFreq(b.freq).
			Build(),
	}

	if b.withPDN {
		c.pdn = b.pdn.
			WithLayers(m.Z()).
			WithFreq(b.freq).
			Build()
	}

	return c
}
