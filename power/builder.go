package power

import (
	"github.com/sarchlab/stacktherm/geometry"
	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/sim"
)

// Builder can build collectors.
type Builder struct {
	mapper     *geometry.Mapper
	freq       sim.Freq
	powerEpoch uint64
	logicPower *grid.Grid2D
}

// MakeBuilder creates a builder with a 1.25 GHz clock and an epoch of 100000
// cycles.
func MakeBuilder() Builder {
	return Builder{
		freq:       1.25 * sim.GHz,
		powerEpoch: 100000,
	}
}

// WithMapper sets the mapper that places accesses onto the power map.
func (b Builder) WithMapper(m *geometry.Mapper) Builder {
	b.mapper = m
	return b
}

// WithFreq sets the clock that the cycle numbers refer to.
func (b Builder) WithFreq(f sim.Freq) Builder {
	b.freq = f
	return b
}

// WithPowerEpoch sets the number of cycles in a sampling epoch.
func (b Builder) WithPowerEpoch(cycles uint64) Builder {
	b.powerEpoch = cycles
	return b
}

// WithLogicPower sets the static logic-layer power map, in watts per cell.
// The map may have any footprint; it is resized to the power map.
func (b Builder) WithLogicPower(g *grid.Grid2D) Builder {
	b.logicPower = g
	return b
}

// Build creates a Collector. It panics if no mapper is given.
func (b Builder) Build() *Collector {
	if b.mapper == nil {
		panic("power collector requires a mapper")
	}

	m := b.mapper
	c := &Collector{
		mapper:     m,
		freq:       b.freq,
		epoch:      NewEpochCounter(b.powerEpoch),
		accum:      grid.New3D(m.X(), m.Y(), m.Z()),
		accumLogic: grid.New3D(m.X(), m.Y(), m.Z()),
		cur:        grid.New3D(m.X(), m.Y(), m.Z()),
		curLogic:   grid.New3D(m.X(), m.Y(), m.Z()),
		usage:      make([]VaultUsage, m.NumVaults()),
	}

	if b.logicPower != nil {
		c.logicPower = b.logicPower.Clone()
	}

	return c
}
