// Package power accumulates per-access energy into spatial power maps.
package power

import (
	"errors"
	"fmt"

	"github.com/sarchlab/stacktherm/geometry"
	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/resample"
	"github.com/sarchlab/stacktherm/sim"
)

// ErrNegativeEnergy is reported when an event carries negative energy.
var ErrNegativeEnergy = errors.New("negative energy")

// ErrNoElapsedTime is reported when power is requested before any cycle
// has passed.
var ErrNoElapsedTime = errors.New("no elapsed time")

// ErrNoEpoch is reported when epoch power is requested before the first epoch
// completes.
var ErrNoEpoch = errors.New("no completed epoch")

// VaultUsage counts the accesses that hit a vault.
type VaultUsage struct {
	Single uint64
	Multi  uint64
}

// Total returns the number of accesses.
func (u VaultUsage) Total() uint64 {
	return u.Single + u.Multi
}

// A Snapshot is the state of the collector at the end of an epoch.
type Snapshot struct {
	Epoch EpochEvent

	// Energy maps of the epoch, in joules, with and without the I/O energy
	// on the logic layer.
	Energy        *grid.Grid3D
	EnergyNoLogic *grid.Grid3D

	SampleEnergy float64
	TotalEnergy  float64
	IOEnergy     float64
	Usage        []VaultUsage
}

func (s Snapshot) clone() Snapshot {
	c := s
	if s.Energy != nil {
		c.Energy = s.Energy.Clone()
		c.EnergyNoLogic = s.EnergyNoLogic.Clone()
	}
	c.Usage = append([]VaultUsage(nil), s.Usage...)

	return c
}

// A Collector accumulates access energy into power maps.
//
// It keeps two pairs of maps. The accumulated maps hold all the energy since
// the start of the run and the epoch maps hold the energy of the current
// sampling epoch. In each pair, one map also receives the I/O energy on the
// logic layer.
type Collector struct {
	mapper *geometry.Mapper
	freq   sim.Freq
	epoch  *EpochCounter

	accum, accumLogic *grid.Grid3D
	cur, curLogic     *grid.Grid3D
	logicPower        *grid.Grid2D
	usage             []VaultUsage

	totalEnergy  float64
	ioEnergy     float64
	sampleEnergy float64

	last        Snapshot
	hasSnapshot bool
}

// X returns the number of cell columns of the power map.
func (c *Collector) X() int { return c.accum.X() }

// Y returns the number of cell rows of the power map.
func (c *Collector) Y() int { return c.accum.Y() }

// Z returns the number of layers of the power map.
func (c *Collector) Z() int { return c.accum.Z() }

// Mapper returns the mapper that places accesses.
func (c *Collector) Mapper() *geometry.Mapper { return c.mapper }

// Freq returns the clock that cycle numbers refer to.
func (c *Collector) Freq() sim.Freq { return c.freq }

// PowerEpoch returns the number of cycles per sampling epoch.
func (c *Collector) PowerEpoch() uint64 { return c.epoch.Length() }

// TotalEnergy returns the energy of all the core accesses so far.
func (c *Collector) TotalEnergy() float64 { return c.totalEnergy }

// IOEnergy returns the energy of all the I/O transfers so far.
func (c *Collector) IOEnergy() float64 { return c.ioEnergy }

// SampleEnergy returns the energy collected in the current epoch.
func (c *Collector) SampleEnergy() float64 { return c.sampleEnergy }

// AddPower records the energy of a core access.
func (c *Collector) AddPower(
	energy float64,
	vault, bank, row, col int,
	singleBank bool,
	cycle uint64,
) error {
	if energy < 0 {
		return fmt.Errorf("%w: %g J at cycle %d", ErrNegativeEnergy, energy, cycle)
	}

	loc, err := c.mapper.MapPhysicalLocation(vault, bank, row, col)
	if err != nil {
		return err
	}

	for _, m := range []*grid.Grid3D{c.accum, c.accumLogic, c.cur, c.curLogic} {
		m.Add(loc.Layer, loc.Row, loc.Col, energy)
	}

	if singleBank {
		c.usage[vault].Single++
	} else {
		c.usage[vault].Multi++
	}

	c.totalEnergy += energy
	c.sampleEnergy += energy

	return nil
}

// AddIOPower records the energy of an I/O transfer. The energy lands on the
// logic layer below the accessed cell, so only the maps with logic receive
// it. Without a logic layer, the energy is only counted.
func (c *Collector) AddIOPower(
	energy float64,
	vault, bank, row, col int,
	cycle uint64,
) error {
	if energy < 0 {
		return fmt.Errorf("%w: %g J at cycle %d", ErrNegativeEnergy, energy, cycle)
	}

	if c.mapper.WithLogic() {
		loc, err := c.mapper.LogicLocation(vault, bank, row, col)
		if err != nil {
			return err
		}

		c.accumLogic.Add(loc.Layer, loc.Row, loc.Col, energy)
		c.curLogic.Add(loc.Layer, loc.Row, loc.Col, energy)
	} else if _, err := c.mapper.MapPhysicalLocation(vault, bank, row, col); err != nil {
		return err
	}

	c.ioEnergy += energy
	c.sampleEnergy += energy

	return nil
}

// Tick closes the current epoch if the cycle is an epoch boundary. A copy of
// the snapshot of the closed epoch is returned and the epoch maps start over.
func (c *Collector) Tick(cycle uint64) (Snapshot, bool) {
	e, ok := c.epoch.Tick(cycle)
	if !ok {
		return Snapshot{}, false
	}

	c.last = Snapshot{
		Epoch:         e,
		Energy:        c.curLogic.Clone(),
		EnergyNoLogic: c.cur.Clone(),
		SampleEnergy:  c.sampleEnergy,
		TotalEnergy:   c.totalEnergy,
		IOEnergy:      c.ioEnergy,
		Usage:         c.VaultUsage(),
	}
	c.hasSnapshot = true

	c.cur.Zero()
	c.curLogic.Zero()
	c.sampleEnergy = 0

	return c.last.clone(), true
}

// Snapshot returns a copy of the last completed epoch.
func (c *Collector) Snapshot() (Snapshot, bool) {
	return c.last.clone(), c.hasSnapshot
}

// Reset clears all the maps, counters and the epoch state.
func (c *Collector) Reset() {
	for _, m := range []*grid.Grid3D{c.accum, c.accumLogic, c.cur, c.curLogic} {
		m.Zero()
	}

	clear(c.usage)
	c.totalEnergy = 0
	c.ioEnergy = 0
	c.sampleEnergy = 0
	c.epoch.Reset()
	c.last = Snapshot{}
	c.hasSnapshot = false
}

// VaultUsage returns a copy of the per-vault access counters.
func (c *Collector) VaultUsage() []VaultUsage {
	u := make([]VaultUsage, len(c.usage))
	copy(u, c.usage)

	return u
}

// AccumulatedMap returns a copy of the energy accumulated since the start of
// the run.
func (c *Collector) AccumulatedMap(withLogic bool) *grid.Grid3D {
	if withLogic {
		return c.accumLogic.Clone()
	}

	return c.accum.Clone()
}

// LogicPower returns a copy of the static logic power map, or nil if none is
// configured.
func (c *Collector) LogicPower() *grid.Grid2D {
	if c.logicPower == nil {
		return nil
	}

	return c.logicPower.Clone()
}

// GenTotalP returns the power map, in watts per cell, that the solvers
// consume. With useAccumulated, it averages the energy since the start over
// cycle cycles. Otherwise it averages the last completed epoch. The static
// logic power is added to the logic layer. The collector state is not
// changed.
func (c *Collector) GenTotalP(useAccumulated bool, cycle uint64) (*grid.Grid3D, error) {
	var (
		energy *grid.Grid3D
		cycles uint64
	)

	if useAccumulated {
		if cycle == 0 {
			return nil, ErrNoElapsedTime
		}

		energy, cycles = c.accumLogic, cycle
	} else {
		if !c.hasSnapshot {
			return nil, ErrNoEpoch
		}

		energy, cycles = c.last.Energy, c.last.Epoch.Length()
	}

	p := energy.Scaled(1 / float64(c.freq.Duration(cycles)))

	if c.mapper.WithLogic() && c.logicPower != nil {
		logic, err := resample.Resize2D(c.logicPower, p.X(), p.Y())
		if err != nil {
			return nil, err
		}

		for r := 0; r < p.Y(); r++ {
			for col := 0; col < p.X(); col++ {
				p.Add(0, r, col, logic.At(r, col))
			}
		}
	}

	return p, nil
}
