// Package calculator drives the power collector and the field solvers of a
// stacked memory device from a stream of access events.
package calculator

import (
	"fmt"
	"sync"
	"time"

	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/pdn"
	"github.com/sarchlab/stacktherm/power"
	"github.com/sarchlab/stacktherm/sim"
	"github.com/sarchlab/stacktherm/thermal"
)

// Mode selects when the solvers run.
type Mode int

// Calculator modes.
const (
	// ModeSteady only solves when CalcSteadyState is called.
	ModeSteady Mode = iota

	// ModeTransient advances the transient solvers at every epoch.
	ModeTransient
)

func (m Mode) String() string {
	switch m {
	case ModeSteady:
		return "steady"
	case ModeTransient:
		return "transient"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// A Calculator collects access energy and computes the temperature and the
// supply voltage of the device.
//
// Hooks are invoked after the calculator releases its lock, so they may read
// from the calculator.
type Calculator struct {
	*sim.HookableBase

	mu sync.RWMutex

	collector    *power.Collector
	thermal      *thermal.Solver
	pdn          *pdn.Solver
	mode         Mode
	transientPDN bool

	now         uint64
	sampleID    uint64
	temperature *grid.Grid3D
	voltage     *grid.Grid3D
}

// Mode returns the operating mode.
func (c *Calculator) Mode() Mode {
	return c.mode
}

// Collector returns the power collector. It must not be used while another
// goroutine drives the calculator.
func (c *Calculator) Collector() *power.Collector {
	return c.collector
}

// Thermal returns the thermal solver. It must not be used while another
// goroutine drives the calculator.
func (c *Calculator) Thermal() *thermal.Solver {
	return c.thermal
}

// PDN returns the PDN solver, or nil if it is disabled. It must not be used
// while another goroutine drives the calculator.
func (c *Calculator) PDN() *pdn.Solver {
	return c.pdn
}

// AddPower records the energy of a core access.
func (c *Calculator) AddPower(
	energy float64,
	vault, bank, row, col int,
	singleBank bool,
	cycle uint64,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = max(c.now, cycle)

	return c.collector.AddPower(energy, vault, bank, row, col, singleBank, cycle)
}

// AddIOPower records the energy of an I/O transfer.
func (c *Calculator) AddIOPower(
	energy float64,
	vault, bank, row, col int,
	cycle uint64,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = max(c.now, cycle)

	return c.collector.AddIOPower(energy, vault, bank, row, col, cycle)
}

// Tick tells the calculator that a cycle has passed. At the end of an epoch,
// the epoch is sampled and, in transient mode, the solvers advance to the
// cycle.
func (c *Calculator) Tick(cycle uint64) error {
	c.mu.Lock()
	hooks, err := c.tick(cycle)
	c.mu.Unlock()

	c.invoke(hooks)

	return err
}

func (c *Calculator) tick(cycle uint64) ([]sim.HookCtx, error) {
	c.now = max(c.now, cycle)

	snap, ok := c.collector.Tick(cycle)
	if !ok {
		return nil, nil
	}

	detail := EpochDetail{Snapshot: snap, SampleID: c.sampleID}
	if c.mode != ModeTransient {
		return []sim.HookCtx{c.ctx(HookPosEpoch, snap.Epoch, detail)}, nil
	}

	p, err := c.collector.GenTotalP(false, cycle)
	if err != nil {
		return nil, err
	}

	detail.Power = p
	hooks := []sim.HookCtx{c.ctx(HookPosEpoch, snap.Epoch, detail)}

	err = c.thermal.SaveSamplePower(p, cycle, c.sampleID)
	if err != nil {
		return hooks, err
	}

	start := time.Now()
	err = c.thermal.AdvanceTransient(p, cycle)
	if err != nil {
		return hooks, fmt.Errorf("transient thermal at cycle %d: %w", cycle, err)
	}

	c.temperature = c.thermal.TransientTemperature()
	hooks = append(hooks, c.ctx(HookPosTransientThermal, snap.Epoch, ThermalDetail{
		Cycle:       cycle,
		SampleID:    c.sampleID,
		Temperature: c.temperature.Clone(),
		Elapsed:     time.Since(start),
	}))

	if c.pdn != nil && c.transientPDN {
		start = time.Now()
		err = c.pdn.AdvanceTransient(p, cycle)
		if err != nil {
			return hooks, fmt.Errorf("transient PDN at cycle %d: %w", cycle, err)
		}

		c.voltage = c.pdn.TransientVoltage()
		hooks = append(hooks, c.ctx(HookPosTransientPDN, snap.Epoch, PDNDetail{
			Cycle:    cycle,
			SampleID: c.sampleID,
			Voltage:  c.voltage.Clone(),
			IRDrop:   c.pdn.Config().Vdd - c.voltage.Min(),
			Elapsed:  time.Since(start),
		}))
	}

	c.sampleID++

	return hooks, nil
}

// CalcSteadyState solves the steady-state temperature, and the steady-state
// voltage if the PDN is enabled, for the average power since cycle 0.
func (c *Calculator) CalcSteadyState(cycle uint64) error {
	c.mu.Lock()
	hooks, err := c.calcSteadyState(cycle)
	c.mu.Unlock()

	c.invoke(hooks)

	return err
}

func (c *Calculator) calcSteadyState(cycle uint64) ([]sim.HookCtx, error) {
	c.now = max(c.now, cycle)

	p, err := c.collector.GenTotalP(true, cycle)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	t, err := c.thermal.SolveSteadyState(p)
	if err != nil {
		return nil, fmt.Errorf("steady thermal at cycle %d: %w", cycle, err)
	}

	c.temperature = t
	hooks := []sim.HookCtx{c.ctx(HookPosSteadyThermal, cycle, ThermalDetail{
		Cycle:       cycle,
		SampleID:    c.sampleID,
		Temperature: t.Clone(),
		Elapsed:     time.Since(start),
	})}

	if c.pdn == nil {
		return hooks, nil
	}

	start = time.Now()
	v, err := c.pdn.SolveSteadyState(p)
	if err != nil {
		return hooks, fmt.Errorf("steady PDN at cycle %d: %w", cycle, err)
	}

	c.voltage = v
	hooks = append(hooks, c.ctx(HookPosSteadyPDN, cycle, PDNDetail{
		Cycle:    cycle,
		SampleID: c.sampleID,
		Voltage:  v.Clone(),
		IRDrop:   c.pdn.IRDrop(),
		Elapsed:  time.Since(start),
	}))

	return hooks, nil
}

func (c *Calculator) ctx(pos *sim.HookPos, item, detail any) sim.HookCtx {
	return sim.HookCtx{Domain: c, Pos: pos, Item: item, Detail: detail}
}

func (c *Calculator) invoke(hooks []sim.HookCtx) {
	for _, h := range hooks {
		c.InvokeHook(h)
	}
}

// Now returns the latest cycle the calculator has seen.
func (c *Calculator) Now() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.now
}

// SampleID returns the ID of the next transient sample.
func (c *Calculator) SampleID() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sampleID
}

// Energy returns the core, I/O and current-epoch energy totals in joules.
func (c *Calculator) Energy() (total, io, sample float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.collector.TotalEnergy(), c.collector.IOEnergy(), c.collector.SampleEnergy()
}

// VaultUsage returns a copy of the per-vault access counters.
func (c *Calculator) VaultUsage() []power.VaultUsage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.collector.VaultUsage()
}

// AccumulatedMap returns a copy of the energy accumulated since cycle 0.
func (c *Calculator) AccumulatedMap(withLogic bool) *grid.Grid3D {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.collector.AccumulatedMap(withLogic)
}

// LastSnapshot returns the last completed epoch.
func (c *Calculator) LastSnapshot() (power.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.collector.Snapshot()
}

// Temperature returns a copy of the latest temperature field, steady or
// transient, or nil if nothing has been solved.
func (c *Calculator) Temperature() *grid.Grid3D {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.temperature == nil {
		return nil
	}

	return c.temperature.Clone()
}

// Voltage returns a copy of the latest voltage field, or nil if nothing has
// been solved.
func (c *Calculator) Voltage() *grid.Grid3D {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.voltage == nil {
		return nil
	}

	return c.voltage.Clone()
}
