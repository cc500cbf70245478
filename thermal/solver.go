// Package thermal solves the temperature of a stack of dies with a
// finite-difference thermal network.
//
// Every cell of every die is a node. Neighboring cells of a die are coupled
// by lateral conduction and vertically adjacent cells are coupled through
// the silicon and the interface between dies. The top die loses heat to the
// heat sink and the bottom die to the package. The lateral edges are either
// adiabatic or held at ambient through an edge coefficient.
package thermal

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/linalg"
	"github.com/sarchlab/stacktherm/resample"
	"github.com/sarchlab/stacktherm/sim"
)

// ErrCycleBackwards is reported when a transient step is requested for a
// cycle before the previous one.
var ErrCycleBackwards = errors.New("cycle moves backwards")

// stepSafety is the fraction of the stability limit that transient sub-steps
// use. Below half of the limit, no mode of forward Euler oscillates.
const stepSafety = 0.5

// A Solver computes steady and transient temperature fields.
type Solver struct {
	cfg   Config
	state sim.SolverState
	built bool

	net   network
	lin   *linalg.Solver
	maxDt float64

	steady    *grid.Grid3D
	theta     []float64
	lastCycle uint64

	sample    Sample
	hasSample bool
}

// Config returns the configuration of the solver.
func (s *Solver) Config() Config {
	return s.cfg
}

// State returns the life-cycle stage of the solver.
func (s *Solver) State() sim.SolverState {
	return s.state
}

// BuildConductanceMatrix validates the configuration and assembles the
// conductance matrix and the capacitance vector. The matrix is only built
// once.
func (s *Solver) BuildConductanceMatrix() error {
	if s.built {
		return nil
	}

	if err := s.cfg.Validate(); err != nil {
		return err
	}

	s.net = assemble(s.cfg)
	s.maxDt = s.net.maxStableTimeStep()
	s.built = true
	s.state = sim.MatrixBuilt

	return nil
}

// ConductanceMatrix returns the assembled conductance matrix, or nil before
// it is built.
func (s *Solver) ConductanceMatrix() *linalg.Sparse {
	return s.net.g
}

// Capacitance returns a copy of the per-node heat capacities in J/K.
func (s *Solver) Capacitance() []float64 {
	c := make([]float64, len(s.net.capacitance))
	copy(c, s.net.capacitance)

	return c
}

// MaxStableTimeStep returns the largest forward-Euler step, in seconds, for
// which the transient integration does not diverge. It panics if the matrix
// has not been built.
func (s *Solver) MaxStableTimeStep() float64 {
	if !s.built {
		panic("conductance matrix not built")
	}

	return s.maxDt
}

// SolveSteadyState solves G θ = P for the power map p, in watts per cell,
// and returns the temperature field in Kelvin. The map is resized to the
// solver grid if needed.
func (s *Solver) SolveSteadyState(p *grid.Grid3D) (*grid.Grid3D, error) {
	if err := s.BuildConductanceMatrix(); err != nil {
		return nil, err
	}

	pv, err := s.powerVector(p)
	if err != nil {
		return nil, err
	}

	if s.lin == nil {
		s.lin, err = linalg.NewSolver(s.net.g, s.cfg.Solver)
		if err != nil {
			return nil, fmt.Errorf("thermal steady state: %w", err)
		}
	}

	theta, err := s.lin.Solve(pv)
	if err != nil {
		return nil, fmt.Errorf("thermal steady state: %w", err)
	}

	s.steady = s.field(theta)
	if s.state != sim.TransientRunning {
		s.state = sim.SteadyStateReady
	}

	return s.steady.Clone(), nil
}

// SteadyState returns a copy of the last steady-state field, or nil if none
// has been solved.
func (s *Solver) SteadyState() *grid.Grid3D {
	if s.steady == nil {
		return nil
	}

	return s.steady.Clone()
}

// AdvanceTransient integrates C dθ/dt = P - G θ from the previous call up to
// the given cycle, holding the power map p constant. The interval is split
// into equal sub-steps that respect the stability limit.
func (s *Solver) AdvanceTransient(p *grid.Grid3D, cycle uint64) error {
	if err := s.BuildConductanceMatrix(); err != nil {
		return err
	}

	if cycle < s.lastCycle {
		return fmt.Errorf("%w: %d after %d", ErrCycleBackwards, cycle, s.lastCycle)
	}

	pv, err := s.powerVector(p)
	if err != nil {
		return err
	}

	s.startTransient()

	elapsed := cycle - s.lastCycle
	if elapsed == 0 {
		return nil
	}

	total := float64(s.cfg.Freq.Duration(elapsed))
	n := max(1, int(math.Ceil(total/(stepSafety*s.maxDt))))
	s.step(pv, total/float64(n), n)
	s.lastCycle = cycle

	return nil
}

// Step runs n forward-Euler steps of dt seconds from the current transient
// state. Unlike AdvanceTransient, it does not check the step against the
// stability limit and does not move the transient clock.
func (s *Solver) Step(p *grid.Grid3D, dt float64, n int) error {
	if err := s.BuildConductanceMatrix(); err != nil {
		return err
	}

	pv, err := s.powerVector(p)
	if err != nil {
		return err
	}

	s.startTransient()
	s.step(pv, dt, n)

	return nil
}

// TransientTemperature returns the transient temperature field in Kelvin.
// Before any transient step, every cell is at ambient.
func (s *Solver) TransientTemperature() *grid.Grid3D {
	if s.theta == nil {
		return s.field(make([]float64, s.cfg.Nodes()))
	}

	return s.field(s.theta)
}

// ResetTransient puts every node back to ambient and the transient clock
// back to cycle 0.
func (s *Solver) ResetTransient() {
	s.theta = nil
	s.lastCycle = 0

	if s.state == sim.TransientRunning {
		s.state = sim.MatrixBuilt
		if s.steady != nil {
			s.state = sim.SteadyStateReady
		}
	}
}

func (s *Solver) startTransient() {
	if s.theta == nil {
		s.theta = make([]float64, s.cfg.Nodes())
	}

	s.state = sim.TransientRunning
}

func (s *Solver) step(pv []float64, dt float64, n int) {
	gTheta := make([]float64, len(s.theta))

	for k := 0; k < n; k++ {
		s.net.g.MulVec(gTheta, s.theta)

		for i := range s.theta {
			s.theta[i] += dt / s.net.capacitance[i] * (pv[i] - gTheta[i])
		}
	}
}

func (s *Solver) powerVector(p *grid.Grid3D) ([]float64, error) {
	if p.Z() != s.cfg.Layers {
		return nil, fmt.Errorf("%w: power map has %d layers, stack has %d",
			ErrConfig, p.Z(), s.cfg.Layers)
	}

	if p.X() != s.cfg.X || p.Y() != s.cfg.Y {
		resized, err := resample.Resize3D(p, s.cfg.X, s.cfg.Y)
		if err != nil {
			return nil, err
		}

		p = resized
	}

	return p.Values(), nil
}

func (s *Solver) field(theta []float64) *grid.Grid3D {
	t := grid.New3D(s.cfg.X, s.cfg.Y, s.cfg.Layers)

	values := make([]float64, len(theta))
	for i, v := range theta {
		values[i] = v + s.cfg.Ambient
	}
	t.SetValues(values)

	return t
}
