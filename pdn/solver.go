// Package pdn solves the supply voltage of a stack of dies over a power
// delivery network.
//
// Every die cell is a node and the package is one extra node. Loads draw a
// constant current P/Vdd from their cell. The DC solution comes from the
// conductance matrix of the network; the transient solution integrates the
// RL branches and the decoupling capacitances over time.
package pdn

import (
	"fmt"
	"io"
	"math"

	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/linalg"
	"github.com/sarchlab/stacktherm/report"
	"github.com/sarchlab/stacktherm/resample"
	"github.com/sarchlab/stacktherm/sim"
)

// A Solver computes steady and transient supply voltages.
type Solver struct {
	cfg   Config
	state sim.SolverState
	built bool

	g     *linalg.Sparse
	lin   *linalg.Solver
	maxDt float64

	c4Cells  []int
	tsvCells []int

	voltage    *grid.Grid3D
	pkgVoltage float64

	tr *transient
}

// Config returns the configuration of the solver.
func (s *Solver) Config() Config {
	return s.cfg
}

// State returns the life-cycle stage of the solver.
func (s *Solver) State() sim.SolverState {
	return s.state
}

func (s *Solver) packageNode() int {
	return s.cfg.DieNodes()
}

func (s *Solver) node(layer, row, col int) int {
	return (layer*s.cfg.Y+row)*s.cfg.X + col
}

// BuildConductanceMatrix validates the configuration and assembles the
// conductance matrix. The matrix is only built once.
func (s *Solver) BuildConductanceMatrix() error {
	if s.built {
		return nil
	}

	if err := s.cfg.Validate(); err != nil {
		return err
	}

	s.c4Cells = s.cfg.C4Map.Cells()
	if s.cfg.Layers > 1 {
		s.tsvCells = s.cfg.TSVMap.Cells()
	}

	s.g = s.assemble()
	s.maxDt = s.stableStep()
	s.built = true
	s.state = sim.MatrixBuilt

	return nil
}

func (s *Solver) assemble() *linalg.Sparse {
	cfg := s.cfg
	b := linalg.NewBuilder(cfg.DieNodes() + 1)
	pkg := s.packageNode()
	gGrid := 1 / cfg.GridResistance

	for l := 0; l < cfg.Layers; l++ {
		for r := 0; r < cfg.Y; r++ {
			for c := 0; c < cfg.X; c++ {
				i := s.node(l, r, c)

				if c+1 < cfg.X {
					b.AddConductance(i, i+1, gGrid)
				}

				if r+1 < cfg.Y {
					b.AddConductance(i, i+cfg.X, gGrid)
				}
			}
		}
	}

	layer := cfg.X * cfg.Y
	for _, cell := range s.c4Cells {
		b.AddConductance(pkg, cell, 1/cfg.C4Resistance)
	}

	for l := 1; l < cfg.Layers; l++ {
		for _, cell := range s.tsvCells {
			b.AddConductance((l-1)*layer+cell, l*layer+cell, 1/cfg.TSVResistance)
		}
	}

	b.AddGrounded(pkg, 1/cfg.PackageResistance)

	return b.Build()
}

// stableStep bounds the LC resonance of the network with the Gershgorin
// estimate of the largest eigenvalue of C^-1 B L^-1 B^T and returns 1/ω.
func (s *Solver) stableStep() float64 {
	cfg := s.cfg
	invL := make([]float64, cfg.DieNodes()+1)
	pkg := s.packageNode()

	link := func(i, j int, l float64) {
		invL[i] += 1 / l
		invL[j] += 1 / l
	}

	for l := 0; l < cfg.Layers; l++ {
		for r := 0; r < cfg.Y; r++ {
			for c := 0; c < cfg.X; c++ {
				i := s.node(l, r, c)
				if c+1 < cfg.X {
					link(i, i+1, cfg.GridInductance)
				}

				if r+1 < cfg.Y {
					link(i, i+cfg.X, cfg.GridInductance)
				}
			}
		}
	}

	layer := cfg.X * cfg.Y
	for _, cell := range s.c4Cells {
		link(pkg, cell, cfg.C4Inductance)
	}

	for l := 1; l < cfg.Layers; l++ {
		for _, cell := range s.tsvCells {
			link((l-1)*layer+cell, l*layer+cell, cfg.TSVInductance)
		}
	}

	invL[pkg] += 1 / cfg.PackageInductance

	omega2 := 0.0
	for i, v := range invL {
		c := cfg.Decap
		if i == pkg {
			c = cfg.PackageDecap
		}

		omega2 = math.Max(omega2, 2*v/c)
	}

	return 1 / math.Sqrt(omega2)
}

// ConductanceMatrix returns the assembled matrix, or nil before it is built.
// The package node is the last row.
func (s *Solver) ConductanceMatrix() *linalg.Sparse {
	return s.g
}

// MaxStableTimeStep returns the largest transient step in seconds. It panics
// if the matrix has not been built.
func (s *Solver) MaxStableTimeStep() float64 {
	if !s.built {
		panic("conductance matrix not built")
	}

	return s.maxDt
}

// SolveSteadyState returns the DC voltage of every die cell when the cells
// draw the power in p, in watts per cell.
func (s *Solver) SolveSteadyState(p *grid.Grid3D) (*grid.Grid3D, error) {
	if err := s.BuildConductanceMatrix(); err != nil {
		return nil, err
	}

	load, err := s.loadCurrents(p)
	if err != nil {
		return nil, err
	}

	if s.lin == nil {
		s.lin, err = linalg.NewSolver(s.g, s.cfg.Solver)
		if err != nil {
			return nil, fmt.Errorf("PDN steady state: %w", err)
		}
	}

	rhs := make([]float64, s.cfg.DieNodes()+1)
	for i, l := range load {
		rhs[i] = -l
	}
	rhs[s.packageNode()] = s.cfg.Vdd / s.cfg.PackageResistance

	v, err := s.lin.Solve(rhs)
	if err != nil {
		return nil, fmt.Errorf("PDN steady state: %w", err)
	}

	s.voltage = s.field(v[:s.cfg.DieNodes()])
	s.pkgVoltage = v[s.packageNode()]

	if s.state != sim.TransientRunning {
		s.state = sim.SteadyStateReady
	}

	return s.voltage.Clone(), nil
}

// Voltage returns a copy of the last steady-state voltage field, or nil if
// none has been solved.
func (s *Solver) Voltage() *grid.Grid3D {
	if s.voltage == nil {
		return nil
	}

	return s.voltage.Clone()
}

// PackageVoltage returns the steady-state voltage of the package node.
func (s *Solver) PackageVoltage() float64 {
	return s.pkgVoltage
}

// IRDrop returns Vdd minus the lowest steady-state die voltage.
func (s *Solver) IRDrop() float64 {
	if s.voltage == nil {
		return 0
	}

	return s.cfg.Vdd - s.voltage.Min()
}

// PrintVoltage writes the last steady-state voltage field.
func (s *Solver) PrintVoltage(w io.Writer) error {
	if s.voltage == nil {
		return ErrNotSolved
	}

	return report.WriteField(w, "steady-state voltage (V)", s.voltage)
}

func (s *Solver) loadCurrents(p *grid.Grid3D) ([]float64, error) {
	if p.Z() != s.cfg.Layers {
		return nil, fmt.Errorf("%w: power map has %d layers, network has %d",
			ErrConfig, p.Z(), s.cfg.Layers)
	}

	if p.X() != s.cfg.X || p.Y() != s.cfg.Y {
		resized, err := resample.Resize3D(p, s.cfg.X, s.cfg.Y)
		if err != nil {
			return nil, err
		}

		p = resized
	}

	load := p.Values()
	for i := range load {
		load[i] /= s.cfg.Vdd
	}

	return load, nil
}

func (s *Solver) field(v []float64) *grid.Grid3D {
	g := grid.New3D(s.cfg.X, s.cfg.Y, s.cfg.Layers)
	g.SetValues(v)

	return g
}
