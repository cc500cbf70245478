package pdn

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/sim"
)

// ErrNotSolved is reported when a voltage field is printed before it is
// solved.
var ErrNotSolved = errors.New("voltage not solved")

// ErrCycleBackwards is reported when a transient step is requested for a
// cycle before the previous one.
var ErrCycleBackwards = errors.New("cycle moves backwards")

// Currents holds on-die branch currents in amperes.
//
// X[l][r][c] flows from cell (r, c) to (r, c+1) and Y[l][r][c] from (r, c)
// to (r+1, c). Z[0][r][c] flows from the package into the bottom die
// through the C4 bump at (r, c); Z[l][r][c] for l > 0 flows up from layer
// l-1 through the TSV at (r, c). Positions without a bump or a TSV carry no
// current.
type Currents struct {
	X, Y, Z *grid.Grid3D
}

// OffDie is the state of the package.
type OffDie struct {
	// Current flows from the regulator into the package node.
	Current float64
	Voltage float64
}

type transient struct {
	v          []float64
	ix, iy, iz []float64
	offDie     OffDie
	lastCycle  uint64

	net []float64
}

// InitializeTransientState sets every node to Vdd and every current to
// zero.
func (s *Solver) InitializeTransientState() {
	cfg := s.cfg
	layer := cfg.X * cfg.Y

	tr := &transient{
		v:   make([]float64, cfg.DieNodes()),
		ix:  make([]float64, max(cfg.X-1, 0)*cfg.Y*cfg.Layers),
		iy:  make([]float64, cfg.X*max(cfg.Y-1, 0)*cfg.Layers),
		iz:  make([]float64, layer*cfg.Layers),
		net: make([]float64, cfg.DieNodes()),
	}

	for i := range tr.v {
		tr.v[i] = cfg.Vdd
	}
	tr.offDie.Voltage = cfg.Vdd

	s.tr = tr
}

// AdvanceTransient integrates the network from the previous call up to the
// given cycle with the loads of p held constant. Each sub-step first updates
// the branch currents, treating the branch resistance implicitly, and then
// the node voltages from the updated currents.
func (s *Solver) AdvanceTransient(p *grid.Grid3D, cycle uint64) error {
	if err := s.BuildConductanceMatrix(); err != nil {
		return err
	}

	load, err := s.loadCurrents(p)
	if err != nil {
		return err
	}

	if s.tr == nil {
		s.InitializeTransientState()
	}

	if cycle < s.tr.lastCycle {
		return fmt.Errorf("%w: %d after %d",
			ErrCycleBackwards, cycle, s.tr.lastCycle)
	}

	s.state = sim.TransientRunning

	elapsed := cycle - s.tr.lastCycle
	if elapsed == 0 {
		return nil
	}

	total := float64(s.cfg.Freq.Duration(elapsed))
	n := max(1, int(math.Ceil(total/s.maxDt)))
	dt := total / float64(n)

	for k := 0; k < n; k++ {
		s.step(load, dt)
	}

	s.tr.lastCycle = cycle

	return nil
}

type branch struct {
	a, h float64
}

func newBranch(r, l, dt float64) branch {
	return branch{a: 1 / (1 + dt*r/l), h: dt / l}
}

func (b branch) update(i, dv float64) float64 {
	return b.a * (i + b.h*dv)
}

func (s *Solver) step(load []float64, dt float64) {
	cfg := s.cfg
	tr := s.tr
	v := tr.v
	layer := cfg.X * cfg.Y

	seg := newBranch(cfg.GridResistance, cfg.GridInductance, dt)
	tsv := newBranch(cfg.TSVResistance, cfg.TSVInductance, dt)
	c4 := newBranch(cfg.C4Resistance, cfg.C4Inductance, dt)
	pkg := newBranch(cfg.PackageResistance, cfg.PackageInductance, dt)

	for i := range tr.net {
		tr.net[i] = -load[i]
	}

	k := 0
	for l := 0; l < cfg.Layers; l++ {
		for r := 0; r < cfg.Y; r++ {
			for c := 0; c+1 < cfg.X; c++ {
				i := s.node(l, r, c)
				tr.ix[k] = seg.update(tr.ix[k], v[i]-v[i+1])
				tr.net[i] -= tr.ix[k]
				tr.net[i+1] += tr.ix[k]
				k++
			}
		}
	}

	k = 0
	for l := 0; l < cfg.Layers; l++ {
		for r := 0; r+1 < cfg.Y; r++ {
			for c := 0; c < cfg.X; c++ {
				i := s.node(l, r, c)
				tr.iy[k] = seg.update(tr.iy[k], v[i]-v[i+cfg.X])
				tr.net[i] -= tr.iy[k]
				tr.net[i+cfg.X] += tr.iy[k]
				k++
			}
		}
	}

	pkgOut := 0.0
	for _, cell := range s.c4Cells {
		tr.iz[cell] = c4.update(tr.iz[cell], tr.offDie.Voltage-v[cell])
		tr.net[cell] += tr.iz[cell]
		pkgOut += tr.iz[cell]
	}

	for l := 1; l < cfg.Layers; l++ {
		for _, cell := range s.tsvCells {
			up := l*layer + cell
			down := up - layer
			tr.iz[up] = tsv.update(tr.iz[up], v[down]-v[up])
			tr.net[down] -= tr.iz[up]
			tr.net[up] += tr.iz[up]
		}
	}

	tr.offDie.Current = pkg.update(tr.offDie.Current, cfg.Vdd-tr.offDie.Voltage)

	for i := range v {
		v[i] += dt / cfg.Decap * tr.net[i]
	}
	tr.offDie.Voltage += dt / cfg.PackageDecap * (tr.offDie.Current - pkgOut)
}

// TransientVoltage returns the transient die voltage field. Before the
// transient state is initialized, every cell is at Vdd.
func (s *Solver) TransientVoltage() *grid.Grid3D {
	if s.tr == nil {
		v := make([]float64, s.cfg.DieNodes())
		for i := range v {
			v[i] = s.cfg.Vdd
		}

		return s.field(v)
	}

	return s.field(append([]float64(nil), s.tr.v...))
}

// BranchCurrents returns a copy of the transient on-die branch currents.
func (s *Solver) BranchCurrents() Currents {
	cfg := s.cfg
	cur := Currents{
		X: grid.New3D(max(cfg.X-1, 0), cfg.Y, cfg.Layers),
		Y: grid.New3D(cfg.X, max(cfg.Y-1, 0), cfg.Layers),
		Z: grid.New3D(cfg.X, cfg.Y, cfg.Layers),
	}

	if s.tr != nil {
		cur.X.SetValues(s.tr.ix)
		cur.Y.SetValues(s.tr.iy)
		cur.Z.SetValues(s.tr.iz)
	}

	return cur
}

// OffDie returns the transient state of the package.
func (s *Solver) OffDie() OffDie {
	if s.tr == nil {
		return OffDie{Voltage: s.cfg.Vdd}
	}

	return s.tr.offDie
}
