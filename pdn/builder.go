package pdn

import (
	"github.com/sarchlab/stacktherm/linalg"
	"github.com/sarchlab/stacktherm/sim"
)

// Builder can build PDN solvers.
type Builder struct {
	cfg Config
}

// MakeBuilder creates a builder that starts from DefaultConfig.
func MakeBuilder() Builder {
	return Builder{cfg: DefaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithGrid sets the number of cells along X and Y. The default maps are
// regenerated for the new footprint.
func (b Builder) WithGrid(x, y int) Builder {
	b.cfg.X = x
	b.cfg.Y = y

	if x > 0 && y > 0 {
		b.cfg.TSVMap = UniformMap(x, y, 2)
		b.cfg.C4Map = UniformMap(x, y, 2)
	}

	return b
}

// WithLayers sets the number of dies.
func (b Builder) WithLayers(n int) Builder {
	b.cfg.Layers = n
	return b
}

// WithVdd sets the supply voltage.
func (b Builder) WithVdd(v float64) Builder {
	b.cfg.Vdd = v
	return b
}

// WithTSVMap sets where the TSVs are.
func (b Builder) WithTSVMap(m *ConnectivityMap) Builder {
	b.cfg.TSVMap = m
	return b
}

// WithC4Map sets where the C4 bumps are.
func (b Builder) WithC4Map(m *ConnectivityMap) Builder {
	b.cfg.C4Map = m
	return b
}

// WithFreq sets the clock that cycle numbers refer to.
func (b Builder) WithFreq(f sim.Freq) Builder {
	b.cfg.Freq = f
	return b
}

// WithSolverOptions sets how the linear systems are solved.
func (b Builder) WithSolverOptions(opts linalg.Options) Builder {
	b.cfg.Solver = opts
	return b
}

// Build creates a Solver. The configuration is validated when the
// conductance matrix is built.
func (b Builder) Build() *Solver {
	if b.cfg.Solver == (linalg.Options{}) {
		b.cfg.Solver = linalg.DefaultOptions()
	}

	return &Solver{cfg: b.cfg}
}
