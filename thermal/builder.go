package thermal

import (
	"github.com/sarchlab/stacktherm/linalg"
	"github.com/sarchlab/stacktherm/sim"
)

// Builder can build thermal solvers.
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

// WithChipSize sets the die footprint in meters.
func (b Builder) WithChipSize(width, height float64) Builder {
	b.cfg.ChipWidth = width
	b.cfg.ChipHeight = height

	return b
}

// WithGrid sets the number of cells along X and Y.
func (b Builder) WithGrid(x, y int) Builder {
	b.cfg.X = x
	b.cfg.Y = y

	return b
}

// WithLayers sets the number of dies.
func (b Builder) WithLayers(n int) Builder {
	b.cfg.Layers = n
	return b
}

// WithAmbient sets the ambient temperature in Kelvin.
func (b Builder) WithAmbient(kelvin float64) Builder {
	b.cfg.Ambient = kelvin
	return b
}

// WithHeatSink sets the heat transfer coefficients of the heat sink on top
// and of the package below the stack.
func (b Builder) WithHeatSink(top, bottom float64) Builder {
	b.cfg.HeatSinkCoefficient = top
	b.cfg.PackageCoefficient = bottom

	return b
}

// WithLateralBoundary sets the condition of the lateral edges. The edge
// coefficient is only used for fixed-temperature edges.
func (b Builder) WithLateralBoundary(boundary Boundary, edgeCoefficient float64) Builder {
	b.cfg.Lateral = boundary
	b.cfg.EdgeCoefficient = edgeCoefficient

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
