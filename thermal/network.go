package thermal

import (
	"math"

	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/linalg"
)

// network is the discretized stack. Ambient is not a node: heat paths to
// ambient only add to the diagonal, and the unknowns are the temperature
// rises above ambient.
type network struct {
	g           *linalg.Sparse
	capacitance []float64
}

func assemble(cfg Config) network {
	var (
		dx   = cfg.CellWidth()
		dy   = cfg.CellHeight()
		area = dx * dy
		tSi  = cfg.SiliconThickness
		tIf  = cfg.InterfaceThickness
		kSi  = cfg.SiliconConductivity
		kIf  = cfg.InterfaceConductivity
	)

	idx := grid.New3D(cfg.X, cfg.Y, cfg.Layers)
	b := linalg.NewBuilder(cfg.Nodes())

	gx := kSi * tSi * dy / dx
	gy := kSi * tSi * dx / dy
	gz := series(
		resistance(tSi/2, kSi, area),
		resistance(tIf, kIf, area),
		resistance(tSi/2, kSi, area))
	gTop := series(
		resistance(tSi/2, kSi, area),
		resistance(tIf, kIf, area),
		film(cfg.HeatSinkCoefficient, area))
	gBottom := series(
		resistance(tSi/2, kSi, area),
		film(cfg.PackageCoefficient, area))

	var gEdgeX, gEdgeY float64
	if cfg.Lateral == FixedTemperature {
		gEdgeX = series(
			resistance(dx/2, kSi, tSi*dy),
			film(cfg.EdgeCoefficient, tSi*dy))
		gEdgeY = series(
			resistance(dy/2, kSi, tSi*dx),
			film(cfg.EdgeCoefficient, tSi*dx))
	}

	top := cfg.Layers - 1
	for l := 0; l < cfg.Layers; l++ {
		for r := 0; r < cfg.Y; r++ {
			for c := 0; c < cfg.X; c++ {
				i := idx.Index(l, r, c)

				if c+1 < cfg.X {
					b.AddConductance(i, idx.Index(l, r, c+1), gx)
				}

				if r+1 < cfg.Y {
					b.AddConductance(i, idx.Index(l, r+1, c), gy)
				}

				if l < top {
					b.AddConductance(i, idx.Index(l+1, r, c), gz)
				}

				if l == top {
					b.AddGrounded(i, gTop)
				}

				if l == 0 {
					b.AddGrounded(i, gBottom)
				}

				b.AddGrounded(i, gEdgeX*float64(exposed(c, cfg.X)))
				b.AddGrounded(i, gEdgeY*float64(exposed(r, cfg.Y)))
			}
		}
	}

	capacitance := make([]float64, cfg.Nodes())
	perCell := area * (tSi*cfg.SiliconHeatCapacity + tIf*cfg.InterfaceHeatCapacity)
	for i := range capacitance {
		capacitance[i] = perCell
	}

	return network{g: b.Build(), capacitance: capacitance}
}

// maxStableTimeStep bounds the forward-Euler step with the Gershgorin
// estimate of the largest eigenvalue of C^-1 G.
func (n network) maxStableTimeStep() float64 {
	rate := 0.0
	for i, c := range n.capacitance {
		rate = math.Max(rate, n.g.RowAbsSum(i)/c)
	}

	if rate == 0 {
		return math.Inf(1)
	}

	return 2 / rate
}

// exposed counts how many sides of cell i out of n lie on the chip edge.
func exposed(i, n int) int {
	e := 0
	if i == 0 {
		e++
	}

	if i == n-1 {
		e++
	}

	return e
}

func resistance(thickness, k, area float64) float64 {
	if thickness == 0 {
		return 0
	}

	if k == 0 {
		return math.Inf(1)
	}

	return thickness / (k * area)
}

func film(h, area float64) float64 {
	if h == 0 {
		return math.Inf(1)
	}

	return 1 / (h * area)
}

func series(resistances ...float64) float64 {
	sum := 0.0
	for _, r := range resistances {
		sum += r
	}

	return 1 / sum
}
