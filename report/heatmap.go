package report

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sarchlab/stacktherm/grid"
)

// ErrEmptyField is returned when there is nothing to draw.
var ErrEmptyField = errors.New("empty field")

// heatGrid adapts a grid layer to plotter.GridXYZ. Row 0 is drawn at the
// bottom.
type heatGrid struct {
	g *grid.Grid2D
}

func (h heatGrid) Dims() (c, r int)   { return h.g.X(), h.g.Y() }
func (h heatGrid) Z(c, r int) float64 { return h.g.At(r, c) }
func (h heatGrid) X(c int) float64    { return float64(c) }
func (h heatGrid) Y(r int) float64    { return float64(r) }

// HeatMapPNG draws one layer of a field as a PNG heat map.
func HeatMapPNG(w io.Writer, title string, g *grid.Grid3D, layer int) error {
	if g.X() == 0 || g.Y() == 0 {
		return ErrEmptyField
	}

	if layer < 0 || layer >= g.Z() {
		return fmt.Errorf("layer %d out of range [0, %d)", layer, g.Z())
	}

	l := g.Layer(layer)

	hm := plotter.NewHeatMap(heatGrid{g: l}, palette.Heat(64, 1))
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s, layer %d", title, layer)
	p.X.Label.Text = "col"
	p.Y.Label.Text = "row"
	p.Add(hm)

	height := 6 * vg.Inch * vg.Length(l.Y()) / vg.Length(l.X())
	height = max(3*vg.Inch, min(9*vg.Inch, height))

	wt, err := p.WriterTo(6*vg.Inch, height, "png")
	if err != nil {
		return err
	}

	_, err = wt.WriteTo(w)

	return err
}
