// Package resample resizes power maps between the logical grid that the
// collector accumulates into and the grids that the solvers discretize.
//
// Resizing interpolates bilinearly between cell centers and then multiplies
// every cell by the area ratio old/new, because the cells hold extensive
// quantities (energy or power per cell). The total is therefore preserved
// exactly for uniform maps and approximately otherwise. It is a smoothing
// approximation, not a conservative redistribution.
package resample

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sarchlab/stacktherm/grid"
)

// ErrInvalidSize is reported when a grid is resized to or from an empty
// footprint.
var ErrInvalidSize = errors.New("invalid resample size")

// Resize2D resizes a 2D grid to newX by newY cells. Resizing to the same size
// returns an identical copy.
func Resize2D(g *grid.Grid2D, newX, newY int) (*grid.Grid2D, error) {
	if err := checkSize(g.X(), g.Y(), newX, newY); err != nil {
		return nil, err
	}

	if g.X() == newX && g.Y() == newY {
		return g.Clone(), nil
	}

	out := grid.New2D(newX, newY)
	scale := float64(g.X()*g.Y()) / float64(newX*newY)

	for r := 0; r < newY; r++ {
		y0, y1, fy := sourceSpan(r, g.Y(), newY)

		for c := 0; c < newX; c++ {
			x0, x1, fx := sourceSpan(c, g.X(), newX)

			top := (1-fx)*g.At(y0, x0) + fx*g.At(y0, x1)
			bottom := (1-fx)*g.At(y1, x0) + fx*g.At(y1, x1)

			out.Set(r, c, ((1-fy)*top+fy*bottom)*scale)
		}
	}

	return out, nil
}

// Resize3D resizes every layer of a 3D grid independently. The number of
// layers does not change.
func Resize3D(g *grid.Grid3D, newX, newY int) (*grid.Grid3D, error) {
	if err := checkSize(g.X(), g.Y(), newX, newY); err != nil {
		return nil, err
	}

	if g.X() == newX && g.Y() == newY {
		return g.Clone(), nil
	}

	out := grid.New3D(newX, newY, g.Z())

	var wg sync.WaitGroup
	for l := 0; l < g.Z(); l++ {
		wg.Add(1)

		go func(l int) {
			defer wg.Done()

			// Sizes are already checked, so the error is always nil.
			resized, _ := Resize2D(g.Layer(l), newX, newY)
			out.SetLayer(l, resized)
		}(l)
	}
	wg.Wait()

	return out, nil
}

func checkSize(oldX, oldY, newX, newY int) error {
	if oldX < 1 || oldY < 1 || newX < 1 || newY < 1 {
		return fmt.Errorf("%w: %dx%d to %dx%d",
			ErrInvalidSize, oldX, oldY, newX, newY)
	}

	return nil
}

// sourceSpan maps destination index i of n cells onto the two neighboring
// source cells of m cells and the weight of the second one.
func sourceSpan(i, m, n int) (i0, i1 int, f float64) {
	s := (float64(i)+0.5)*float64(m)/float64(n) - 0.5
	s = math.Max(0, math.Min(s, float64(m-1)))

	i0 = int(math.Floor(s))
	i1 = min(i0+1, m-1)
	f = s - float64(i0)

	return i0, i1, f
}
