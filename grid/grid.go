// Package grid provides dense 2D and 3D float64 containers that carry their
// own dimensions. Power maps, temperature fields and voltage fields are all
// stored in these containers.
//
// A grid is X cells wide (columns) and Y cells tall (rows). A 3D grid stacks Z
// such layers. Cells are addressed as (row, col) or (layer, row, col) and are
// stored row-major, layer after layer, so that Index(l, r, c) can double as a
// node number in the solvers.
package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid2D is a dense 2D grid of float64 values.
type Grid2D struct {
	x, y int
	data []float64
}

// New2D creates a zero-filled grid that is x cells wide and y cells tall.
func New2D(x, y int) *Grid2D {
	if x < 0 || y < 0 {
		panic(fmt.Sprintf("invalid grid size %dx%d", x, y))
	}

	return &Grid2D{x: x, y: y, data: make([]float64, x*y)}
}

// From2D creates a grid from nested rows. All the rows must have the same
// length.
func From2D(rows [][]float64) *Grid2D {
	if len(rows) == 0 {
		return New2D(0, 0)
	}

	g := New2D(len(rows[0]), len(rows))
	for r, row := range rows {
		if len(row) != g.x {
			panic(fmt.Sprintf("row %d has %d columns, expected %d",
				r, len(row), g.x))
		}

		copy(g.data[r*g.x:(r+1)*g.x], row)
	}

	return g
}

// X returns the number of columns.
func (g *Grid2D) X() int { return g.x }

// Y returns the number of rows.
func (g *Grid2D) Y() int { return g.y }

// Len returns the number of cells.
func (g *Grid2D) Len() int { return len(g.data) }

// Index returns the linear offset of a cell.
func (g *Grid2D) Index(row, col int) int {
	if row < 0 || row >= g.y || col < 0 || col >= g.x {
		panic(fmt.Sprintf("cell (%d, %d) out of range %dx%d",
			row, col, g.x, g.y))
	}

	return row*g.x + col
}

// At returns the value of a cell.
func (g *Grid2D) At(row, col int) float64 {
	return g.data[g.Index(row, col)]
}

// Set sets the value of a cell.
func (g *Grid2D) Set(row, col int, v float64) {
	g.data[g.Index(row, col)] = v
}

// Add adds v to a cell.
func (g *Grid2D) Add(row, col int, v float64) {
	g.data[g.Index(row, col)] += v
}

// Sum returns the sum of all cells.
func (g *Grid2D) Sum() float64 {
	return sum(g.data)
}

// Max returns the largest cell value. It returns -Inf for an empty grid.
func (g *Grid2D) Max() float64 {
	return maxOf(g.data)
}

// Clone returns a deep copy.
func (g *Grid2D) Clone() *Grid2D {
	c := &Grid2D{x: g.x, y: g.y, data: make([]float64, len(g.data))}
	copy(c.data, g.data)

	return c
}

// Rows returns a copy of the grid as nested rows.
func (g *Grid2D) Rows() [][]float64 {
	rows := make([][]float64, g.y)
	for r := range rows {
		rows[r] = make([]float64, g.x)
		copy(rows[r], g.data[r*g.x:(r+1)*g.x])
	}

	return rows
}

// Equal checks if two grids have the same size and all cells are within tol.
func (g *Grid2D) Equal(o *Grid2D, tol float64) bool {
	if g.x != o.x || g.y != o.y {
		return false
	}

	return closeAll(g.data, o.data, tol)
}

// Grid3D is a dense stack of 2D layers.
type Grid3D struct {
	x, y, z int
	data    []float64
}

// New3D creates a zero-filled grid with z layers of x by y cells.
func New3D(x, y, z int) *Grid3D {
	if x < 0 || y < 0 || z < 0 {
		panic(fmt.Sprintf("invalid grid size %dx%dx%d", x, y, z))
	}

	return &Grid3D{x: x, y: y, z: z, data: make([]float64, x*y*z)}
}

// X returns the number of columns.
func (g *Grid3D) X() int { return g.x }

// Y returns the number of rows.
func (g *Grid3D) Y() int { return g.y }

// Z returns the number of layers.
func (g *Grid3D) Z() int { return g.z }

// Len returns the number of cells.
func (g *Grid3D) Len() int { return len(g.data) }

// Index returns the linear offset of a cell.
func (g *Grid3D) Index(layer, row, col int) int {
	if layer < 0 || layer >= g.z ||
		row < 0 || row >= g.y ||
		col < 0 || col >= g.x {
		panic(fmt.Sprintf("cell (%d, %d, %d) out of range %dx%dx%d",
			layer, row, col, g.x, g.y, g.z))
	}

	return (layer*g.y+row)*g.x + col
}

// Contains checks if a cell is inside the grid.
func (g *Grid3D) Contains(layer, row, col int) bool {
	return layer >= 0 && layer < g.z &&
		row >= 0 && row < g.y &&
		col >= 0 && col < g.x
}

// At returns the value of a cell.
func (g *Grid3D) At(layer, row, col int) float64 {
	return g.data[g.Index(layer, row, col)]
}

// Set sets the value of a cell.
func (g *Grid3D) Set(layer, row, col int, v float64) {
	g.data[g.Index(layer, row, col)] = v
}

// Add adds v to a cell.
func (g *Grid3D) Add(layer, row, col int, v float64) {
	g.data[g.Index(layer, row, col)] += v
}

// Sum returns the sum of all cells.
func (g *Grid3D) Sum() float64 {
	return sum(g.data)
}

// Max returns the largest cell value. It returns -Inf for an empty grid.
func (g *Grid3D) Max() float64 {
	return maxOf(g.data)
}

// Min returns the smallest cell value. It returns +Inf for an empty grid.
func (g *Grid3D) Min() float64 {
	if len(g.data) == 0 {
		return math.Inf(1)
	}

	return floats.Min(g.data)
}

// Zero sets all the cells to 0.
func (g *Grid3D) Zero() {
	clear(g.data)
}

// Scaled returns a copy with every cell multiplied by f.
func (g *Grid3D) Scaled(f float64) *Grid3D {
	c := g.Clone()
	for i := range c.data {
		c.data[i] *= f
	}

	return c
}

// Clone returns a deep copy.
func (g *Grid3D) Clone() *Grid3D {
	c := &Grid3D{x: g.x, y: g.y, z: g.z, data: make([]float64, len(g.data))}
	copy(c.data, g.data)

	return c
}

// Layer returns a copy of one layer.
func (g *Grid3D) Layer(layer int) *Grid2D {
	if layer < 0 || layer >= g.z {
		panic(fmt.Sprintf("layer %d out of range %d", layer, g.z))
	}

	n := g.x * g.y
	l := New2D(g.x, g.y)
	copy(l.data, g.data[layer*n:(layer+1)*n])

	return l
}

// SetLayer overwrites one layer with the content of a 2D grid of the same
// footprint.
func (g *Grid3D) SetLayer(layer int, l *Grid2D) {
	if layer < 0 || layer >= g.z {
		panic(fmt.Sprintf("layer %d out of range %d", layer, g.z))
	}

	if l.x != g.x || l.y != g.y {
		panic(fmt.Sprintf("layer size %dx%d does not match %dx%d",
			l.x, l.y, g.x, g.y))
	}

	n := g.x * g.y
	copy(g.data[layer*n:(layer+1)*n], l.data)
}

// Values returns a copy of the cells in index order.
func (g *Grid3D) Values() []float64 {
	v := make([]float64, len(g.data))
	copy(v, g.data)

	return v
}

// SetValues overwrites the cells in index order.
func (g *Grid3D) SetValues(v []float64) {
	if len(v) != len(g.data) {
		panic(fmt.Sprintf("got %d values, expected %d", len(v), len(g.data)))
	}

	copy(g.data, v)
}

// Equal checks if two grids have the same size and all cells are within tol.
func (g *Grid3D) Equal(o *Grid3D, tol float64) bool {
	if g.x != o.x || g.y != o.y || g.z != o.z {
		return false
	}

	return closeAll(g.data, o.data, tol)
}

func sum(v []float64) float64 {
	return floats.Sum(v)
}

func maxOf(v []float64) float64 {
	if len(v) == 0 {
		return math.Inf(-1)
	}

	return floats.Max(v)
}

func closeAll(a, b []float64, tol float64) bool {
	return floats.EqualApprox(a, b, tol)
}
