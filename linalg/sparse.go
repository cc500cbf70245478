// Package linalg provides the sparse conductance matrices and the linear
// solvers shared by the thermal and the power-delivery networks.
package linalg

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// parallelRows is the matrix size from which MulVec splits rows across
// goroutines.
const parallelRows = 1 << 14

// A Builder collects matrix entries before they are compressed into a
// Sparse matrix. Entries added to the same position are summed.
type Builder struct {
	n    int
	rows []map[int]float64
}

// NewBuilder creates a builder for an n by n matrix.
func NewBuilder(n int) *Builder {
	if n <= 0 {
		panic(fmt.Sprintf("matrix size must be positive, got %d", n))
	}

	b := &Builder{n: n, rows: make([]map[int]float64, n)}
	for i := range b.rows {
		b.rows[i] = make(map[int]float64)
	}

	return b
}

// Add adds v to entry (i, j).
func (b *Builder) Add(i, j int, v float64) {
	b.mustBeInRange(i)
	b.mustBeInRange(j)

	b.rows[i][j] += v
}

// AddConductance stamps a conductance g between node i and node j. The stamp
// keeps both rows summing to zero.
func (b *Builder) AddConductance(i, j int, g float64) {
	if i == j {
		panic("conductance must connect two different nodes")
	}

	b.Add(i, i, g)
	b.Add(j, j, g)
	b.Add(i, j, -g)
	b.Add(j, i, -g)
}

// AddGrounded stamps a conductance g between node i and a node held at a
// fixed potential. Only the diagonal changes; the fixed potential moves to
// the right-hand side.
func (b *Builder) AddGrounded(i int, g float64) {
	b.Add(i, i, g)
}

func (b *Builder) mustBeInRange(i int) {
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("node %d out of range %d", i, b.n))
	}
}

// Build compresses the entries into a CSR matrix. The diagonal is always
// stored, even when it is zero.
func (b *Builder) Build() *Sparse {
	m := &Sparse{
		n:      b.n,
		rowPtr: make([]int, b.n+1),
		diag:   make([]int, b.n),
	}

	for i, row := range b.rows {
		if _, ok := row[i]; !ok {
			row[i] = 0
		}

		cols := make([]int, 0, len(row))
		for j := range row {
			cols = append(cols, j)
		}
		sort.Ints(cols)

		for _, j := range cols {
			if j == i {
				m.diag[i] = len(m.colInd)
			}

			m.colInd = append(m.colInd, j)
			m.values = append(m.values, row[j])
		}

		m.rowPtr[i+1] = len(m.colInd)
	}

	return m
}

// Sparse is a square matrix in compressed sparse row format.
type Sparse struct {
	n      int
	rowPtr []int
	colInd []int
	values []float64
	diag   []int
}

// N returns the number of rows (and columns).
func (m *Sparse) N() int {
	return m.n
}

// NNZ returns the number of stored entries.
func (m *Sparse) NNZ() int {
	return len(m.values)
}

// At returns entry (i, j).
func (m *Sparse) At(i, j int) float64 {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic(fmt.Sprintf("entry (%d, %d) out of range %d", i, j, m.n))
	}

	start, end := m.rowPtr[i], m.rowPtr[i+1]
	k := sort.SearchInts(m.colInd[start:end], j) + start
	if k < end && m.colInd[k] == j {
		return m.values[k]
	}

	return 0
}

// Diagonal returns a copy of the diagonal.
func (m *Sparse) Diagonal() []float64 {
	d := make([]float64, m.n)
	for i, k := range m.diag {
		d[i] = m.values[k]
	}

	return d
}

// RowSum returns the sum of the entries of row i.
func (m *Sparse) RowSum(i int) float64 {
	s := 0.0
	for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
		s += m.values[k]
	}

	return s
}

// RowAbsSum returns the sum of the absolute values of the entries of row i.
func (m *Sparse) RowAbsSum(i int) float64 {
	s := 0.0
	for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
		s += math.Abs(m.values[k])
	}

	return s
}

// IsSymmetric checks if m equals its transpose within tol.
func (m *Sparse) IsSymmetric(tol float64) bool {
	for i := 0; i < m.n; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			j := m.colInd[k]
			if math.Abs(m.values[k]-m.At(j, i)) > tol {
				return false
			}
		}
	}

	return true
}

// MulVec computes dst = m * x.
func (m *Sparse) MulVec(dst, x []float64) {
	if len(dst) != m.n || len(x) != m.n {
		panic("vector length does not match matrix size")
	}

	if m.n < parallelRows {
		m.mulRows(dst, x, 0, m.n)
		return
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (m.n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < m.n; start += chunk {
		end := min(start+chunk, m.n)

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			m.mulRows(dst, x, start, end)
		}(start, end)
	}
	wg.Wait()
}

func (m *Sparse) mulRows(dst, x []float64, start, end int) {
	for i := start; i < end; i++ {
		s := 0.0
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			s += m.values[k] * x[m.colInd[k]]
		}
		dst[i] = s
	}
}

// Dense expands the matrix into a gonum dense matrix.
func (m *Sparse) Dense() *mat.Dense {
	d := mat.NewDense(m.n, m.n, nil)
	for i := 0; i < m.n; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			d.Set(i, m.colInd[k], m.values[k])
		}
	}

	return d
}
