package pdn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedMap is reported when a connectivity map cannot be parsed.
var ErrMalformedMap = errors.New("malformed connectivity map")

// A ConnectivityMap marks the cells of the PDN grid that have a vertical
// connection, such as a TSV or a C4 bump.
type ConnectivityMap struct {
	x, y  int
	cells []bool
}

// NewConnectivityMap creates an empty map of x by y cells.
func NewConnectivityMap(x, y int) *ConnectivityMap {
	if x <= 0 || y <= 0 {
		panic(fmt.Sprintf("invalid connectivity map size %dx%d", x, y))
	}

	return &ConnectivityMap{x: x, y: y, cells: make([]bool, x*y)}
}

// UniformMap places a connection every pitch cells along both directions,
// starting half a pitch from the edge.
func UniformMap(x, y, pitch int) *ConnectivityMap {
	if pitch <= 0 {
		panic("pitch must be positive")
	}

	m := NewConnectivityMap(x, y)
	for r := pitch / 2; r < y; r += pitch {
		for c := pitch / 2; c < x; c += pitch {
			m.Set(r, c)
		}
	}

	return m
}

// ParseConnectivityMap reads a matrix of 0 and 1 separated by whitespace.
// Each non-empty line is one row.
func ParseConnectivityMap(r io.Reader) (*ConnectivityMap, error) {
	var rows [][]bool

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		row := make([]bool, len(fields))
		for i, f := range fields {
			switch f {
			case "0":
			case "1":
				row[i] = true
			default:
				return nil, fmt.Errorf("%w: line %d: unexpected %q",
					ErrMalformedMap, line, f)
			}
		}

		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("%w: line %d has %d cells, expected %d",
				ErrMalformedMap, line, len(row), len(rows[0]))
		}

		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedMap)
	}

	m := NewConnectivityMap(len(rows[0]), len(rows))
	for r, row := range rows {
		for c, v := range row {
			if v {
				m.Set(r, c)
			}
		}
	}

	return m, nil
}

// X returns the number of columns.
func (m *ConnectivityMap) X() int { return m.x }

// Y returns the number of rows.
func (m *ConnectivityMap) Y() int { return m.y }

// Set marks a cell as connected.
func (m *ConnectivityMap) Set(row, col int) {
	m.cells[m.index(row, col)] = true
}

// Has tells if a cell is connected.
func (m *ConnectivityMap) Has(row, col int) bool {
	return m.cells[m.index(row, col)]
}

// Count returns the number of connected cells.
func (m *ConnectivityMap) Count() int {
	n := 0
	for _, v := range m.cells {
		if v {
			n++
		}
	}

	return n
}

// Cells returns the row-major offsets of the connected cells.
func (m *ConnectivityMap) Cells() []int {
	var cells []int
	for i, v := range m.cells {
		if v {
			cells = append(cells, i)
		}
	}

	return cells
}

func (m *ConnectivityMap) index(row, col int) int {
	if row < 0 || row >= m.y || col < 0 || col >= m.x {
		panic(fmt.Sprintf("cell (%d, %d) out of range %dx%d",
			row, col, m.x, m.y))
	}

	return row*m.x + col
}
