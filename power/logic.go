package power

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/stacktherm/grid"
)

// ErrMalformedLogicPower is reported when a logic power map cannot be parsed.
var ErrMalformedLogicPower = errors.New("malformed logic power map")

// ReadLogicPower parses a logic power map. Each non-empty line is one row of
// whitespace-separated cell powers in watts. All the rows must have the same
// number of cells.
func ReadLogicPower(r io.Reader) (*grid.Grid2D, error) {
	var rows [][]float64

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v",
					ErrMalformedLogicPower, line, err)
			}

			if v < 0 {
				return nil, fmt.Errorf("%w: line %d: negative power %g",
					ErrMalformedLogicPower, line, v)
			}

			row[i] = v
		}

		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("%w: line %d has %d cells, expected %d",
				ErrMalformedLogicPower, line, len(row), len(rows[0]))
		}

		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty map", ErrMalformedLogicPower)
	}

	return grid.From2D(rows), nil
}

// UniformLogicPower spreads totalWatts evenly over x by y cells.
func UniformLogicPower(x, y int, totalWatts float64) *grid.Grid2D {
	g := grid.New2D(x, y)
	perCell := totalWatts / float64(x*y)

	for r := 0; r < y; r++ {
		for c := 0; c < x; c++ {
			g.Set(r, c, perCell)
		}
	}

	return g
}
