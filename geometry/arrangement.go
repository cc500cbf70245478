// Package geometry maps the logical address space of a stacked memory device
// (vault, bank, row, column) onto the physical cells of the power map.
package geometry

import (
	"fmt"
	"math"
)

// SquareArrangement returns the smallest side s so that s*s >= n. It is used
// to lay out n vaults, or the banks of one layer, as a near-square tile.
func SquareArrangement(n int) int {
	if n < 0 {
		panic(fmt.Sprintf("cannot arrange %d units", n))
	}

	s := int(math.Sqrt(float64(n)))
	for s*s < n {
		s++
	}

	for s > 0 && (s-1)*(s-1) >= n {
		s--
	}

	return s
}

// tile returns the width and height of a near-square tile holding n units.
func tile(n int) (x, y int) {
	x = SquareArrangement(n)
	if x == 0 {
		return 0, 0
	}

	y = (n + x - 1) / x

	return x, y
}
