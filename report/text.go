// Package report writes power maps and solved fields for humans and plotting
// tools.
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/power"
)

// textWriter remembers the first write error so that callers can format
// freely and check once.
type textWriter struct {
	w   *bufio.Writer
	err error
}

func newTextWriter(w io.Writer) *textWriter {
	return &textWriter{w: bufio.NewWriter(w)}
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}

	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *textWriter) matrix(g *grid.Grid2D) {
	for r := 0; r < g.Y(); r++ {
		for c := 0; c < g.X(); c++ {
			if c > 0 {
				t.printf(" ")
			}

			t.printf("%.6g", g.At(r, c))
		}

		t.printf("\n")
	}
}

func (t *textWriter) flush() error {
	if t.err != nil {
		return t.err
	}

	return t.w.Flush()
}

// WriteField writes a 3D field as one matrix per layer, bottom layer first.
func WriteField(w io.Writer, title string, g *grid.Grid3D) error {
	t := newTextWriter(w)

	t.printf("# %s (%d x %d x %d)\n", title, g.X(), g.Y(), g.Z())
	for l := 0; l < g.Z(); l++ {
		t.printf("layer %d\n", l)
		t.matrix(g.Layer(l))
	}

	return t.flush()
}

// WritePowerMap writes a power or energy map taken at a cycle.
func WritePowerMap(w io.Writer, cycle uint64, g *grid.Grid3D) error {
	return WriteField(w, fmt.Sprintf("power map at cycle %d", cycle), g)
}

// WriteResizedPowerMap writes a power map after it has been resized to a
// solver grid.
func WriteResizedPowerMap(w io.Writer, cycle uint64, g *grid.Grid3D) error {
	return WriteField(w,
		fmt.Sprintf("power map at cycle %d resized to %dx%d",
			cycle, g.X(), g.Y()),
		g)
}

// WriteLogicPower writes the static logic-layer power map.
func WriteLogicPower(w io.Writer, cycle uint64, g *grid.Grid2D) error {
	t := newTextWriter(w)

	t.printf("# logic power at cycle %d (%d x %d)\n", cycle, g.X(), g.Y())
	t.matrix(g)

	return t.flush()
}

// WriteVaultUsage writes one line per vault with its access counters.
func WriteVaultUsage(w io.Writer, usage []power.VaultUsage) error {
	t := newTextWriter(w)

	t.printf("# vault single multi total\n")
	for i, u := range usage {
		t.printf("%d %d %d %d\n", i, u.Single, u.Multi, u.Total())
	}

	return t.flush()
}
