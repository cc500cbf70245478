package pdn

import (
	"errors"
	"fmt"

	"github.com/sarchlab/stacktherm/linalg"
	"github.com/sarchlab/stacktherm/sim"
)

// ErrConfig is reported when the PDN configuration cannot describe a
// physical network.
var ErrConfig = errors.New("invalid PDN configuration")

// Config describes the power delivery network. Resistances are in ohms,
// inductances in henries and capacitances in farads.
//
// The voltage regulator feeds the package node through the package
// impedance. C4 bumps connect the package node to the bottom die and TSVs
// connect vertically adjacent dies. Inside a die, adjacent cells are joined
// by a grid segment.
type Config struct {
	X, Y   int
	Layers int
	Vdd    float64

	GridResistance    float64
	GridInductance    float64
	TSVResistance     float64
	TSVInductance     float64
	C4Resistance      float64
	C4Inductance      float64
	PackageResistance float64
	PackageInductance float64

	Decap        float64
	PackageDecap float64

	TSVMap *ConnectivityMap
	C4Map  *ConnectivityMap

	Freq   sim.Freq
	Solver linalg.Options
}

// DefaultConfig returns a 1.2 V network on an 8 by 8 grid of 5 layers with a
// TSV and a C4 bump every other cell.
func DefaultConfig() Config {
	return Config{
		X:                 8,
		Y:                 8,
		Layers:            5,
		Vdd:               1.2,
		GridResistance:    0.05,
		GridInductance:    5e-12,
		TSVResistance:     0.04,
		TSVInductance:     2e-11,
		C4Resistance:      0.01,
		C4Inductance:      5e-11,
		PackageResistance: 1e-3,
		PackageInductance: 1e-10,
		Decap:             1e-9,
		PackageDecap:      1e-7,
		TSVMap:            UniformMap(8, 8, 2),
		C4Map:             UniformMap(8, 8, 2),
		Freq:              1.25 * sim.GHz,
		Solver:            linalg.DefaultOptions(),
	}
}

// DieNodes returns the number of on-die nodes.
func (c Config) DieNodes() int {
	return c.X * c.Y * c.Layers
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.X <= 0 || c.Y <= 0 || c.Layers <= 0 {
		return fmt.Errorf("%w: grid %dx%dx%d", ErrConfig, c.X, c.Y, c.Layers)
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"Vdd", c.Vdd},
		{"grid resistance", c.GridResistance},
		{"grid inductance", c.GridInductance},
		{"TSV resistance", c.TSVResistance},
		{"TSV inductance", c.TSVInductance},
		{"C4 resistance", c.C4Resistance},
		{"C4 inductance", c.C4Inductance},
		{"package resistance", c.PackageResistance},
		{"package inductance", c.PackageInductance},
		{"decap", c.Decap},
		{"package decap", c.PackageDecap},
		{"frequency", float64(c.Freq)},
	}

	for _, p := range positive {
		if !(p.value > 0) {
			return fmt.Errorf("%w: %s must be positive, got %g",
				ErrConfig, p.name, p.value)
		}
	}

	if err := c.checkMap("C4", c.C4Map); err != nil {
		return err
	}

	if c.Layers > 1 {
		if err := c.checkMap("TSV", c.TSVMap); err != nil {
			return err
		}
	}

	return nil
}

func (c Config) checkMap(name string, m *ConnectivityMap) error {
	switch {
	case m == nil || m.Count() == 0:
		return fmt.Errorf("%w: %s map is empty", ErrConfig, name)
	case m.X() != c.X || m.Y() != c.Y:
		return fmt.Errorf("%w: %s map is %dx%d, grid is %dx%d",
			ErrConfig, name, m.X(), m.Y(), c.X, c.Y)
	}

	return nil
}
