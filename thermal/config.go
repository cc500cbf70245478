package thermal

import (
	"errors"
	"fmt"

	"github.com/sarchlab/stacktherm/linalg"
	"github.com/sarchlab/stacktherm/sim"
)

// ErrConfig is reported when the thermal configuration cannot describe a
// physical stack.
var ErrConfig = errors.New("invalid thermal configuration")

// Boundary selects how the four lateral edges of the stack exchange heat.
type Boundary int

// Lateral boundary conditions.
const (
	Adiabatic Boundary = iota
	FixedTemperature
)

func (b Boundary) String() string {
	switch b {
	case Adiabatic:
		return "adiabatic"
	case FixedTemperature:
		return "fixed-temperature"
	default:
		return fmt.Sprintf("Boundary(%d)", int(b))
	}
}

// Config describes the stack that the thermal network discretizes. Lengths
// are in meters, conductivities in W/(m K), volumetric heat capacities in
// J/(m^3 K) and heat transfer coefficients in W/(m^2 K).
//
// Each die is a silicon layer with one interface layer on top of it: the
// bonding layer to the next die, or the thermal interface material for the
// top die.
type Config struct {
	ChipWidth  float64
	ChipHeight float64

	X, Y   int
	Layers int

	SiliconThickness      float64
	InterfaceThickness    float64
	SiliconConductivity   float64
	InterfaceConductivity float64
	SiliconHeatCapacity   float64
	InterfaceHeatCapacity float64

	HeatSinkCoefficient float64
	PackageCoefficient  float64
	Ambient             float64

	Lateral         Boundary
	EdgeCoefficient float64

	Freq   sim.Freq
	Solver linalg.Options
}

// DefaultConfig returns a 5-layer, 7 mm by 7 mm stack on a 16 by 16 grid
// with a forced-air heat sink.
func DefaultConfig() Config {
	return Config{
		ChipWidth:             7e-3,
		ChipHeight:            7e-3,
		X:                     16,
		Y:                     16,
		Layers:                5,
		SiliconThickness:      100e-6,
		InterfaceThickness:    20e-6,
		SiliconConductivity:   120,
		InterfaceConductivity: 1.5,
		SiliconHeatCapacity:   1.63e6,
		InterfaceHeatCapacity: 2e6,
		HeatSinkCoefficient:   2e4,
		PackageCoefficient:    1e3,
		Ambient:               318.15,
		Lateral:               Adiabatic,
		Freq:                  1.25 * sim.GHz,
		Solver:                linalg.DefaultOptions(),
	}
}

// Nodes returns the number of thermal nodes.
func (c Config) Nodes() int {
	return c.X * c.Y * c.Layers
}

// CellWidth returns the size of a cell along X.
func (c Config) CellWidth() float64 {
	return c.ChipWidth / float64(c.X)
}

// CellHeight returns the size of a cell along Y.
func (c Config) CellHeight() float64 {
	return c.ChipHeight / float64(c.Y)
}

// Validate checks that the configuration describes a physical stack.
// Conductances may be zero; a network that cannot reach ambient is reported
// by the solver as singular.
func (c Config) Validate() error {
	switch {
	case c.X <= 0 || c.Y <= 0 || c.Layers <= 0:
		return fmt.Errorf("%w: grid %dx%dx%d", ErrConfig, c.X, c.Y, c.Layers)
	case c.ChipWidth <= 0 || c.ChipHeight <= 0:
		return fmt.Errorf("%w: chip size %gx%g", ErrConfig, c.ChipWidth, c.ChipHeight)
	case c.SiliconThickness <= 0 || c.InterfaceThickness < 0:
		return fmt.Errorf("%w: layer thickness", ErrConfig)
	case c.SiliconConductivity < 0 || c.InterfaceConductivity < 0:
		return fmt.Errorf("%w: negative conductivity", ErrConfig)
	case c.SiliconHeatCapacity <= 0 || c.InterfaceHeatCapacity < 0:
		return fmt.Errorf("%w: capacitance must be positive", ErrConfig)
	case c.HeatSinkCoefficient < 0 || c.PackageCoefficient < 0 ||
		c.EdgeCoefficient < 0:
		return fmt.Errorf("%w: negative heat transfer coefficient", ErrConfig)
	case c.Lateral == FixedTemperature && c.EdgeCoefficient == 0:
		return fmt.Errorf("%w: fixed-temperature edges need an edge coefficient",
			ErrConfig)
	case c.Lateral != Adiabatic && c.Lateral != FixedTemperature:
		return fmt.Errorf("%w: unknown boundary %s", ErrConfig, c.Lateral)
	case c.Ambient <= 0:
		return fmt.Errorf("%w: ambient %g K", ErrConfig, c.Ambient)
	case c.Freq <= 0:
		return fmt.Errorf("%w: frequency %g", ErrConfig, float64(c.Freq))
	}

	return nil
}
