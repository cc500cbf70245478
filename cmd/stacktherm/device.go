package main

import (
	"github.com/spf13/pflag"

	"github.com/sarchlab/stacktherm/geometry"
)

// deviceFlags describe the organization of the memory.
type deviceFlags struct {
	vaults, banks, layers int
	rows, cols            int
	gridsX, gridsY        int
	noLogic               bool
}

func (d *deviceFlags) register(flags *pflag.FlagSet) {
	flags.IntVar(&d.vaults, "vaults", 32, "Number of vaults.")
	flags.IntVar(&d.banks, "banks", 16, "Number of banks per vault.")
	flags.IntVar(&d.layers, "layers", 4, "Number of DRAM layers.")
	flags.IntVar(&d.rows, "rows", 16384, "Number of rows per bank.")
	flags.IntVar(&d.cols, "cols", 128, "Number of columns per bank.")
	flags.IntVar(&d.gridsX, "grids-x", 2, "Power map cells per bank, across.")
	flags.IntVar(&d.gridsY, "grids-y", 2, "Power map cells per bank, down.")
	flags.BoolVar(&d.noLogic, "no-logic", false,
		"Do not model the logic layer under the DRAM layers.")
}

func (d *deviceFlags) mapper() (*geometry.Mapper, error) {
	return geometry.MakeBuilder().
		WithNumVaults(d.vaults).
		WithNumBanks(d.banks).
		WithNumDRAMLayers(d.layers).
		WithNumRows(d.rows).
		WithNumCols(d.cols).
		WithGridsPerBank(d.gridsX, d.gridsY).
		WithLogicLayer(!d.noLogic).
		Build()
}
