package geometry

import "fmt"

// Builder can build mappers.
type Builder struct {
	numVaults     int
	numBanks      int
	numDRAMLayers int
	numRows       int
	numCols       int
	gridsX        int
	gridsY        int
	withLogic     bool
}

// MakeBuilder creates a builder with the organization of a 4-high HMC-like
// cube.
func MakeBuilder() Builder {
	return Builder{
		numVaults:     32,
		numBanks:      16,
		numDRAMLayers: 4,
		numRows:       16384,
		numCols:       128,
		gridsX:        2,
		gridsY:        2,
		withLogic:     true,
	}
}

// WithNumVaults sets the number of vaults.
func (b Builder) WithNumVaults(n int) Builder {
	b.numVaults = n
	return b
}

// WithNumBanks sets the number of banks in each vault.
func (b Builder) WithNumBanks(n int) Builder {
	b.numBanks = n
	return b
}

// WithNumDRAMLayers sets the number of stacked DRAM dies.
func (b Builder) WithNumDRAMLayers(n int) Builder {
	b.numDRAMLayers = n
	return b
}

// WithNumRows sets the number of rows in each bank.
func (b Builder) WithNumRows(n int) Builder {
	b.numRows = n
	return b
}

// WithNumCols sets the number of columns in each bank.
func (b Builder) WithNumCols(n int) Builder {
	b.numCols = n
	return b
}

// WithGridsPerBank sets how many power-map cells each bank is split into
// along X and Y.
func (b Builder) WithGridsPerBank(x, y int) Builder {
	b.gridsX = x
	b.gridsY = y

	return b
}

// WithLogicLayer sets whether the logic die below the DRAM stack is modeled.
func (b Builder) WithLogicLayer(withLogic bool) Builder {
	b.withLogic = withLogic
	return b
}

// Build validates the organization and creates a Mapper.
func (b Builder) Build() (*Mapper, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	m := &Mapper{
		numVaults:     b.numVaults,
		numBanks:      b.numBanks,
		numDRAMLayers: b.numDRAMLayers,
		numRows:       b.numRows,
		numCols:       b.numCols,
		gridsX:        b.gridsX,
		gridsY:        b.gridsY,
		withLogic:     b.withLogic,
		banksPerLayer: b.numBanks / b.numDRAMLayers,
	}

	m.vaultX, m.vaultY = tile(m.numVaults)
	m.bankX, m.bankY = tile(m.banksPerLayer)

	return m, nil
}

func (b Builder) validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"vault count", b.numVaults},
		{"bank count", b.numBanks},
		{"DRAM layer count", b.numDRAMLayers},
		{"row count", b.numRows},
		{"column count", b.numCols},
		{"grids per bank along X", b.gridsX},
		{"grids per bank along Y", b.gridsY},
	}

	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d",
				ErrInvalidGeometry, p.name, p.value)
		}
	}

	if b.numBanks%b.numDRAMLayers != 0 {
		return fmt.Errorf("%w: %d banks cannot be spread over %d layers",
			ErrInvalidGeometry, b.numBanks, b.numDRAMLayers)
	}

	if b.gridsX > b.numCols || b.gridsY > b.numRows {
		return fmt.Errorf("%w: a bank of %dx%d cannot be split into %dx%d",
			ErrInvalidGeometry, b.numCols, b.numRows, b.gridsX, b.gridsY)
	}

	return nil
}
