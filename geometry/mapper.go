package geometry

import "fmt"

// Location is a physical cell of the power map.
type Location struct {
	Layer, Row, Col int
}

func (l Location) String() string {
	return fmt.Sprintf("(%d, %d, %d)", l.Layer, l.Row, l.Col)
}

// A Mapper converts logical addresses into power-map cells.
//
// Vaults are tiled in a near-square arrangement over the die footprint. The
// banks of one vault are spread evenly across the DRAM layers and the banks
// that share a layer are tiled inside the vault footprint. Each bank covers
// gridsX by gridsY cells, selected by the row and column address.
type Mapper struct {
	numVaults     int
	numBanks      int
	numDRAMLayers int
	numRows       int
	numCols       int
	gridsX        int
	gridsY        int
	withLogic     bool

	banksPerLayer int
	vaultX        int
	vaultY        int
	bankX         int
	bankY         int
}

// X returns the number of cell columns.
func (m *Mapper) X() int {
	return m.vaultX * m.bankX * m.gridsX
}

// Y returns the number of cell rows.
func (m *Mapper) Y() int {
	return m.vaultY * m.bankY * m.gridsY
}

// Z returns the number of layers, including the logic layer if modeled.
func (m *Mapper) Z() int {
	return m.numDRAMLayers + m.DRAMLayerOffset()
}

// NumVaults returns the number of vaults.
func (m *Mapper) NumVaults() int {
	return m.numVaults
}

// WithLogic tells if the logic layer is modeled.
func (m *Mapper) WithLogic() bool {
	return m.withLogic
}

// DRAMLayerOffset returns the index of the lowest DRAM layer. It is 1 when the
// logic layer sits below the DRAM dies and 0 otherwise.
func (m *Mapper) DRAMLayerOffset() int {
	if m.withLogic {
		return 1
	}

	return 0
}

// VaultTile returns how many vaults are placed along X and Y.
func (m *Mapper) VaultTile() (x, y int) {
	return m.vaultX, m.vaultY
}

// BankTile returns how many banks of one layer are placed along X and Y
// within a vault.
func (m *Mapper) BankTile() (x, y int) {
	return m.bankX, m.bankY
}

// MapPhysicalLocation returns the cell that an access to the given logical
// address dissipates its energy in.
func (m *Mapper) MapPhysicalLocation(vault, bank, row, col int) (Location, error) {
	if err := m.check(vault, bank, row, col); err != nil {
		return Location{}, err
	}

	dramLayer := bank / m.banksPerLayer
	bankInLayer := bank % m.banksPerLayer

	r, c := m.cell(vault, bankInLayer, row, col)

	return Location{
		Layer: dramLayer + m.DRAMLayerOffset(),
		Row:   r,
		Col:   c,
	}, nil
}

// LogicLocation returns the logic-layer cell right below the cell that the
// logical address maps to. I/O energy of an access is dissipated there.
func (m *Mapper) LogicLocation(vault, bank, row, col int) (Location, error) {
	if !m.withLogic {
		return Location{}, ErrNoLogicLayer
	}

	loc, err := m.MapPhysicalLocation(vault, bank, row, col)
	if err != nil {
		return Location{}, err
	}

	loc.Layer = 0

	return loc, nil
}

func (m *Mapper) check(vault, bank, row, col int) error {
	switch {
	case vault < 0 || vault >= m.numVaults:
		return &AddrError{Field: "vault", Value: vault, Limit: m.numVaults}
	case bank < 0 || bank >= m.numBanks:
		return &AddrError{Field: "bank", Value: bank, Limit: m.numBanks}
	case row < 0 || row >= m.numRows:
		return &AddrError{Field: "row", Value: row, Limit: m.numRows}
	case col < 0 || col >= m.numCols:
		return &AddrError{Field: "col", Value: col, Limit: m.numCols}
	}

	return nil
}

func (m *Mapper) cell(vault, bankInLayer, row, col int) (r, c int) {
	vaultRow, vaultCol := vault/m.vaultX, vault%m.vaultX
	bankRow, bankCol := bankInLayer/m.bankX, bankInLayer%m.bankX
	gridRow := row * m.gridsY / m.numRows
	gridCol := col * m.gridsX / m.numCols

	r = (vaultRow*m.bankY+bankRow)*m.gridsY + gridRow
	c = (vaultCol*m.bankX+bankCol)*m.gridsX + gridCol

	return r, c
}
