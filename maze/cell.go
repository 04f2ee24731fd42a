package maze

// Cell represents a single cell in a maze grid.
// It includes the walls on each side and the visited mark used while carving.
type Cell struct {
	NorthWall bool // NorthWall indicates whether there is a wall on the north side of the cell.
	EastWall  bool // EastWall indicates whether there is a wall on the east side of the cell.
	SouthWall bool // SouthWall indicates whether there is a wall on the south side of the cell.
	WestWall  bool // WestWall indicates whether there is a wall on the west side of the cell.
	Visited   bool // Visited is set once the generator has reached the cell.
}

func newCell() Cell {
	return Cell{NorthWall: true, EastWall: true, SouthWall: true, WestWall: true}
}

// HasWall reports whether the cell has a wall on side d.
func (c *Cell) HasWall(d Direction) bool {
	switch d {
	case North:
		return c.NorthWall
	case East:
		return c.EastWall
	case South:
		return c.SouthWall
	case West:
		return c.WestWall
	default:
		return true
	}
}

// SetWall sets the presence of a wall on side d.
func (c *Cell) SetWall(d Direction, hasWall bool) {
	switch d {
	case North:
		c.NorthWall = hasWall
	case East:
		c.EastWall = hasWall
	case South:
		c.SouthWall = hasWall
	case West:
		c.WestWall = hasWall
	}
}

// CellPosition represents the position of a cell in the maze grid.
type CellPosition struct {
	Row int // Row index of the cell
	Col int // Column index of the cell
}

// Step returns the position one step away in direction d.
func (p CellPosition) Step(d Direction) CellPosition {
	delta := Directions[d]
	return CellPosition{Row: p.Row + delta.Row, Col: p.Col + delta.Col}
}
