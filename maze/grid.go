package maze

import (
	"errors"
	"fmt"
	"strings"
)

// Grid cell values.
const (
	Wall byte = 0
	Path byte = 1
)

// MaxGridSide is the largest side of a canonical grid.
const MaxGridSide = 2*MaxDimension + 1

var (
	ErrEmptyGrid  = errors.New("grid is empty")
	ErrRaggedGrid = errors.New("grid rows have different lengths")
	ErrGridSize   = errors.New("grid data does not match its dimensions")
)

// Grid is the canonical wall/path occupancy grid of a maze, stored row-major.
type Grid struct {
	rows int
	cols int
	data []byte
}

// Encode renders the cell structure of m into its canonical (2R+1)x(2C+1) grid.
// Cell centres land on odd coordinates; a cleared wall opens the grid cell between
// the two centres. Everything else, the outer border included, stays wall.
func Encode(m *Maze) *Grid {
	g := &Grid{
		rows: 2*m.Rows + 1,
		cols: 2*m.Cols + 1,
	}
	g.data = make([]byte, g.rows*g.cols)

	for row := 0; row < m.Rows; row++ {
		for col := 0; col < m.Cols; col++ {
			cell := &m.Cells[row][col]
			center := CellPosition{Row: 2*row + 1, Col: 2*col + 1}
			g.set(center, Path)

			for d := North; d <= West; d++ {
				if !cell.HasWall(d) {
					g.set(center.Step(d), Path)
				}
			}
		}
	}
	return g
}

// Regenerate recomputes the canonical grid for seed at the default dimensions.
// Grids are never cached; callers recompute them on demand from the seed.
func Regenerate(seed uint32) (*Grid, error) {
	m, err := New(DefaultRows, DefaultCols, seed)
	if err != nil {
		return nil, err
	}
	return Encode(m), nil
}

// NewGrid builds a grid from untrusted row slices, e.g. a JSON payload.
// Values are copied verbatim so that tampered cells change the commitment.
func NewGrid(rows [][]uint8) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	if len(rows) > MaxGridSide || len(rows[0]) > MaxGridSide {
		return nil, fmt.Errorf("%w: grid %dx%d (max %dx%d)", ErrDimensionOverflow, len(rows), len(rows[0]), MaxGridSide, MaxGridSide)
	}

	g := &Grid{rows: len(rows), cols: len(rows[0])}
	g.data = make([]byte, 0, g.rows*g.cols)
	for _, r := range rows {
		if len(r) != g.cols {
			return nil, ErrRaggedGrid
		}
		g.data = append(g.data, r...)
	}
	return g, nil
}

// GridFromBytes builds a grid from row-major bytes.
func GridFromBytes(rows, cols int, data []byte) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrEmptyGrid
	}
	if rows > MaxGridSide || cols > MaxGridSide {
		return nil, fmt.Errorf("%w: grid %dx%d (max %dx%d)", ErrDimensionOverflow, rows, cols, MaxGridSide, MaxGridSide)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrGridSize, rows*cols, len(data))
	}
	return &Grid{rows: rows, cols: cols, data: append([]byte(nil), data...)}, nil
}

func (g *Grid) set(p CellPosition, v byte) {
	g.data[p.Row*g.cols+p.Col] = v
}

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of grid columns.
func (g *Grid) Cols() int { return g.cols }

// Bytes returns a copy of the row-major grid bytes.
func (g *Grid) Bytes() []byte {
	return append([]byte(nil), g.data...)
}

// At returns the value at (row, col). Out of bounds positions read as wall.
func (g *Grid) At(row, col int) byte {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return Wall
	}
	return g.data[row*g.cols+col]
}

// IsPath reports whether (row, col) is inside the grid and walkable.
func (g *Grid) IsPath(row, col int) bool {
	return g.At(row, col) == Path
}

// Start returns the canonical start position.
func (g *Grid) Start() CellPosition {
	return CellPosition{Row: 1, Col: 1}
}

// Goal returns the canonical goal position.
func (g *Grid) Goal() CellPosition {
	return CellPosition{Row: g.rows - 2, Col: g.cols - 2}
}

// Commitment returns the commitment over the grid bytes.
func (g *Grid) Commitment() Commitment {
	return Commit(g.data)
}

// Equal reports whether both grids have the same shape and bytes.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.rows != other.rows || g.cols != other.cols {
		return false
	}
	return string(g.data) == string(other.data)
}

// ToRows returns the grid as row slices, the shape used by JSON payloads.
func (g *Grid) ToRows() [][]uint8 {
	rows := make([][]uint8, g.rows)
	for r := range rows {
		rows[r] = append([]uint8(nil), g.data[r*g.cols:(r+1)*g.cols]...)
	}
	return rows
}

// String renders walls as '#' and paths as '.'.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.rows * (g.cols + 1))
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.data[r*g.cols+c] == Path {
				sb.WriteByte('.')
			} else {
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
