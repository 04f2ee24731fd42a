/*
Package maze derives procedurally generated mazes from a 32-bit seed.

Generation uses a recursive backtracker driven by a Park-Miller generator, so the same
seed produces the same maze on every platform. A maze is rendered into a canonical
wall/path byte grid and committed to with SHA-256; the commitment is what the proving
stages attest to.
*/
package maze

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxDimension bounds both the number of cell rows and columns.
	MaxDimension = 20

	DefaultRows = 20
	DefaultCols = 20
)

var (
	ErrDimensionOverflow = errors.New("maze dimensions exceed the supported bounds")
	ErrInvalidDirection  = errors.New("invalid direction")
)

// Direction is a move direction. Its numeric value is the one-byte wire encoding.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

// Directions maps every direction to its row/col delta.
var Directions = [4]CellPosition{
	North: {Row: -1, Col: 0},
	East:  {Row: 0, Col: 1},
	South: {Row: 1, Col: 0},
	West:  {Row: 0, Col: -1},
}

// Valid reports whether d is one of the four cardinal directions.
func (d Direction) Valid() bool {
	return d <= West
}

// Opposite returns the direction pointing back.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Direction(" + strconv.Itoa(int(d)) + ")"
	}
}

// ParseDirection accepts a direction name, its initial or its numeric encoding.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "n", "north":
		return North, nil
	case "1", "e", "east":
		return East, nil
	case "2", "s", "south":
		return South, nil
	case "3", "w", "west":
		return West, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Maze is a rectangular grid of cells carved into a spanning tree.
type Maze struct {
	Rows  int      // Number of cell rows
	Cols  int      // Number of cell columns
	Seed  uint32   // Seed the maze was derived from
	Cells [][]Cell // Cells indexed by [row][col]
}

// New generates the maze for seed over a rows x cols cell grid.
func New(rows, cols int, seed uint32) (*Maze, error) {
	if min(rows, cols) <= 0 || max(rows, cols) > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d (max %dx%d)", ErrDimensionOverflow, rows, cols, MaxDimension, MaxDimension)
	}

	cells := make([][]Cell, rows)
	for i := range cells {
		cells[i] = make([]Cell, cols)
		for j := range cells[i] {
			cells[i][j] = newCell()
		}
	}

	m := &Maze{
		Rows:  rows,
		Cols:  cols,
		Seed:  seed,
		Cells: cells,
	}
	m.generate(NewLCG(seed))
	return m, nil
}

// inBound reports whether the position lies inside the cell grid.
func (m *Maze) inBound(p CellPosition) bool {
	return p.Row >= 0 && p.Row < m.Rows && p.Col >= 0 && p.Col < m.Cols
}

type neighbor struct {
	dir Direction
	pos CellPosition
}

// unvisitedNeighbors lists unvisited neighbours in North, East, South, West order.
func (m *Maze) unvisitedNeighbors(p CellPosition, buf *[4]neighbor) []neighbor {
	result := buf[:0]
	for d := North; d <= West; d++ {
		next := p.Step(d)
		if m.inBound(next) && !m.Cells[next.Row][next.Col].Visited {
			result = append(result, neighbor{dir: d, pos: next})
		}
	}
	return result
}

// openWall removes the wall between two adjacent cells in the specified direction.
func (m *Maze) openWall(from CellPosition, d Direction, to CellPosition) {
	m.Cells[from.Row][from.Col].SetWall(d, false)
	m.Cells[to.Row][to.Col].SetWall(d.Opposite(), false)
}

// generate carves the maze with an iterative recursive backtracker.
//
// The cursor is tracked separately from the stack. When a cell has no unvisited
// neighbours the stack is popped and the cursor takes the popped value. The first pop
// after a dead end returns the cell already under the cursor, so that cell is examined
// again before backtracking continues. Existing commitments depend on this exact
// draw sequence.
func (m *Maze) generate(rng *LCG) {
	stack := make([]CellPosition, 0, m.Rows*m.Cols)
	current := CellPosition{Row: 0, Col: 0}
	m.Cells[0][0].Visited = true
	stack = append(stack, current)

	var buf [4]neighbor
	for len(stack) > 0 {
		neighbors := m.unvisitedNeighbors(current, &buf)
		if len(neighbors) > 0 {
			next := neighbors[rng.ChoiceIndex(len(neighbors))]
			m.openWall(current, next.dir, next.pos)
			m.Cells[next.pos.Row][next.pos.Col].Visited = true
			stack = append(stack, next.pos)
			current = next.pos
			continue
		}

		current = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}
}

// Start returns the entry cell.
func (m *Maze) Start() CellPosition {
	return CellPosition{Row: 0, Col: 0}
}

// End returns the exit cell.
func (m *Maze) End() CellPosition {
	return CellPosition{Row: m.Rows - 1, Col: m.Cols - 1}
}

// String provides a textual representation of the maze.
func (m *Maze) String() string {
	var sb strings.Builder

	// Top boundary
	sb.WriteString("+" + strings.Repeat("---+", m.Cols) + "\n")

	for row := 0; row < m.Rows; row++ {
		sb.WriteString("|")
		for col := 0; col < m.Cols; col++ {
			cell := m.Cells[row][col]
			if cell.EastWall {
				sb.WriteString("   |")
			} else {
				sb.WriteString("    ")
			}
		}
		sb.WriteString("\n+")
		for col := 0; col < m.Cols; col++ {
			if m.Cells[row][col].SouthWall {
				sb.WriteString("---+")
			} else {
				sb.WriteString("   +")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
