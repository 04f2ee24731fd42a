/*
Package game replays move sequences over a canonical maze grid.

A Walker is the replay state machine: it starts on the canonical start cell, consumes
one direction at a time and ends either on the goal or rejected. Replay runs a whole
sequence and reduces it to a Verdict. Solve finds the shortest sequence that a Walker
accepts.
*/
package game

import "github.com/beka-birhanu/vinom-zkmaze/maze"

// Board defines the methods a replayable grid must implement.
type Board interface {
	Rows() int
	Cols() int
	IsPath(row, col int) bool
}

var _ Board = (*maze.Grid)(nil)

// Start returns the canonical start position of b.
func Start(b Board) maze.CellPosition {
	return maze.CellPosition{Row: 1, Col: 1}
}

// Goal returns the canonical goal position of b.
func Goal(b Board) maze.CellPosition {
	return maze.CellPosition{Row: b.Rows() - 2, Col: b.Cols() - 2}
}

func inBound(b Board, p maze.CellPosition) bool {
	return p.Row >= 0 && p.Row < b.Rows() && p.Col >= 0 && p.Col < b.Cols()
}
