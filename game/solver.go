package game

import (
	"errors"
	"slices"

	"github.com/beka-birhanu/vinom-zkmaze/maze"
)

var ErrNoSolution = errors.New("goal is not reachable from start")

type visit struct {
	from maze.CellPosition
	dir  maze.Direction
}

// Solve returns the shortest move sequence from start to goal using a breadth-first
// search. Directions are tried in North, East, South, West order, so the result is
// deterministic. On a perfect maze it is the unique solution.
func Solve(b Board) ([]maze.Direction, error) {
	start, goal := Start(b), Goal(b)
	if !b.IsPath(start.Row, start.Col) || !b.IsPath(goal.Row, goal.Col) {
		return nil, ErrNoSolution
	}
	if start == goal {
		return nil, ErrNoSolution
	}

	prev := map[maze.CellPosition]visit{start: {}}
	queue := []maze.CellPosition{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			return backtrack(prev, start, goal), nil
		}

		for d := maze.North; d <= maze.West; d++ {
			next := cur.Step(d)
			if _, seen := prev[next]; seen || !inBound(b, next) || !b.IsPath(next.Row, next.Col) {
				continue
			}
			prev[next] = visit{from: cur, dir: d}
			queue = append(queue, next)
		}
	}
	return nil, ErrNoSolution
}

func backtrack(prev map[maze.CellPosition]visit, start, goal maze.CellPosition) []maze.Direction {
	var moves []maze.Direction
	for p := goal; p != start; p = prev[p].from {
		moves = append(moves, prev[p].dir)
	}
	slices.Reverse(moves)
	return moves
}
