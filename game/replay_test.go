package game

import (
	"testing"

	"github.com/beka-birhanu/vinom-zkmaze/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const knownSeed = 2918957128

// knownSolution solves the 20x20 maze of knownSeed.
var knownSolution = []uint8{
	1, 1, 2, 2, 3, 3, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 2, 2, 3, 3, 2, 2, 1, 1,
	1, 1, 2, 2, 1, 1, 1, 1, 2, 2, 2, 2, 1, 1, 0, 0, 1, 1, 0, 0, 3, 3, 0, 0, 0, 0, 3, 3, 3, 3,
	0, 0, 3, 3, 0, 0, 3, 3, 3, 3, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 0, 1, 1, 2, 2, 2, 2, 2, 2,
	3, 3, 2, 2, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 1, 1, 2, 2, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0,
	0, 0, 1, 1, 2, 2, 1, 1, 0, 0, 1, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 1, 1, 2, 2,
	2, 2, 1, 1, 2, 2, 3, 3, 2, 2, 1, 1, 2, 2, 2, 2, 2, 2, 3, 3, 2, 2, 3, 3, 2, 2, 3, 3, 3, 3,
	2, 2, 1, 1, 2, 2, 3, 3, 2, 2, 3, 3, 2, 2, 2, 2, 2, 2, 3, 3, 0, 0, 3, 3, 0, 0, 1, 1, 0, 0,
	3, 3, 3, 3, 2, 2, 3, 3, 3, 3, 2, 2, 1, 1, 1, 1, 2, 2, 3, 3, 2, 2, 1, 1, 1, 1, 1, 1, 2, 2,
	1, 1, 2, 2, 3, 3, 2, 2, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 0, 3, 3,
	3, 3, 0, 0, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 0, 0, 1, 1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 3, 3, 2, 2, 1, 1,
}

func directions(raw []uint8) []maze.Direction {
	moves := make([]maze.Direction, len(raw))
	for i, b := range raw {
		moves[i] = maze.Direction(b)
	}
	return moves
}

func grid(t *testing.T, seed uint32) *maze.Grid {
	t.Helper()
	g, err := maze.Regenerate(seed)
	require.NoError(t, err)
	return g
}

func TestReplay(t *testing.T) {
	board := grid(t, knownSeed)
	require.Len(t, knownSolution, 312)

	t.Run("known solution reaches the goal", func(t *testing.T) {
		v := Replay(board, directions(knownSolution))
		assert.True(t, v.Valid)
		assert.Equal(t, ReachedGoal, v.State)
		assert.Equal(t, NotRejected, v.Reason)
		assert.Equal(t, 312, v.Consumed)
		assert.Equal(t, maze.CellPosition{Row: 39, Col: 39}, v.Position)
	})

	t.Run("empty sequence", func(t *testing.T) {
		v := Replay(board, nil)
		assert.False(t, v.Valid)
		assert.Equal(t, Traveling, v.State)
		assert.Equal(t, maze.CellPosition{Row: 1, Col: 1}, v.Position)
	})

	t.Run("partial solution", func(t *testing.T) {
		v := Replay(board, directions(knownSolution[:50]))
		assert.False(t, v.Valid)
		assert.Equal(t, Traveling, v.State)
		assert.Equal(t, 50, v.Consumed)
		assert.Equal(t, maze.CellPosition{Row: 21, Col: 15}, v.Position)
	})

	t.Run("ten east moves hit a wall", func(t *testing.T) {
		moves := directions([]uint8{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
		v := Replay(board, moves)
		assert.False(t, v.Valid)
		assert.Equal(t, Rejected, v.State)
		assert.Equal(t, WallCollision, v.Reason)
		assert.Equal(t, 3, v.Consumed)
		assert.Equal(t, maze.CellPosition{Row: 1, Col: 3}, v.Position)
	})

	t.Run("solution of another seed", func(t *testing.T) {
		v := Replay(grid(t, 12345), directions(knownSolution))
		assert.False(t, v.Valid)
		assert.Equal(t, WallCollision, v.Reason)
		assert.Equal(t, 9, v.Consumed)
	})

	t.Run("moves after the goal are ignored", func(t *testing.T) {
		moves := append(directions(knownSolution), 7, 7, 7, maze.West)
		v := Replay(board, moves)
		assert.True(t, v.Valid)
		assert.Equal(t, 312, v.Consumed)
	})

	t.Run("invalid direction", func(t *testing.T) {
		v := Replay(board, []maze.Direction{4})
		assert.False(t, v.Valid)
		assert.Equal(t, InvalidDirection, v.Reason)
		assert.Equal(t, 1, v.Consumed)
	})

	t.Run("rejection is final", func(t *testing.T) {
		moves := append([]maze.Direction{maze.North}, directions(knownSolution)...)
		v := Replay(board, moves)
		assert.False(t, v.Valid)
		assert.Equal(t, WallCollision, v.Reason)
		assert.Equal(t, 1, v.Consumed)
	})

	t.Run("is idempotent", func(t *testing.T) {
		moves := directions(knownSolution)
		assert.Equal(t, Replay(board, moves), Replay(board, moves))
	})
}

func TestWalker(t *testing.T) {
	t.Run("out of bounds", func(t *testing.T) {
		open, err := maze.NewGrid([][]uint8{
			{1, 1, 1, 1},
			{1, 1, 1, 1},
			{1, 1, 1, 1},
			{1, 1, 1, 1},
		})
		require.NoError(t, err)

		w := NewWalker(open)
		assert.Equal(t, Traveling, w.Step(maze.North))
		assert.Equal(t, Rejected, w.Step(maze.North))
		assert.Equal(t, OutOfBounds, w.Reason())
		assert.Equal(t, maze.CellPosition{Row: 0, Col: 1}, w.Position())
		assert.Equal(t, 1, w.Steps())
	})

	t.Run("blocked start", func(t *testing.T) {
		closed, err := maze.NewGrid([][]uint8{
			{0, 0, 0, 0},
			{0, 0, 1, 0},
			{0, 1, 1, 0},
			{0, 0, 0, 0},
		})
		require.NoError(t, err)

		w := NewWalker(closed)
		assert.Equal(t, Rejected, w.State())
		assert.Equal(t, BlockedStart, w.Reason())
		assert.Equal(t, Rejected, w.Step(maze.East))
		assert.Zero(t, w.Steps())
	})

	t.Run("terminal states ignore moves", func(t *testing.T) {
		board := grid(t, knownSeed)
		w := NewWalker(board)
		for _, d := range directions(knownSolution) {
			w.Step(d)
		}
		require.Equal(t, ReachedGoal, w.State())
		assert.Equal(t, ReachedGoal, w.Step(maze.North))
		assert.Equal(t, 312, w.Steps())
	})

	t.Run("tampered cell values are walls", func(t *testing.T) {
		g, err := maze.NewGrid([][]uint8{
			{0, 0, 0, 0},
			{0, 1, 7, 0},
			{0, 0, 1, 0},
			{0, 0, 0, 0},
		})
		require.NoError(t, err)
		v := Replay(g, []maze.Direction{maze.East, maze.South})
		assert.Equal(t, WallCollision, v.Reason)
	})
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "reached-goal", ReachedGoal.String())
	assert.Equal(t, "wall collision", WallCollision.String())
	assert.True(t, Rejected.Terminal())
	assert.False(t, Traveling.Terminal())
}
