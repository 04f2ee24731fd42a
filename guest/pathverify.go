package guest

import (
	"errors"
	"fmt"
	"math"

	"github.com/beka-birhanu/vinom-zkmaze/game"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
)

// MaxMoves is the longest move sequence PathVerify replays. Longer sequences are
// answered with a negative verdict.
const MaxMoves = 500

var (
	ErrForeignImage = errors.New("maze journal was not produced by the pinned maze generation image")
	ErrTooManyMoves = errors.New("move sequence does not fit the input encoding")
)

// PathVerify checks a move sequence against an untrusted grid bound to a maze journal.
//
// Input: maze_image_id (32) || maze_journal (36) || rows_u16_le || cols_u16_le ||
// grid (rows*cols) || move_count_u16_le || moves (1 byte each).
//
// The maze journal is verified as an assumption. Any mismatch between the grid and the
// committed hash, a blocked start or goal, too many moves or a rejected move commits
// PathJournal{false, seed}; nothing after the first failed check is read.
func PathVerify(env *zkvm.GuestEnv) error {
	rawImage, err := env.ReadSlice(zkvm.ImageIDSize)
	if err != nil {
		return err
	}
	var image zkvm.ImageID
	copy(image[:], rawImage)
	if image != MazeGenImageID {
		return fmt.Errorf("%w: %s", ErrForeignImage, image)
	}

	rawJournal, err := env.ReadSlice(MazeJournalSize)
	if err != nil {
		return err
	}
	journal, err := DecodeMazeJournal(rawJournal)
	if err != nil {
		return err
	}
	if err := env.Verify(image, rawJournal); err != nil {
		return err
	}

	valid, err := checkPath(env, journal.Commitment)
	if err != nil {
		return err
	}
	env.Commit(PathJournal{IsValid: valid, Seed: journal.Seed}.Encode())
	return nil
}

func checkPath(env *zkvm.GuestEnv, commitment maze.Commitment) (bool, error) {
	rows, err := env.ReadU16()
	if err != nil {
		return false, err
	}
	cols, err := env.ReadU16()
	if err != nil {
		return false, err
	}
	if rows == 0 || cols == 0 || rows > maze.MaxGridSide || cols > maze.MaxGridSide {
		return false, nil
	}

	data, err := env.ReadSlice(int(rows) * int(cols))
	if err != nil {
		return false, err
	}
	if !maze.Commit(data).Equal(commitment) {
		return false, nil
	}
	grid, err := maze.GridFromBytes(int(rows), int(cols), data)
	if err != nil {
		return false, nil
	}
	start, goal := game.Start(grid), game.Goal(grid)
	if !grid.IsPath(start.Row, start.Col) || !grid.IsPath(goal.Row, goal.Col) {
		return false, nil
	}

	count, err := env.ReadU16()
	if err != nil {
		return false, err
	}
	if count > MaxMoves {
		return false, nil
	}
	raw, err := env.ReadSlice(int(count))
	if err != nil {
		return false, err
	}
	if err := env.Charge(uint64(count)); err != nil {
		return false, err
	}

	moves := make([]maze.Direction, len(raw))
	for i, b := range raw {
		moves[i] = maze.Direction(b)
	}
	return game.Replay(grid, moves).Valid, nil
}

// PathVerifyInput builds the input of PathVerify. Every move is written, however many
// there are; the program decides what it reads.
func PathVerifyInput(image zkvm.ImageID, journal MazeJournal, grid *maze.Grid, moves []maze.Direction) (*zkvm.ExecutorEnv, error) {
	if len(moves) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d moves", ErrTooManyMoves, len(moves))
	}
	if grid.Rows() > math.MaxUint16 || grid.Cols() > math.MaxUint16 {
		return nil, fmt.Errorf("%w: grid %dx%d", maze.ErrDimensionOverflow, grid.Rows(), grid.Cols())
	}

	raw := make([]byte, len(moves))
	for i, d := range moves {
		raw[i] = byte(d)
	}

	env := zkvm.NewExecutorEnv().
		WriteSlice(image[:]).
		WriteSlice(journal.Encode()).
		WriteU16(uint16(grid.Rows())).
		WriteU16(uint16(grid.Cols())).
		WriteSlice(grid.Bytes()).
		WriteU16(uint16(len(moves))).
		WriteSlice(raw)
	return env, nil
}
