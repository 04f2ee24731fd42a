package guest

import (
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
)

// MazeGen reads a u32 seed, generates the default sized maze and commits
// MazeJournal{seed, commitment}. The grid itself is not committed.
func MazeGen(env *zkvm.GuestEnv) error {
	seed, err := env.ReadU32()
	if err != nil {
		return err
	}
	if err := env.Charge(maze.DefaultRows * maze.DefaultCols); err != nil {
		return err
	}

	grid, err := maze.Regenerate(seed)
	if err != nil {
		return err
	}

	env.Commit(MazeJournal{Seed: seed, Commitment: grid.Commitment()}.Encode())
	return nil
}

// MazeGenInput builds the input of MazeGen.
func MazeGenInput(seed uint32) *zkvm.ExecutorEnv {
	return zkvm.NewExecutorEnv().WriteU32(seed)
}
