/*
Package guest holds the two attested programs of the pipeline and the host side helpers
that feed them.

MazeGen derives the maze of a seed and commits the seed with the grid commitment.
PathVerify takes an untrusted grid and a move sequence, checks the grid against a maze
generation journal it verifies as an assumption, replays the moves and commits the verdict
with the seed.
*/
package guest

import (
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
)

// Program versions. Changing a program changes its image id, which invalidates every
// receipt produced by the previous version.
const (
	MazeGenVersion    = "1.0.0"
	PathVerifyVersion = "1.0.0"
)

var (
	MazeGenImageID    = zkvm.NewImageID("maze-gen", MazeGenVersion)
	PathVerifyImageID = zkvm.NewImageID("path-verify", PathVerifyVersion)
)

// Programs returns every program by image id, ready to register with a prover.
func Programs() map[zkvm.ImageID]zkvm.Program {
	return map[zkvm.ImageID]zkvm.Program{
		MazeGenImageID:    MazeGen,
		PathVerifyImageID: PathVerify,
	}
}

// ProverOptions registers Programs with a LocalProver.
func ProverOptions() []zkvm.Option {
	programs := Programs()
	opts := make([]zkvm.Option, 0, len(programs))
	for image, program := range programs {
		opts = append(opts, zkvm.WithProgram(image, program))
	}
	return opts
}
