// Package domain holds the records the pipeline produces and the callers it serves.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
)

var (
	ErrCommitmentMismatch = errors.New("commitment does not match the grid")
	ErrMissingReceipt     = errors.New("artifact has no receipt")
)

// MazeArtifact is the sealed output of the maze commitment stage. It never changes once
// built and can be rebuilt from Seed alone.
type MazeArtifact struct {
	Seed       uint32
	Grid       *maze.Grid
	Commitment maze.Commitment
	Receipt    *zkvm.Receipt
	Profile    zkvm.Profile
	CreatedAt  time.Time
}

// NewMazeArtifact builds an artifact. The commitment must be the commitment of grid.
func NewMazeArtifact(seed uint32, grid *maze.Grid, commitment maze.Commitment, receipt *zkvm.Receipt, createdAt time.Time) (*MazeArtifact, error) {
	if grid == nil || !grid.Commitment().Equal(commitment) {
		return nil, fmt.Errorf("%w: seed %d", ErrCommitmentMismatch, seed)
	}
	if receipt == nil {
		return nil, ErrMissingReceipt
	}
	return &MazeArtifact{
		Seed:       seed,
		Grid:       grid,
		Commitment: commitment,
		Receipt:    receipt,
		Profile:    receipt.Profile,
		CreatedAt:  createdAt.UTC(),
	}, nil
}
