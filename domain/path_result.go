package domain

import (
	"time"

	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/google/uuid"
)

// PathResult is the verdict for one move sequence against one maze artifact.
type PathResult struct {
	ID        uuid.UUID
	ClientID  uuid.UUID // Zero when the request did not come through the API.
	IsValid   bool
	Seed      uint32
	MoveCount int
	Composed  bool // Receipt carries the maze receipt as a resolved assumption.
	Receipt   *zkvm.Receipt
	Profile   zkvm.Profile
	CreatedAt time.Time
}

// PathResultConfig holds parameters for creating a PathResult.
type PathResultConfig struct {
	ClientID  uuid.UUID
	IsValid   bool
	Seed      uint32
	MoveCount int
	Composed  bool
	Receipt   *zkvm.Receipt
	CreatedAt time.Time
}

// NewPathResult assigns a fresh id to the result.
func NewPathResult(config PathResultConfig) (*PathResult, error) {
	if config.Receipt == nil {
		return nil, ErrMissingReceipt
	}
	return &PathResult{
		ID:        uuid.New(),
		ClientID:  config.ClientID,
		IsValid:   config.IsValid,
		Seed:      config.Seed,
		MoveCount: config.MoveCount,
		Composed:  config.Composed,
		Receipt:   config.Receipt,
		Profile:   config.Receipt.Profile,
		CreatedAt: config.CreatedAt.UTC(),
	}, nil
}
