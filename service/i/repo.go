package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/google/uuid"
)

// ArtifactRepo defines the persistence operations for maze artifacts.
type ArtifactRepo interface {
	// Save inserts an artifact. Artifacts are immutable, saving an existing seed fails
	// with dmn.ErrConflict.
	Save(ctx context.Context, artifact *dmn.MazeArtifact) error

	// BySeed retrieves the artifact of seed, with its grid regenerated.
	// Returns dmn.ErrNotFound when the seed was never committed.
	BySeed(ctx context.Context, seed uint32) (*dmn.MazeArtifact, error)
}

// PathResultRepo defines the persistence operations for path results.
type PathResultRepo interface {
	Save(ctx context.Context, result *dmn.PathResult) error
	ByID(ctx context.Context, id uuid.UUID) (*dmn.PathResult, error)
}

// ClientRepo defines the persistence operations for API clients.
type ClientRepo interface {
	// Save inserts or updates a client.
	// A name already taken by another client fails with dmn.ErrConflict.
	Save(ctx context.Context, client *dmn.Client) error

	ByID(ctx context.Context, id uuid.UUID) (*dmn.Client, error)
	ByName(ctx context.Context, name string) (*dmn.Client, error)

	// ConsumeCredit atomically takes one credit from the client.
	// Returns dmn.ErrNoCredits when none is left.
	ConsumeCredit(ctx context.Context, id uuid.UUID) error
}
