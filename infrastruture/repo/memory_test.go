package repo

import (
	"context"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryArtifactRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryArtifactRepo()

	_, err := repo.BySeed(ctx, 3)
	assert.ErrorIs(t, err, dmn.ErrNotFound)

	grid, err := maze.Regenerate(3)
	require.NoError(t, err)
	a, err := dmn.NewMazeArtifact(3, grid, grid.Commitment(), mazeReceipt(t, 3), time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, a))
	assert.ErrorIs(t, repo.Save(ctx, a), dmn.ErrConflict)

	back, err := repo.BySeed(ctx, 3)
	require.NoError(t, err)
	assert.NotSame(t, a, back)
	assert.True(t, back.Grid.Equal(grid))
	assert.Equal(t, a.Commitment, back.Commitment)
}

func TestMemoryPathResultRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPathResultRepo()

	_, err := repo.ByID(ctx, uuid.New())
	assert.ErrorIs(t, err, dmn.ErrNotFound)

	result, err := dmn.NewPathResult(dmn.PathResultConfig{
		IsValid:   false,
		Seed:      9,
		MoveCount: 4,
		Receipt:   mazeReceipt(t, 9),
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, result))
	assert.ErrorIs(t, repo.Save(ctx, result), dmn.ErrConflict)

	back, err := repo.ByID(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, result, back)
}
