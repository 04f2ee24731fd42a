package repo

import (
	"context"
	"fmt"
	"sync"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/google/uuid"
)

var (
	_ i.ArtifactRepo   = &MemoryArtifactRepo{}
	_ i.PathResultRepo = &MemoryPathResultRepo{}
)

// MemoryArtifactRepo keeps artifacts in process, in the same document form as
// ArtifactRepo. It backs the command line.
type MemoryArtifactRepo struct {
	mu   sync.RWMutex
	docs map[uint32]*artifactDoc
}

func NewMemoryArtifactRepo() *MemoryArtifactRepo {
	return &MemoryArtifactRepo{docs: make(map[uint32]*artifactDoc)}
}

// Save inserts an artifact. A seed is stored once.
func (r *MemoryArtifactRepo) Save(_ context.Context, a *dmn.MazeArtifact) error {
	doc, err := toArtifactDoc(a)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[a.Seed]; ok {
		return fmt.Errorf("%w: artifact of seed %d", dmn.ErrConflict, a.Seed)
	}
	r.docs[a.Seed] = doc
	return nil
}

// BySeed retrieves the artifact of seed with its grid regenerated.
func (r *MemoryArtifactRepo) BySeed(_ context.Context, seed uint32) (*dmn.MazeArtifact, error) {
	r.mu.RLock()
	doc, ok := r.docs[seed]
	r.mu.RUnlock()
	if !ok {
		return nil, dmn.ErrNotFound
	}
	return doc.artifact()
}

// MemoryPathResultRepo keeps path results in process.
type MemoryPathResultRepo struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*pathResultDoc
}

func NewMemoryPathResultRepo() *MemoryPathResultRepo {
	return &MemoryPathResultRepo{docs: make(map[uuid.UUID]*pathResultDoc)}
}

// Save inserts a path result.
func (r *MemoryPathResultRepo) Save(_ context.Context, result *dmn.PathResult) error {
	doc, err := toPathResultDoc(result)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[result.ID]; ok {
		return fmt.Errorf("%w: path result %s", dmn.ErrConflict, result.ID)
	}
	r.docs[result.ID] = doc
	return nil
}

// ByID retrieves a path result by its ID.
func (r *MemoryPathResultRepo) ByID(_ context.Context, id uuid.UUID) (*dmn.PathResult, error) {
	r.mu.RLock()
	doc, ok := r.docs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, dmn.ErrNotFound
	}
	return doc.result()
}
