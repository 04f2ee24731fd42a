package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/guest"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
)

const mazeLockKeyFmt = "maze:seed_%d"

// MazeCommitter runs the maze commitment stage: it proves the maze of a seed and stores
// the sealed artifact. Artifacts never change, so a stored one is returned as is.
type MazeCommitter struct {
	prover         i.Prover
	artifacts      i.ArtifactRepo
	locker         i.Locker
	logger         i.Logger
	defaultProfile zkvm.Profile
	now            func() time.Time
}

// MazeCommitterConfig holds the dependencies of a MazeCommitter.
type MazeCommitterConfig struct {
	Prover         i.Prover
	Artifacts      i.ArtifactRepo
	Locker         i.Locker
	Logger         i.Logger
	DefaultProfile zkvm.Profile     // Balanced when zero.
	Now            func() time.Time // time.Now when nil.
}

// NewMazeCommitter creates a MazeCommitter.
func NewMazeCommitter(c MazeCommitterConfig) (*MazeCommitter, error) {
	if c.Prover == nil || c.Artifacts == nil || c.Locker == nil || c.Logger == nil {
		return nil, errors.New("maze committer needs a prover, an artifact repo, a locker and a logger")
	}
	if c.DefaultProfile == 0 {
		c.DefaultProfile = zkvm.DefaultProfile
	}
	if !c.DefaultProfile.Valid() {
		return nil, fmt.Errorf("%w: %d", zkvm.ErrInvalidProfile, c.DefaultProfile)
	}
	if c.Now == nil {
		c.Now = time.Now
	}

	return &MazeCommitter{
		prover:         c.Prover,
		artifacts:      c.Artifacts,
		locker:         c.Locker,
		logger:         c.Logger,
		defaultProfile: c.DefaultProfile,
		now:            c.Now,
	}, nil
}

// Commit returns the artifact of seed, proving it first when it was never committed.
// A zero profile selects the default one. The profile of an already stored artifact wins.
func (mc *MazeCommitter) Commit(ctx context.Context, seed uint32, profile zkvm.Profile) (*dmn.MazeArtifact, error) {
	if profile == 0 {
		profile = mc.defaultProfile
	}
	if !profile.Valid() {
		return nil, fmt.Errorf("%w: %d", zkvm.ErrInvalidProfile, profile)
	}

	if artifact, err := mc.stored(ctx, seed); artifact != nil || err != nil {
		return artifact, err
	}

	unlock, err := mc.locker.Lock(ctx, fmt.Sprintf(mazeLockKeyFmt, seed))
	if err != nil {
		return nil, fmt.Errorf("locking seed %d: %w", seed, err)
	}
	defer func() {
		if err := unlock(); err != nil {
			mc.logger.Warning(fmt.Sprintf("releasing lock of seed %d: %s", seed, err))
		}
	}()

	// Another holder may have committed the seed while we waited.
	if artifact, err := mc.stored(ctx, seed); artifact != nil || err != nil {
		return artifact, err
	}

	mc.logger.Info(fmt.Sprintf("proving maze of seed %d with profile %s", seed, profile))
	receipt, err := mc.prover.Prove(ctx, guest.MazeGenImageID, guest.MazeGenInput(seed), profile)
	if err != nil {
		return nil, backendError(ErrBackendProve, err)
	}

	artifact, err := mc.assemble(seed, receipt)
	if err != nil {
		return nil, err
	}

	if err := mc.artifacts.Save(ctx, artifact); err != nil {
		if errors.Is(err, dmn.ErrConflict) {
			return mc.artifacts.BySeed(ctx, seed)
		}
		return nil, err
	}
	mc.logger.Info(fmt.Sprintf("committed maze of seed %d: %s", seed, artifact.Commitment))
	return artifact, nil
}

// Artifact loads the stored artifact of seed. Returns dmn.ErrNotFound when the seed was
// never committed.
func (mc *MazeCommitter) Artifact(ctx context.Context, seed uint32) (*dmn.MazeArtifact, error) {
	return mc.artifacts.BySeed(ctx, seed)
}

// FromReceipt checks a maze receipt presented by a caller and rebuilds its artifact
// without storing it.
func (mc *MazeCommitter) FromReceipt(ctx context.Context, r *zkvm.Receipt) (*dmn.MazeArtifact, error) {
	if err := mc.prover.Verify(ctx, r, guest.MazeGenImageID); err != nil {
		return nil, verifyError(err)
	}
	journal, err := guest.DecodeMazeJournal(r.Journal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReceipt, err)
	}
	grid, err := maze.Regenerate(journal.Seed)
	if err != nil {
		return nil, err
	}
	artifact, err := dmn.NewMazeArtifact(journal.Seed, grid, journal.Commitment, r, mc.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReceipt, err)
	}
	return artifact, nil
}

func (mc *MazeCommitter) stored(ctx context.Context, seed uint32) (*dmn.MazeArtifact, error) {
	artifact, err := mc.artifacts.BySeed(ctx, seed)
	switch {
	case err == nil:
		return artifact, nil
	case errors.Is(err, dmn.ErrNotFound):
		return nil, nil
	default:
		return nil, err
	}
}

// assemble checks the journal of receipt against the locally regenerated grid.
func (mc *MazeCommitter) assemble(seed uint32, receipt *zkvm.Receipt) (*dmn.MazeArtifact, error) {
	journal, err := guest.DecodeMazeJournal(receipt.Journal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendProve, err)
	}
	if journal.Seed != seed {
		return nil, fmt.Errorf("%w: journal seed %d, want %d", ErrBackendProve, journal.Seed, seed)
	}

	grid, err := maze.Regenerate(seed)
	if err != nil {
		return nil, err
	}
	artifact, err := dmn.NewMazeArtifact(seed, grid, journal.Commitment, receipt, mc.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendProve, err)
	}
	return artifact, nil
}
