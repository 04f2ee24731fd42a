package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/game"
	"github.com/beka-birhanu/vinom-zkmaze/guest"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/google/uuid"
)

const (
	// MaxTransportMoves is the longest move sequence accepted from a caller. Sequences
	// between guest.MaxMoves and this bound are proven and yield a negative verdict.
	MaxTransportMoves = 10000

	leaderboardKeyFmt = "leaderboard:seed_%d"
)

// VerifyRequest is one path verification.
type VerifyRequest struct {
	Artifact *dmn.MazeArtifact
	Grid     *maze.Grid // The grid the caller claims for the artifact. Untrusted.
	Moves    []maze.Direction
	Profile  *zkvm.Profile // Artifact profile when nil.
	Compose  bool          // Resolve the maze receipt inside the path receipt.
	ClientID uuid.UUID
}

// LeaderboardEntry is one verified solution of a maze.
type LeaderboardEntry struct {
	Solver string
	Moves  int
}

// PathVerifier runs the path verification stage.
type PathVerifier struct {
	prover      i.Prover
	results     i.PathResultRepo
	artifacts   i.ArtifactRepo
	leaderboard i.SortedSet
	logger      i.Logger
	metrics     i.Metrics
	now         func() time.Time
}

// PathVerifierConfig holds the dependencies of a PathVerifier.
type PathVerifierConfig struct {
	Prover      i.Prover
	Results     i.PathResultRepo
	Artifacts   i.ArtifactRepo
	Leaderboard i.SortedSet // Optional.
	Logger      i.Logger
	Metrics     i.Metrics        // Optional.
	Now         func() time.Time // time.Now when nil.
}

// NewPathVerifier creates a PathVerifier.
func NewPathVerifier(c PathVerifierConfig) (*PathVerifier, error) {
	if c.Prover == nil || c.Results == nil || c.Artifacts == nil || c.Logger == nil {
		return nil, errors.New("path verifier needs a prover, a result repo, an artifact repo and a logger")
	}
	if c.Now == nil {
		c.Now = time.Now
	}

	return &PathVerifier{
		prover:      c.Prover,
		results:     c.Results,
		artifacts:   c.Artifacts,
		leaderboard: c.Leaderboard,
		logger:      c.Logger,
		metrics:     c.Metrics,
		now:         c.Now,
	}, nil
}

// Verify proves whether req.Moves lead from start to goal on the maze of req.Artifact.
// A wrong grid or a wrong path is a negative verdict, not an error.
func (pv *PathVerifier) Verify(ctx context.Context, req VerifyRequest) (*dmn.PathResult, error) {
	if len(req.Moves) > MaxTransportMoves {
		return nil, fmt.Errorf("%w: %d moves (max %d)", ErrMoveSequenceTooLong, len(req.Moves), MaxTransportMoves)
	}
	if req.Artifact == nil || req.Artifact.Receipt == nil {
		return nil, ErrMissingArtifact
	}
	if req.Grid == nil {
		return nil, ErrMissingGrid
	}
	if req.Grid.Rows() > maze.MaxGridSide || req.Grid.Cols() > maze.MaxGridSide {
		return nil, fmt.Errorf("%w: grid %dx%d", maze.ErrDimensionOverflow, req.Grid.Rows(), req.Grid.Cols())
	}

	profile := req.Artifact.Profile
	if req.Profile != nil {
		profile = *req.Profile
	}
	if !profile.Valid() {
		return nil, fmt.Errorf("%w: %d", zkvm.ErrInvalidProfile, profile)
	}

	journal, err := guest.DecodeMazeJournal(req.Artifact.Receipt.Journal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	if journal.Seed != req.Artifact.Seed || req.Artifact.Receipt.ImageID != guest.MazeGenImageID {
		return nil, fmt.Errorf("%w: seed %d", ErrInvalidArtifact, req.Artifact.Seed)
	}

	env, err := guest.PathVerifyInput(guest.MazeGenImageID, journal, req.Grid, req.Moves)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMoveSequenceTooLong, err)
	}
	if req.Compose {
		env.AddAssumption(req.Artifact.Receipt)
	}

	receipt, err := pv.prover.Prove(ctx, guest.PathVerifyImageID, env, profile)
	if err != nil {
		return nil, backendError(ErrBackendProve, err)
	}
	verdict, err := guest.DecodePathJournal(receipt.Journal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendProve, err)
	}

	result, err := dmn.NewPathResult(dmn.PathResultConfig{
		ClientID:  req.ClientID,
		IsValid:   verdict.IsValid,
		Seed:      verdict.Seed,
		MoveCount: len(req.Moves),
		Composed:  len(receipt.Assumptions) == 0,
		Receipt:   receipt,
		CreatedAt: pv.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := pv.results.Save(ctx, result); err != nil {
		return nil, err
	}

	pv.logger.Info(fmt.Sprintf("path %s for seed %d: valid=%t moves=%d", result.ID, result.Seed, result.IsValid, result.MoveCount))
	if result.IsValid {
		pv.record(ctx, result, req.Grid, req.Moves)
	}
	if pv.metrics != nil {
		pv.metrics.ObserveVerdict(result.IsValid)
	}
	return result, nil
}

// record puts a valid solution on the leaderboard of its seed. The score is the number
// of moves needed to reach the goal, trailing moves excluded.
func (pv *PathVerifier) record(ctx context.Context, result *dmn.PathResult, grid *maze.Grid, moves []maze.Direction) {
	if pv.leaderboard == nil {
		return
	}
	solver := result.ClientID.String()
	if result.ClientID == uuid.Nil {
		solver = result.ID.String()
	}

	replay := game.Replay(grid, moves)
	key := fmt.Sprintf(leaderboardKeyFmt, result.Seed)
	if err := pv.leaderboard.Add(ctx, key, float64(replay.Consumed), solver); err != nil {
		pv.logger.Warning(fmt.Sprintf("leaderboard of seed %d: %s", result.Seed, err))
	}
}

// VerifyReceipt checks a path verification receipt and returns its journal. A
// conditional receipt is resolved with the stored artifact of its seed.
func (pv *PathVerifier) VerifyReceipt(ctx context.Context, r *zkvm.Receipt) (guest.PathJournal, error) {
	if r == nil {
		return guest.PathJournal{}, fmt.Errorf("%w: %w", ErrInvalidReceipt, zkvm.ErrNilReceipt)
	}
	journal, err := guest.DecodePathJournal(r.Journal)
	if err != nil {
		return guest.PathJournal{}, fmt.Errorf("%w: %w", ErrInvalidReceipt, err)
	}

	var assumptions []*zkvm.Receipt
	if len(r.Assumptions) > 0 {
		artifact, err := pv.artifacts.BySeed(ctx, journal.Seed)
		switch {
		case err == nil:
			assumptions = append(assumptions, artifact.Receipt)
		case errors.Is(err, dmn.ErrNotFound):
			pv.logger.Debug(fmt.Sprintf("no artifact resolves conditional receipt of seed %d", journal.Seed))
		default:
			return guest.PathJournal{}, fmt.Errorf("%w: %w", ErrBackendVerify, err)
		}
	}

	if err := pv.prover.Verify(ctx, r, guest.PathVerifyImageID, assumptions...); err != nil {
		return guest.PathJournal{}, verifyError(err)
	}
	return journal, nil
}

func verifyError(err error) error {
	switch {
	case errors.Is(err, zkvm.ErrSealMismatch),
		errors.Is(err, zkvm.ErrImageMismatch),
		errors.Is(err, zkvm.ErrUnresolvedAssumption),
		errors.Is(err, zkvm.ErrMalformedReceipt),
		errors.Is(err, zkvm.ErrInvalidProfile),
		errors.Is(err, zkvm.ErrNilReceipt):
		return fmt.Errorf("%w: %w", ErrInvalidReceipt, err)
	default:
		return backendError(ErrBackendVerify, err)
	}
}

// Leaderboard returns up to n verified solutions of seed, shortest first.
func (pv *PathVerifier) Leaderboard(ctx context.Context, seed uint32, n int64) ([]LeaderboardEntry, error) {
	if pv.leaderboard == nil {
		return []LeaderboardEntry{}, nil
	}
	members, err := pv.leaderboard.Lowest(ctx, fmt.Sprintf(leaderboardKeyFmt, seed), n)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, len(members))
	for idx, m := range members {
		entries[idx] = LeaderboardEntry{Solver: m.Member, Moves: int(m.Score)}
	}
	return entries, nil
}
