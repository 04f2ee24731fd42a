package mazeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/beka-birhanu/vinom-zkmaze/api/identity"
	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/guest"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/service"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// Committer is the maze commitment stage.
type Committer interface {
	Commit(ctx context.Context, seed uint32, profile zkvm.Profile) (*dmn.MazeArtifact, error)
	Artifact(ctx context.Context, seed uint32) (*dmn.MazeArtifact, error)
	FromReceipt(ctx context.Context, r *zkvm.Receipt) (*dmn.MazeArtifact, error)
}

// Verifier is the path verification stage.
type Verifier interface {
	Verify(ctx context.Context, req service.VerifyRequest) (*dmn.PathResult, error)
	VerifyReceipt(ctx context.Context, r *zkvm.Receipt) (guest.PathJournal, error)
	Leaderboard(ctx context.Context, seed uint32, n int64) ([]service.LeaderboardEntry, error)
}

// CreditMeter charges proving requests to clients.
type CreditMeter interface {
	Consume(ctx context.Context, client uuid.UUID) error
}

// MazeController serves the proving pipeline.
type MazeController struct {
	committer Committer
	verifier  Verifier
	credits   CreditMeter
	logger    i.Logger
}

// NewMazeController initializes a MazeController.
func NewMazeController(c Committer, v Verifier, credits CreditMeter, logger i.Logger) (*MazeController, error) {
	if c == nil || v == nil || credits == nil || logger == nil {
		return nil, errors.New("maze controller needs a committer, a verifier, a credit meter and a logger")
	}
	return &MazeController{
		committer: c,
		verifier:  v,
		credits:   credits,
		logger:    logger,
	}, nil
}

// RegisterPublic registers public routes.
func (mc *MazeController) RegisterPublic(route *gin.RouterGroup) {
	mazes := route.Group("/maze")
	{
		mazes.GET("/:seed", mc.mazeProof)
		mazes.GET("/:seed/leaderboard", mc.leaderboard)
		mazes.POST("/verify-proof", mc.verifyProof)
	}
}

// RegisterProtected registers protected routes. Every one of them costs a credit.
func (mc *MazeController) RegisterProtected(route *gin.RouterGroup) {
	mazes := route.Group("/maze")
	{
		mazes.POST("/generate", mc.generate)
		mazes.POST("/verify-path", mc.verifyPath)
	}
}

// generate commits the maze of a seed.
func (mc *MazeController) generate(ctx *gin.Context) {
	var request GenerateMazeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, GenerateMazeResponse{Error: err.Error()})
		return
	}
	profile, err := parseProfile(request.Profile)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, GenerateMazeResponse{Error: err.Error()})
		return
	}
	if !mc.charge(ctx) {
		return
	}

	mc.logger.Info(fmt.Sprintf("generate-maze request for seed %d", *request.Seed))
	artifact, err := mc.committer.Commit(ctx.Request.Context(), *request.Seed, profile)
	if err != nil {
		mc.fail(ctx, err, func(msg string) any { return GenerateMazeResponse{Error: msg} })
		return
	}
	proof, err := NewMazeProof(artifact)
	if err != nil {
		mc.fail(ctx, err, func(msg string) any { return GenerateMazeResponse{Error: msg} })
		return
	}
	ctx.JSON(http.StatusOK, GenerateMazeResponse{Success: true, MazeProof: proof})
}

// mazeProof returns the stored artifact of a seed.
func (mc *MazeController) mazeProof(ctx *gin.Context) {
	seed, ok := seedParam(ctx)
	if !ok {
		return
	}
	artifact, err := mc.committer.Artifact(ctx.Request.Context(), seed)
	if err != nil {
		mc.fail(ctx, err, func(msg string) any { return GenerateMazeResponse{Error: msg} })
		return
	}
	proof, err := NewMazeProof(artifact)
	if err != nil {
		mc.fail(ctx, err, func(msg string) any { return GenerateMazeResponse{Error: msg} })
		return
	}
	ctx.JSON(http.StatusOK, GenerateMazeResponse{Success: true, MazeProof: proof})
}

// verifyPath proves a move sequence against a presented maze proof.
func (mc *MazeController) verifyPath(ctx *gin.Context) {
	failure := func(msg string) any { return VerifyPathResponse{Error: msg} }

	var request VerifyPathRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, VerifyPathResponse{Error: err.Error()})
		return
	}
	if len(request.Moves) > service.MaxTransportMoves {
		mc.fail(ctx, fmt.Errorf("%w: %d moves", service.ErrMoveSequenceTooLong, len(request.Moves)), failure)
		return
	}
	moves, err := Moves(request.Moves)
	if err != nil {
		mc.fail(ctx, err, failure)
		return
	}
	profile, err := parseProfile(request.Profile)
	if err != nil {
		mc.fail(ctx, err, failure)
		return
	}
	grid, err := request.MazeProof.Grid()
	if err != nil {
		mc.fail(ctx, err, failure)
		return
	}
	receipt, err := request.MazeProof.ReceiptValue()
	if err != nil {
		mc.fail(ctx, err, failure)
		return
	}
	artifact, err := mc.committer.FromReceipt(ctx.Request.Context(), receipt)
	if err != nil {
		mc.fail(ctx, err, failure)
		return
	}
	if !mc.charge(ctx) {
		return
	}

	client, _ := identity.ClientID(ctx)
	req := service.VerifyRequest{
		Artifact: artifact,
		Grid:     grid,
		Moves:    moves,
		Compose:  request.Compose == nil || *request.Compose,
		ClientID: client,
	}
	if profile != 0 {
		req.Profile = &profile
	}

	mc.logger.Info(fmt.Sprintf("verify-path request for seed %d with %d moves", artifact.Seed, len(moves)))
	result, err := mc.verifier.Verify(ctx.Request.Context(), req)
	if err != nil {
		mc.fail(ctx, err, failure)
		return
	}
	proof, err := NewPathProof(result)
	if err != nil {
		mc.fail(ctx, err, failure)
		return
	}
	ctx.JSON(http.StatusOK, VerifyPathResponse{Success: true, PathProof: proof})
}

// verifyProof checks a path proof and reports its journal.
func (mc *MazeController) verifyProof(ctx *gin.Context) {
	failure := func(msg string) any { return VerifyProofResponse{Error: msg} }

	var request VerifyProofRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, VerifyProofResponse{Error: err.Error()})
		return
	}
	receipt, err := request.PathProof.ReceiptValue()
	if err != nil {
		mc.fail(ctx, err, failure)
		return
	}
	journal, err := mc.verifier.VerifyReceipt(ctx.Request.Context(), receipt)
	if err != nil {
		mc.fail(ctx, err, failure)
		return
	}
	ctx.JSON(http.StatusOK, VerifyProofResponse{Success: true, IsValid: journal.IsValid, MazeSeed: journal.Seed})
}

// leaderboard lists the shortest verified solutions of a seed.
func (mc *MazeController) leaderboard(ctx *gin.Context) {
	seed, ok := seedParam(ctx)
	if !ok {
		return
	}
	limit := defaultLeaderboardLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxLeaderboardLimit {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be between 1 and %d", maxLeaderboardLimit)})
			return
		}
		limit = n
	}

	entries, err := mc.verifier.Leaderboard(ctx.Request.Context(), seed, int64(limit))
	if err != nil {
		mc.fail(ctx, err, func(msg string) any { return gin.H{"error": msg} })
		return
	}
	response := LeaderboardResponse{MazeSeed: seed, Entries: make([]LeaderboardEntry, len(entries))}
	for idx, e := range entries {
		response.Entries[idx] = LeaderboardEntry{Rank: idx + 1, Solver: e.Solver, Moves: e.Moves}
	}
	ctx.JSON(http.StatusOK, response)
}

// charge takes a credit from the authenticated client and answers the request when
// that fails.
func (mc *MazeController) charge(ctx *gin.Context) bool {
	client, ok := identity.ClientID(ctx)
	if !ok {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return false
	}
	if err := mc.credits.Consume(ctx.Request.Context(), client); err != nil {
		mc.fail(ctx, err, func(msg string) any { return gin.H{"error": msg} })
		return false
	}
	return true
}

func (mc *MazeController) fail(ctx *gin.Context, err error, body func(string) any) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		mc.logger.Error(fmt.Sprintf("%s %s: %s", ctx.Request.Method, ctx.FullPath(), err))
	}
	ctx.JSON(status, body(err.Error()))
}

func seedParam(ctx *gin.Context) (uint32, bool) {
	seed, err := strconv.ParseUint(ctx.Param("seed"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "seed must be an unsigned 32 bit integer"})
		return 0, false
	}
	return uint32(seed), true
}

// parseProfile maps an empty name to the zero profile, which selects the default.
func parseProfile(name string) (zkvm.Profile, error) {
	if name == "" {
		return 0, nil
	}
	return zkvm.ParseProfile(name)
}
