package cli

import (
	"io"

	"github.com/beka-birhanu/vinom-zkmaze/config"
	"github.com/beka-birhanu/vinom-zkmaze/guest"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/lock"
	logger "github.com/beka-birhanu/vinom-zkmaze/infrastruture/log"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/repo"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/service"
)

// localPipeline is both stages on an in-process prover and in-memory stores.
type localPipeline struct {
	committer *service.MazeCommitter
	verifier  *service.PathVerifier
}

func newLocalPipeline(key []byte, profile zkvm.Profile, logs io.Writer) (*localPipeline, error) {
	log, err := logger.New("ZKMAZE", config.ColorCyan, logs)
	if err != nil {
		return nil, err
	}
	prover, err := zkvm.NewLocalProver(key, guest.ProverOptions()...)
	if err != nil {
		return nil, err
	}
	pool, err := service.NewProvingPool(service.PoolConfig{Backend: prover, Workers: 1, Logger: log})
	if err != nil {
		return nil, err
	}

	artifacts := repo.NewMemoryArtifactRepo()
	committer, err := service.NewMazeCommitter(service.MazeCommitterConfig{
		Prover:         pool,
		Artifacts:      artifacts,
		Locker:         lock.NewLocalLocker(),
		Logger:         log,
		DefaultProfile: profile,
	})
	if err != nil {
		return nil, err
	}
	verifier, err := service.NewPathVerifier(service.PathVerifierConfig{
		Prover:    pool,
		Results:   repo.NewMemoryPathResultRepo(),
		Artifacts: artifacts,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	return &localPipeline{committer: committer, verifier: verifier}, nil
}
