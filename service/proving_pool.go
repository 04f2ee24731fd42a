package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-zkmaze/guest"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"golang.org/x/sync/semaphore"
)

const (
	defaultProveWorkers = 2
	defaultProveTimeout = 2 * time.Minute
)

var _ i.Prover = &ProvingPool{}

// ProvingPool runs proving sessions on a fixed number of worker slots. Every call gets
// its own session. A call that outlives its timeout is abandoned: the caller gets
// ErrProveTimeout and the late receipt is dropped once the session returns.
type ProvingPool struct {
	backend i.Prover
	slots   *semaphore.Weighted
	timeout time.Duration
	logger  i.Logger
	metrics i.Metrics
}

// PoolConfig holds the parameters of a ProvingPool.
type PoolConfig struct {
	Backend i.Prover
	Workers int64
	Timeout time.Duration
	Logger  i.Logger
	Metrics i.Metrics // Optional.
}

// NewProvingPool creates a pool in front of c.Backend.
func NewProvingPool(c PoolConfig) (*ProvingPool, error) {
	if c.Backend == nil {
		return nil, errors.New("proving pool needs a backend")
	}
	if c.Logger == nil {
		return nil, errors.New("proving pool needs a logger")
	}
	if c.Workers <= 0 {
		c.Workers = defaultProveWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultProveTimeout
	}

	return &ProvingPool{
		backend: c.Backend,
		slots:   semaphore.NewWeighted(c.Workers),
		timeout: c.Timeout,
		logger:  c.Logger,
		metrics: c.Metrics,
	}, nil
}

type proveResult struct {
	receipt *zkvm.Receipt
	err     error
}

// Prove waits for a free slot and proves image within the pool timeout.
func (p *ProvingPool) Prove(ctx context.Context, image zkvm.ImageID, env *zkvm.ExecutorEnv, profile zkvm.Profile) (*zkvm.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	program := programName(image)
	start := time.Now()

	if err := p.slots.Acquire(ctx, 1); err != nil {
		err = p.contextError(ctx, err, true)
		p.observe(program, profile, start, err)
		return nil, err
	}

	done := make(chan proveResult, 1)
	go func() {
		defer p.slots.Release(1)
		r, err := p.backend.Prove(ctx, image, env, profile)
		done <- proveResult{receipt: r, err: err}
	}()

	select {
	case res := <-done:
		// A session failing because its context ended is treated as abandoned.
		if res.err == nil || ctx.Err() == nil {
			p.observe(program, profile, start, res.err)
			return res.receipt, res.err
		}
	case <-ctx.Done():
	}

	err := p.contextError(ctx, ctx.Err(), false)
	p.logger.Warning(fmt.Sprintf("abandoning %s session after %s: %s", program, time.Since(start).Round(time.Millisecond), err))
	p.observe(program, profile, start, err)
	return nil, err
}

// Verify checks a receipt within the pool timeout. Verification does not take a slot.
func (p *ProvingPool) Verify(ctx context.Context, r *zkvm.Receipt, image zkvm.ImageID, assumptions ...*zkvm.Receipt) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.backend.Verify(ctx, r, image, assumptions...); err != nil {
		if ctx.Err() != nil {
			return p.contextError(ctx, err, false)
		}
		return err
	}
	return nil
}

// contextError maps a failure caused by ctx to the pool errors. Cancellation while
// waiting for a slot is ErrPoolBusy; later cancellation is returned as is.
func (p *ProvingPool) contextError(ctx context.Context, err error, waiting bool) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w after %s", ErrProveTimeout, p.timeout)
	case waiting:
		return fmt.Errorf("%w: %w", ErrPoolBusy, err)
	default:
		return err
	}
}

func (p *ProvingPool) observe(program string, profile zkvm.Profile, start time.Time, err error) {
	if p.metrics != nil {
		p.metrics.ObserveProve(program, profile.String(), time.Since(start), err)
	}
}

func programName(image zkvm.ImageID) string {
	switch image {
	case guest.MazeGenImageID:
		return "maze-gen"
	case guest.PathVerifyImageID:
		return "path-verify"
	default:
		return "unknown"
	}
}
