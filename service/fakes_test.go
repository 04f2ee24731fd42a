package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/guest"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	knownSeed       = 2918957128
	knownCommitment = "d996c59b4c5d38f95740f07e1c1a485522e098a2b8e09d0ca276fac47cde2c82"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newLocalProver(t *testing.T) *zkvm.LocalProver {
	t.Helper()
	p, err := zkvm.NewLocalProver([]byte("service-test-key"), guest.ProverOptions()...)
	require.NoError(t, err)
	return p
}

type nopLogger struct{}

func (nopLogger) Debug(string)   {}
func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (*recordingLogger) Debug(string) {}
func (*recordingLogger) Info(string)  {}
func (*recordingLogger) Error(string) {}
func (l *recordingLogger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warnings...)
}

type memArtifacts struct {
	mu      sync.Mutex
	bySeed  map[uint32]*dmn.MazeArtifact
	saves   int
	loadErr error
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{bySeed: make(map[uint32]*dmn.MazeArtifact)}
}

func (m *memArtifacts) Save(_ context.Context, a *dmn.MazeArtifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bySeed[a.Seed]; ok {
		return dmn.ErrConflict
	}
	m.saves++
	m.bySeed[a.Seed] = a
	return nil
}

func (m *memArtifacts) BySeed(_ context.Context, seed uint32) (*dmn.MazeArtifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	a, ok := m.bySeed[seed]
	if !ok {
		return nil, dmn.ErrNotFound
	}
	return a, nil
}

type memResults struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*dmn.PathResult
}

func newMemResults() *memResults {
	return &memResults{byID: make(map[uuid.UUID]*dmn.PathResult)}
}

func (m *memResults) Save(_ context.Context, r *dmn.PathResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[r.ID] = r
	return nil
}

func (m *memResults) ByID(_ context.Context, id uuid.UUID) (*dmn.PathResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, dmn.ErrNotFound
	}
	return r, nil
}

type memClients struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*dmn.Client
}

func newMemClients() *memClients {
	return &memClients{byID: make(map[uuid.UUID]*dmn.Client)}
}

func (m *memClients) Save(_ context.Context, c *dmn.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.byID {
		if other.Name == c.Name && other.ID != c.ID {
			return dmn.ErrConflict
		}
	}
	clone := *c
	m.byID[c.ID] = &clone
	return nil
}

func (m *memClients) ByID(_ context.Context, id uuid.UUID) (*dmn.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, dmn.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *memClients) ByName(_ context.Context, name string) (*dmn.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.Name == name {
			clone := *c
			return &clone, nil
		}
	}
	return nil, dmn.ErrNotFound
}

func (m *memClients) ConsumeCredit(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return dmn.ErrNotFound
	}
	return c.ConsumeCredit()
}

type memSortedSet struct {
	mu     sync.Mutex
	sets   map[string]map[string]float64
	addErr error
}

func newMemSortedSet() *memSortedSet {
	return &memSortedSet{sets: make(map[string]map[string]float64)}
}

func (s *memSortedSet) Add(_ context.Context, key string, score float64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return s.addErr
	}
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]float64)
		s.sets[key] = set
	}
	if old, ok := set[member]; !ok || score < old {
		set[member] = score
	}
	return nil
}

func (s *memSortedSet) Lowest(_ context.Context, key string, n int64) ([]i.ScoredMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]i.ScoredMember, 0, len(s.sets[key]))
	for m, score := range s.sets[key] {
		members = append(members, i.ScoredMember{Member: m, Score: score})
	}
	sort.Slice(members, func(a, b int) bool {
		if members[a].Score != members[b].Score {
			return members[a].Score < members[b].Score
		}
		return members[a].Member < members[b].Member
	})
	if int64(len(members)) > n {
		members = members[:n]
	}
	return members, nil
}

func (s *memSortedSet) Count(_ context.Context, key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.sets[key]))
}

// keyLocker is an in-process Locker that records the keys it handed out.
type keyLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	keys  []string
	err   error
}

func newKeyLocker() *keyLocker {
	return &keyLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *keyLocker) Lock(_ context.Context, key string) (func() error, error) {
	l.mu.Lock()
	if l.err != nil {
		l.mu.Unlock()
		return nil, l.err
	}
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.keys = append(l.keys, key)
	l.mu.Unlock()

	m.Lock()
	return func() error {
		m.Unlock()
		return nil
	}, nil
}

func (l *keyLocker) Keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.keys...)
}

type observation struct {
	program, profile string
	err              error
}

type recordingMetrics struct {
	mu       sync.Mutex
	proves   []observation
	verdicts []bool
}

func (m *recordingMetrics) ObserveProve(program, profile string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proves = append(m.proves, observation{program: program, profile: profile, err: err})
}

func (m *recordingMetrics) ObserveVerdict(valid bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts = append(m.verdicts, valid)
}

// countingProver counts sessions and can fail or block them.
type countingProver struct {
	i.Prover
	mu      sync.Mutex
	proves  int
	failure error
	release chan struct{}
	started chan struct{}
}

func (p *countingProver) Prove(ctx context.Context, image zkvm.ImageID, env *zkvm.ExecutorEnv, profile zkvm.Profile) (*zkvm.Receipt, error) {
	p.mu.Lock()
	p.proves++
	failure := p.failure
	p.mu.Unlock()

	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failure != nil {
		return nil, failure
	}
	return p.Prover.Prove(ctx, image, env, profile)
}

func (p *countingProver) Proves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.proves
}

type fakeTokenizer struct{}

func (fakeTokenizer) Generate(claims map[string]any, ttl time.Duration) (string, error) {
	return fmt.Sprintf("%s|%s|%s", claims[ClaimClientID], claims[ClaimName], ttl), nil
}

func (fakeTokenizer) Decode(string) (map[string]any, error) {
	return nil, errors.New("not implemented")
}
