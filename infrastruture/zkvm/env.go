package zkvm

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	sha256 "github.com/minio/sha256-simd"
)

var (
	ErrInputExhausted = errors.New("guest read past the end of its input")
	ErrCycleLimit     = errors.New("guest exceeded its cycle budget")
)

// ClaimSize is the encoded size of a Claim.
const ClaimSize = ImageIDSize + sha256.Size

// Claim states that the program ImageID ran to completion and committed a journal
// with digest JournalDigest.
type Claim struct {
	ImageID       ImageID
	JournalDigest [sha256.Size]byte
}

// ClaimOf builds the claim for a journal produced by image.
func ClaimOf(image ImageID, journal []byte) Claim {
	return Claim{ImageID: image, JournalDigest: sha256.Sum256(journal)}
}

func (c Claim) appendTo(b []byte) []byte {
	b = append(b, c.ImageID[:]...)
	return append(b, c.JournalDigest[:]...)
}

// Program is a guest program. It reads its input from env and commits its public
// output to the journal. Returned errors abort the proving session.
type Program func(env *GuestEnv) error

// ExecutorEnv is the host side input of a proving session: the private input stream
// and the receipts offered to resolve the guest's assumptions.
type ExecutorEnv struct {
	input       []byte
	assumptions []*Receipt
}

// NewExecutorEnv returns an empty environment.
func NewExecutorEnv() *ExecutorEnv {
	return &ExecutorEnv{}
}

// WriteU16 appends v little-endian.
func (e *ExecutorEnv) WriteU16(v uint16) *ExecutorEnv {
	e.input = binary.LittleEndian.AppendUint16(e.input, v)
	return e
}

// WriteU32 appends v little-endian.
func (e *ExecutorEnv) WriteU32(v uint32) *ExecutorEnv {
	e.input = binary.LittleEndian.AppendUint32(e.input, v)
	return e
}

// WriteSlice appends raw bytes.
func (e *ExecutorEnv) WriteSlice(b []byte) *ExecutorEnv {
	e.input = append(e.input, b...)
	return e
}

// AddAssumption offers r to resolve a claim the guest verifies.
func (e *ExecutorEnv) AddAssumption(r *Receipt) *ExecutorEnv {
	e.assumptions = append(e.assumptions, r)
	return e
}

// Assumptions returns the receipts offered to the session.
func (e *ExecutorEnv) Assumptions() []*Receipt {
	return append([]*Receipt(nil), e.assumptions...)
}

// Input returns a copy of the input stream.
func (e *ExecutorEnv) Input() []byte {
	return append([]byte(nil), e.input...)
}

// GuestEnv is what a running program sees: its input stream, its journal and the
// list of claims it still depends on.
type GuestEnv struct {
	ctx     context.Context
	input   []byte
	offset  int
	journal []byte
	pending []Claim
	cycles  uint64
	budget  uint64
}

func newGuestEnv(ctx context.Context, input []byte, budget uint64) *GuestEnv {
	return &GuestEnv{ctx: ctx, input: input, budget: budget}
}

// Charge accounts n cycles of work and fails once the budget is spent or the
// session is cancelled.
func (g *GuestEnv) Charge(n uint64) error {
	if err := g.ctx.Err(); err != nil {
		return err
	}
	g.cycles += n
	if g.budget > 0 && g.cycles > g.budget {
		return fmt.Errorf("%w: %d > %d", ErrCycleLimit, g.cycles, g.budget)
	}
	return nil
}

// Cycles returns the work accounted so far.
func (g *GuestEnv) Cycles() uint64 { return g.cycles }

// ReadSlice reads the next n input bytes.
func (g *GuestEnv) ReadSlice(n int) ([]byte, error) {
	if n < 0 || len(g.input)-g.offset < n {
		return nil, fmt.Errorf("%w: want %d bytes, %d left", ErrInputExhausted, n, len(g.input)-g.offset)
	}
	if err := g.Charge(uint64(n)); err != nil {
		return nil, err
	}
	out := g.input[g.offset : g.offset+n]
	g.offset += n
	return out, nil
}

// ReadU16 reads a little-endian uint16.
func (g *GuestEnv) ReadU16() (uint16, error) {
	b, err := g.ReadSlice(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (g *GuestEnv) ReadU32() (uint32, error) {
	b, err := g.ReadSlice(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Commit appends b to the public journal.
func (g *GuestEnv) Commit(b []byte) {
	g.journal = append(g.journal, b...)
}

// Verify records that the program relies on image having committed journal. The
// claim stays pending until the prover resolves it against an assumption receipt.
func (g *GuestEnv) Verify(image ImageID, journal []byte) error {
	if err := g.Charge(uint64(ClaimSize)); err != nil {
		return err
	}
	g.pending = append(g.pending, ClaimOf(image, journal))
	return nil
}

// Pending returns the claims recorded by Verify.
func (g *GuestEnv) Pending() []Claim {
	return append([]Claim(nil), g.pending...)
}

// Journal returns a copy of the committed journal.
func (g *GuestEnv) Journal() []byte {
	return append([]byte(nil), g.journal...)
}
