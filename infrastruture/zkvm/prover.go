/*
Package zkvm runs attested guest programs and produces receipts for them.

LocalProver is a development backend: it executes registered programs natively and seals
each receipt with a keyed BLAKE2b MAC over the receipt claim. Anyone holding the prover key
can verify a receipt; it carries no zero-knowledge guarantee. The interface matches what a
real proving backend offers (prove, verify and assumptions resolved at finalisation), so a
remote backend can replace it without touching callers.
*/
package zkvm

import (
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"

	sha256 "github.com/minio/sha256-simd"
	"golang.org/x/crypto/blake2b"
)

const (
	// DefaultCycleBudget bounds the work of a single session.
	DefaultCycleBudget uint64 = 1 << 20

	compactSealSize = 16
	fastSealSize    = 2 * blake2b.Size256
	sealDomain      = "vinom-zkmaze/seal/v1"
	inputDomain     = "vinom-zkmaze/input/v1"

	maxAssumptionDepth = 8
)

var (
	ErrUnknownImage         = errors.New("no program registered for image")
	ErrUnresolvedAssumption = errors.New("assumption has no matching receipt")
	ErrImageMismatch        = errors.New("receipt was produced by a different image")
	ErrSealMismatch         = errors.New("receipt seal does not verify")
	ErrInvalidKey           = errors.New("invalid prover key")
	ErrNilReceipt           = errors.New("nil receipt")
)

// LocalProver proves registered programs in-process.
type LocalProver struct {
	key      []byte
	programs map[ImageID]Program
	budget   uint64
}

// Option configures a LocalProver.
type Option func(*LocalProver)

// WithCycleBudget sets the per-session cycle budget. Zero disables the limit.
func WithCycleBudget(budget uint64) Option {
	return func(p *LocalProver) {
		p.budget = budget
	}
}

// WithProgram registers program under image.
func WithProgram(image ImageID, program Program) Option {
	return func(p *LocalProver) {
		p.programs[image] = program
	}
}

// NewLocalProver creates a prover sealing with key, which must be 1 to 64 bytes.
func NewLocalProver(key []byte, opts ...Option) (*LocalProver, error) {
	if len(key) == 0 || len(key) > blake2b.Size {
		return nil, fmt.Errorf("%w: key must be 1 to %d bytes, got %d", ErrInvalidKey, blake2b.Size, len(key))
	}
	p := &LocalProver{
		key:      append([]byte(nil), key...),
		programs: make(map[ImageID]Program),
		budget:   DefaultCycleBudget,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Register adds program under image, replacing any previous registration.
// It must not be called concurrently with Prove.
func (p *LocalProver) Register(image ImageID, program Program) {
	p.programs[image] = program
}

// Prove runs the program registered for image over env and returns its receipt.
//
// Claims the program verified are resolved at finalisation against the receipts offered
// in env; each offered receipt must itself verify. Claims left without a matching receipt
// stay listed in the receipt's Assumptions, making it conditional.
func (p *LocalProver) Prove(ctx context.Context, image ImageID, env *ExecutorEnv, profile Profile) (*Receipt, error) {
	if !profile.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidProfile, uint8(profile))
	}
	program, ok := p.programs[image]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImage, image)
	}
	if env == nil {
		env = NewExecutorEnv()
	}

	input := env.Input()
	guest := newGuestEnv(ctx, input, p.budget)
	if err := program(guest); err != nil {
		return nil, fmt.Errorf("guest %s: %w", image, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unresolved, err := p.resolve(ctx, guest.Pending(), env.Assumptions())
	if err != nil {
		return nil, err
	}

	r := &Receipt{
		ImageID:     image,
		Profile:     profile,
		Journal:     guest.Journal(),
		Assumptions: unresolved,
	}
	r.Seal = p.seal(r, sha256.Sum256(input))
	return r, nil
}

// resolve verifies the offered receipt of every pending claim and returns the claims
// nothing was offered for.
func (p *LocalProver) resolve(ctx context.Context, pending []Claim, offered []*Receipt) ([]Claim, error) {
	var unresolved []Claim
	for _, claim := range pending {
		match := findReceipt(claim, offered)
		if match == nil {
			unresolved = append(unresolved, claim)
			continue
		}
		if err := p.Verify(ctx, match, claim.ImageID, offered...); err != nil {
			return nil, fmt.Errorf("assumption %s: %w", claim.ImageID, err)
		}
	}
	return unresolved, nil
}

func findReceipt(claim Claim, receipts []*Receipt) *Receipt {
	for _, r := range receipts {
		if r != nil && r.Claim() == claim {
			return r
		}
	}
	return nil
}

// Verify checks that r was produced by image and that its seal is authentic.
// A conditional receipt verifies only when assumptions holds a verifying receipt for
// each of its unresolved claims.
func (p *LocalProver) Verify(ctx context.Context, r *Receipt, image ImageID, assumptions ...*Receipt) error {
	return p.verify(ctx, r, image, assumptions, 0)
}

func (p *LocalProver) verify(ctx context.Context, r *Receipt, image ImageID, assumptions []*Receipt, depth int) error {
	if depth > maxAssumptionDepth {
		return fmt.Errorf("%w: assumption chain deeper than %d", ErrUnresolvedAssumption, maxAssumptionDepth)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if r == nil {
		return ErrNilReceipt
	}
	if !r.Profile.Valid() {
		return fmt.Errorf("%w: profile %d", ErrMalformedReceipt, uint8(r.Profile))
	}
	if r.ImageID != image {
		return fmt.Errorf("%w: want %s, got %s", ErrImageMismatch, image, r.ImageID)
	}
	if !p.sealMatches(r) {
		return ErrSealMismatch
	}

	for _, claim := range r.Assumptions {
		match := findReceipt(claim, assumptions)
		if match == nil {
			return fmt.Errorf("%w: image %s", ErrUnresolvedAssumption, claim.ImageID)
		}
		if err := p.verify(ctx, match, claim.ImageID, assumptions, depth+1); err != nil {
			return fmt.Errorf("assumption %s: %w", claim.ImageID, err)
		}
	}
	return nil
}

// seal MACs the receipt claim. Fast receipts also bind the input digest, Small receipts
// are truncated.
func (p *LocalProver) seal(r *Receipt, inputDigest [sha256.Size]byte) []byte {
	base := p.mac(sealDomain, r.claimBytes())
	switch r.Profile {
	case Fast:
		binding := p.mac(inputDomain, append(append([]byte(nil), base...), inputDigest[:]...))
		return append(base, binding...)
	case Small:
		return base[:compactSealSize]
	default:
		return base
	}
}

// sealMatches checks the claim part of a seal. The input binding of Fast seals can only
// be recomputed by the prover that saw the input.
func (p *LocalProver) sealMatches(r *Receipt) bool {
	base := p.mac(sealDomain, r.claimBytes())
	var want []byte
	switch r.Profile {
	case Fast:
		if len(r.Seal) != fastSealSize {
			return false
		}
		want = r.Seal[:len(base)]
	case Small:
		want, base = r.Seal, base[:compactSealSize]
	default:
		want = r.Seal
	}
	return len(want) == len(base) && subtle.ConstantTimeCompare(want, base) == 1
}

func (p *LocalProver) mac(domain string, msg []byte) []byte {
	h, err := blake2b.New256(p.key)
	if err != nil {
		// The key length is validated by NewLocalProver.
		panic(err)
	}
	h.Write([]byte(domain))
	h.Write(msg)
	return h.Sum(nil)
}

// claimBytes is the sealed part of a receipt.
func (r *Receipt) claimBytes() []byte {
	claim := r.Claim()
	b := make([]byte, 0, 1+ClaimSize+2+ClaimSize*len(r.Assumptions))
	b = append(b, byte(r.Profile))
	b = claim.appendTo(b)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(r.Assumptions)))
	for _, c := range r.Assumptions {
		b = c.appendTo(b)
	}
	return b
}
