package zkvm

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	echoImage   = NewImageID("echo", "1")
	relayImage  = NewImageID("relay", "1")
	looperImage = NewImageID("looper", "1")
)

// echo commits its u32 input.
func echo(env *GuestEnv) error {
	v, err := env.ReadU32()
	if err != nil {
		return err
	}
	env.Commit(binary.LittleEndian.AppendUint32(nil, v))
	return nil
}

// relay verifies an echo journal given as input and commits it again.
func relay(env *GuestEnv) error {
	journal, err := env.ReadSlice(4)
	if err != nil {
		return err
	}
	if err := env.Verify(echoImage, journal); err != nil {
		return err
	}
	env.Commit(journal)
	return nil
}

func looper(env *GuestEnv) error {
	for {
		if err := env.Charge(1000); err != nil {
			return err
		}
	}
}

func newTestProver(t *testing.T, opts ...Option) *LocalProver {
	t.Helper()
	opts = append([]Option{
		WithProgram(echoImage, echo),
		WithProgram(relayImage, relay),
		WithProgram(looperImage, looper),
	}, opts...)
	p, err := NewLocalProver([]byte("test-key"), opts...)
	require.NoError(t, err)
	return p
}

func TestProfile(t *testing.T) {
	for in, want := range map[string]Profile{
		"fast": Fast, "composite": Fast,
		"balanced": Balanced, "SUCCINCT": Balanced,
		"small": Small, " groth16 ": Small,
	} {
		got, err := ParseProfile(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseProfile("medium")
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.Equal(t, Balanced, DefaultProfile)
	assert.False(t, Profile(0).Valid())

	text, err := Small.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "small", string(text))
	_, err = Profile(9).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestImageID(t *testing.T) {
	a := NewImageID("maze-gen", "1.0.0")
	assert.Equal(t, a, NewImageID("maze-gen", "1.0.0"))
	assert.NotEqual(t, a, NewImageID("maze-gen", "1.0.1"))
	assert.NotEqual(t, a, NewImageID("path-verify", "1.0.0"))
	assert.False(t, a.IsZero())

	parsed, err := ParseImageID(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)

	_, err = ParseImageID("abcd")
	assert.ErrorIs(t, err, ErrInvalidImageID)
	_, err = ParseImageID("not hex")
	assert.ErrorIs(t, err, ErrInvalidImageID)
}

func TestGuestEnv(t *testing.T) {
	env := NewExecutorEnv().WriteU32(0xdeadbeef).WriteU16(500).WriteSlice([]byte{1, 2, 3})
	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde, 0xf4, 0x01, 1, 2, 3}, env.Input())

	g := newGuestEnv(context.Background(), env.Input(), 0)
	v32, err := g.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v32)
	v16, err := g.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(500), v16)

	_, err = g.ReadSlice(4)
	assert.ErrorIs(t, err, ErrInputExhausted)
	rest, err := g.ReadSlice(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, rest)
	_, err = g.ReadU16()
	assert.ErrorIs(t, err, ErrInputExhausted)
	assert.Equal(t, uint64(9), g.Cycles())

	require.NoError(t, g.Verify(echoImage, []byte{1}))
	assert.Equal(t, []Claim{ClaimOf(echoImage, []byte{1})}, g.Pending())
}

func TestReceiptBinary(t *testing.T) {
	r := &Receipt{
		ImageID:     relayImage,
		Profile:     Fast,
		Journal:     []byte{1, 2, 3, 4},
		Assumptions: []Claim{ClaimOf(echoImage, []byte{1, 2, 3, 4})},
		Seal:        []byte{9, 9, 9},
	}

	raw, err := r.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, raw, 2+1+32+4+4+2+64+4+3)
	assert.Equal(t, []byte{1, 0, byte(Fast)}, raw[:3])

	var back Receipt
	require.NoError(t, back.UnmarshalBinary(raw))
	assert.Equal(t, *r, back)

	t.Run("every truncation is malformed", func(t *testing.T) {
		for n := 0; n < len(raw); n++ {
			var out Receipt
			assert.ErrorIs(t, out.UnmarshalBinary(raw[:n]), ErrMalformedReceipt, "prefix %d", n)
		}
	})

	t.Run("trailing bytes", func(t *testing.T) {
		var out Receipt
		assert.ErrorIs(t, out.UnmarshalBinary(append(raw, 0)), ErrMalformedReceipt)
	})

	t.Run("unknown version and profile", func(t *testing.T) {
		bad := append([]byte(nil), raw...)
		bad[0] = 2
		var out Receipt
		assert.ErrorIs(t, out.UnmarshalBinary(bad), ErrMalformedReceipt)

		bad = append([]byte(nil), raw...)
		bad[2] = 0
		assert.ErrorIs(t, out.UnmarshalBinary(bad), ErrMalformedReceipt)
	})

	t.Run("huge declared lengths", func(t *testing.T) {
		bad := append([]byte(nil), raw[:35]...)
		bad = binary.LittleEndian.AppendUint32(bad, 0xffffffff)
		var out Receipt
		assert.ErrorIs(t, out.UnmarshalBinary(bad), ErrMalformedReceipt)
	})

	t.Run("invalid profile does not encode", func(t *testing.T) {
		_, err := (&Receipt{}).MarshalBinary()
		assert.ErrorIs(t, err, ErrMalformedReceipt)
	})
}

func TestLocalProver(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects bad keys", func(t *testing.T) {
		_, err := NewLocalProver(nil)
		assert.ErrorIs(t, err, ErrInvalidKey)
		_, err = NewLocalProver(make([]byte, 65))
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("prove and verify", func(t *testing.T) {
		p := newTestProver(t)
		r, err := p.Prove(ctx, echoImage, NewExecutorEnv().WriteU32(42), Balanced)
		require.NoError(t, err)
		assert.Equal(t, []byte{42, 0, 0, 0}, r.Journal)
		assert.Empty(t, r.Assumptions)
		assert.Len(t, r.Seal, 32)
		require.NoError(t, p.Verify(ctx, r, echoImage))

		raw, err := r.MarshalBinary()
		require.NoError(t, err)
		var decoded Receipt
		require.NoError(t, decoded.UnmarshalBinary(raw))
		assert.NoError(t, p.Verify(ctx, &decoded, echoImage))
	})

	t.Run("is deterministic", func(t *testing.T) {
		p := newTestProver(t)
		a, err := p.Prove(ctx, echoImage, NewExecutorEnv().WriteU32(7), Small)
		require.NoError(t, err)
		b, err := p.Prove(ctx, echoImage, NewExecutorEnv().WriteU32(7), Small)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Len(t, a.Seal, compactSealSize)
	})

	t.Run("verify failures", func(t *testing.T) {
		p := newTestProver(t)
		r, err := p.Prove(ctx, echoImage, NewExecutorEnv().WriteU32(1), Balanced)
		require.NoError(t, err)

		assert.ErrorIs(t, p.Verify(ctx, r, relayImage), ErrImageMismatch)
		assert.ErrorIs(t, p.Verify(ctx, nil, echoImage), ErrNilReceipt)

		tampered := *r
		tampered.Journal = []byte{2, 0, 0, 0}
		assert.ErrorIs(t, p.Verify(ctx, &tampered, echoImage), ErrSealMismatch)

		tampered = *r
		tampered.Profile = Small
		assert.ErrorIs(t, p.Verify(ctx, &tampered, echoImage), ErrSealMismatch)

		other, err := NewLocalProver([]byte("other-key"), WithProgram(echoImage, echo))
		require.NoError(t, err)
		assert.ErrorIs(t, other.Verify(ctx, r, echoImage), ErrSealMismatch)
	})

	t.Run("assumptions resolve at finalisation", func(t *testing.T) {
		p := newTestProver(t)
		inner, err := p.Prove(ctx, echoImage, NewExecutorEnv().WriteU32(5), Balanced)
		require.NoError(t, err)

		env := NewExecutorEnv().WriteSlice(inner.Journal).AddAssumption(inner)
		assert.Len(t, env.Assumptions(), 1)
		outer, err := p.Prove(ctx, relayImage, env, Fast)
		require.NoError(t, err)
		assert.Empty(t, outer.Assumptions)
		assert.Len(t, outer.Seal, fastSealSize)
		assert.NoError(t, p.Verify(ctx, outer, relayImage))
	})

	t.Run("conditional receipt", func(t *testing.T) {
		p := newTestProver(t)
		inner, err := p.Prove(ctx, echoImage, NewExecutorEnv().WriteU32(5), Balanced)
		require.NoError(t, err)

		outer, err := p.Prove(ctx, relayImage, NewExecutorEnv().WriteSlice([]byte{5, 0, 0, 0}), Balanced)
		require.NoError(t, err)
		assert.Equal(t, []Claim{inner.Claim()}, outer.Assumptions)

		assert.ErrorIs(t, p.Verify(ctx, outer, relayImage), ErrUnresolvedAssumption)
		assert.NoError(t, p.Verify(ctx, outer, relayImage, inner))

		other, err := p.Prove(ctx, echoImage, NewExecutorEnv().WriteU32(6), Balanced)
		require.NoError(t, err)
		assert.ErrorIs(t, p.Verify(ctx, outer, relayImage, other), ErrUnresolvedAssumption)

		stripped := *outer
		stripped.Assumptions = nil
		assert.ErrorIs(t, p.Verify(ctx, &stripped, relayImage), ErrSealMismatch)
	})

	t.Run("forged assumption", func(t *testing.T) {
		p := newTestProver(t)
		forged := &Receipt{ImageID: echoImage, Profile: Balanced, Journal: []byte{5, 0, 0, 0}, Seal: make([]byte, 32)}
		env := NewExecutorEnv().WriteSlice(forged.Journal).AddAssumption(forged)
		_, err := p.Prove(ctx, relayImage, env, Balanced)
		assert.ErrorIs(t, err, ErrSealMismatch)

		outer, err := p.Prove(ctx, relayImage, NewExecutorEnv().WriteSlice(forged.Journal), Balanced)
		require.NoError(t, err)
		assert.ErrorIs(t, p.Verify(ctx, outer, relayImage, forged), ErrSealMismatch)
	})

	t.Run("guest errors", func(t *testing.T) {
		p := newTestProver(t)
		_, err := p.Prove(ctx, echoImage, NewExecutorEnv().WriteU16(1), Balanced)
		assert.ErrorIs(t, err, ErrInputExhausted)

		_, err = p.Prove(ctx, NewImageID("missing", "1"), nil, Balanced)
		assert.ErrorIs(t, err, ErrUnknownImage)

		_, err = p.Prove(ctx, echoImage, nil, Profile(0))
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("cycle budget", func(t *testing.T) {
		p := newTestProver(t, WithCycleBudget(10_000))
		_, err := p.Prove(ctx, looperImage, nil, Balanced)
		assert.ErrorIs(t, err, ErrCycleLimit)
	})

	t.Run("cancelled session", func(t *testing.T) {
		p := newTestProver(t, WithCycleBudget(0))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := p.Prove(cctx, looperImage, nil, Balanced)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
