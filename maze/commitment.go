package maze

import (
	"encoding/hex"
	"errors"
	"fmt"

	sha256 "github.com/minio/sha256-simd"
)

// CommitmentSize is the size of a grid commitment in bytes.
const CommitmentSize = 32

var ErrInvalidCommitment = errors.New("invalid commitment encoding")

// Commitment is the SHA-256 digest of a canonical grid's row-major bytes.
type Commitment [CommitmentSize]byte

// Commit hashes canonical grid bytes.
func Commit(data []byte) Commitment {
	return Commitment(sha256.Sum256(data))
}

// Equal compares two commitments byte for byte.
func (c Commitment) Equal(other Commitment) bool {
	return c == other
}

// IsZero reports whether c is the zero value.
func (c Commitment) IsZero() bool {
	return c == Commitment{}
}

func (c Commitment) String() string {
	return hex.EncodeToString(c[:])
}

// ParseCommitment decodes a hex encoded commitment.
func ParseCommitment(s string) (Commitment, error) {
	var c Commitment
	raw, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("%w: %s", ErrInvalidCommitment, err)
	}
	if len(raw) != CommitmentSize {
		return c, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidCommitment, CommitmentSize, len(raw))
	}
	copy(c[:], raw)
	return c, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Commitment) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Commitment) UnmarshalText(text []byte) error {
	parsed, err := ParseCommitment(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
