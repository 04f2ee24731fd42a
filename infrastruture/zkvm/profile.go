package zkvm

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidProfile = errors.New("invalid proving profile")

// Profile trades proving time against receipt size.
type Profile uint8

const (
	Fast     Profile = iota + 1 // Quickest to prove, largest receipt.
	Balanced                    // Default.
	Small                       // Slowest to prove, most compact receipt.
)

// DefaultProfile is used when no profile is requested.
const DefaultProfile = Balanced

// Valid reports whether p names a known profile.
func (p Profile) Valid() bool {
	return p >= Fast && p <= Small
}

func (p Profile) String() string {
	switch p {
	case Fast:
		return "fast"
	case Balanced:
		return "balanced"
	case Small:
		return "small"
	default:
		return fmt.Sprintf("Profile(%d)", uint8(p))
	}
}

// ParseProfile accepts a profile name or the backend receipt kind it stands for.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast", "composite":
		return Fast, nil
	case "balanced", "succinct":
		return Balanced, nil
	case "small", "groth16":
		return Small, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidProfile, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Profile) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidProfile, uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Profile) UnmarshalText(text []byte) error {
	parsed, err := ParseProfile(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
