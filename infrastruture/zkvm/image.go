package zkvm

import (
	"encoding/hex"
	"errors"
	"fmt"

	sha256 "github.com/minio/sha256-simd"
)

const ImageIDSize = 32

var ErrInvalidImageID = errors.New("invalid image id")

// ImageID identifies an attested program and its version.
type ImageID [ImageIDSize]byte

// NewImageID derives the identifier of program name at version.
// Any change to version yields an unrelated identifier.
func NewImageID(name, version string) ImageID {
	return ImageID(sha256.Sum256([]byte("vinom-zkmaze/" + name + "@" + version)))
}

func (id ImageID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the zero value.
func (id ImageID) IsZero() bool {
	return id == ImageID{}
}

// ParseImageID decodes a hex encoded image id.
func ParseImageID(s string) (ImageID, error) {
	var id ImageID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: %s", ErrInvalidImageID, err)
	}
	if len(raw) != ImageIDSize {
		return id, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidImageID, ImageIDSize, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ImageID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ImageID) UnmarshalText(text []byte) error {
	parsed, err := ParseImageID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
