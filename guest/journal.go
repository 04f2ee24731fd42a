package guest

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-zkmaze/maze"
)

// Journal sizes in bytes.
const (
	MazeJournalSize = 4 + maze.CommitmentSize
	PathJournalSize = 4 + 4
)

var (
	ErrJournalLength = errors.New("unexpected journal length")
	ErrJournalFlag   = errors.New("validity flag is neither 0 nor 1")
)

// MazeJournal is the public output of the maze generation program.
type MazeJournal struct {
	Seed       uint32
	Commitment maze.Commitment
}

// Encode returns seed_u32_le || commitment.
func (j MazeJournal) Encode() []byte {
	out := make([]byte, 0, MazeJournalSize)
	out = binary.LittleEndian.AppendUint32(out, j.Seed)
	return append(out, j.Commitment[:]...)
}

// DecodeMazeJournal parses the maze generation journal.
func DecodeMazeJournal(b []byte) (MazeJournal, error) {
	var j MazeJournal
	if len(b) != MazeJournalSize {
		return j, fmt.Errorf("%w: maze journal is %d bytes, want %d", ErrJournalLength, len(b), MazeJournalSize)
	}
	j.Seed = binary.LittleEndian.Uint32(b[:4])
	copy(j.Commitment[:], b[4:])
	return j, nil
}

// PathJournal is the public output of the path verification program.
type PathJournal struct {
	IsValid bool
	Seed    uint32
}

// Encode returns is_valid_u32_le || seed_u32_le.
func (j PathJournal) Encode() []byte {
	var valid uint32
	if j.IsValid {
		valid = 1
	}
	out := make([]byte, 0, PathJournalSize)
	out = binary.LittleEndian.AppendUint32(out, valid)
	return binary.LittleEndian.AppendUint32(out, j.Seed)
}

// DecodePathJournal parses the path verification journal. The validity flag must be 0 or 1.
func DecodePathJournal(b []byte) (PathJournal, error) {
	var j PathJournal
	if len(b) != PathJournalSize {
		return j, fmt.Errorf("%w: path journal is %d bytes, want %d", ErrJournalLength, len(b), PathJournalSize)
	}
	switch flag := binary.LittleEndian.Uint32(b[:4]); flag {
	case 0:
	case 1:
		j.IsValid = true
	default:
		return j, fmt.Errorf("%w: %d", ErrJournalFlag, flag)
	}
	j.Seed = binary.LittleEndian.Uint32(b[4:])
	return j, nil
}
