// Package mazeapi exposes the maze commitment and path verification stages over HTTP
// and defines the JSON proof documents shared with the command line.
package mazeapi

import (
	"encoding/base64"
	"errors"
	"fmt"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
)

var (
	ErrReceiptEncoding = errors.New("receipt is not valid base64")
	ErrCellValue       = errors.New("grid cell must be 0 or 1")
	ErrMoveValue       = errors.New("move must fit in a byte")
)

// MazeProof is the public document of a committed maze.
type MazeProof struct {
	MazeSeed    uint32  `json:"maze_seed"`
	GridHash    string  `json:"grid_hash"`
	GridData    [][]int `json:"grid_data"`
	Receipt     string  `json:"receipt"`
	ReceiptKind string  `json:"receipt_kind"`
}

// PathProof is the public document of a path verification.
type PathProof struct {
	ID          string `json:"id,omitempty"`
	IsValid     bool   `json:"is_valid"`
	MazeSeed    uint32 `json:"maze_seed"`
	MoveCount   int    `json:"move_count"`
	Composed    bool   `json:"composed"`
	Receipt     string `json:"receipt"`
	ReceiptKind string `json:"receipt_kind"`
}

// NewMazeProof builds the document of an artifact.
func NewMazeProof(a *dmn.MazeArtifact) (*MazeProof, error) {
	receipt, err := encodeReceipt(a.Receipt)
	if err != nil {
		return nil, err
	}
	rows := a.Grid.ToRows()
	data := make([][]int, len(rows))
	for r, row := range rows {
		data[r] = make([]int, len(row))
		for c, v := range row {
			data[r][c] = int(v)
		}
	}
	return &MazeProof{
		MazeSeed:    a.Seed,
		GridHash:    a.Commitment.String(),
		GridData:    data,
		Receipt:     receipt,
		ReceiptKind: a.Profile.String(),
	}, nil
}

// ReceiptValue decodes the receipt of the document.
func (p *MazeProof) ReceiptValue() (*zkvm.Receipt, error) {
	return decodeReceipt(p.Receipt)
}

// Grid decodes the grid of the document. The grid is untrusted.
func (p *MazeProof) Grid() (*maze.Grid, error) {
	rows := make([][]uint8, len(p.GridData))
	for r, row := range p.GridData {
		if len(row) > maze.MaxGridSide {
			return nil, fmt.Errorf("%w: row of %d cells", maze.ErrDimensionOverflow, len(row))
		}
		rows[r] = make([]uint8, len(row))
		for c, v := range row {
			if v != int(maze.Wall) && v != int(maze.Path) {
				return nil, fmt.Errorf("%w: %d at (%d,%d)", ErrCellValue, v, r, c)
			}
			rows[r][c] = uint8(v)
		}
	}
	return maze.NewGrid(rows)
}

// NewPathProof builds the document of a path result.
func NewPathProof(r *dmn.PathResult) (*PathProof, error) {
	receipt, err := encodeReceipt(r.Receipt)
	if err != nil {
		return nil, err
	}
	return &PathProof{
		ID:          r.ID.String(),
		IsValid:     r.IsValid,
		MazeSeed:    r.Seed,
		MoveCount:   r.MoveCount,
		Composed:    r.Composed,
		Receipt:     receipt,
		ReceiptKind: r.Profile.String(),
	}, nil
}

// ReceiptValue decodes the receipt of the document.
func (p *PathProof) ReceiptValue() (*zkvm.Receipt, error) {
	return decodeReceipt(p.Receipt)
}

// Moves converts raw move values. Values that are not directions are kept; replay
// rejects them.
func Moves(raw []int) ([]maze.Direction, error) {
	moves := make([]maze.Direction, len(raw))
	for idx, v := range raw {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: %d at %d", ErrMoveValue, v, idx)
		}
		moves[idx] = maze.Direction(v)
	}
	return moves, nil
}

// RawMoves is the inverse of Moves.
func RawMoves(moves []maze.Direction) []int {
	raw := make([]int, len(moves))
	for idx, d := range moves {
		raw[idx] = int(d)
	}
	return raw
}

func encodeReceipt(r *zkvm.Receipt) (string, error) {
	raw, err := r.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func decodeReceipt(s string) (*zkvm.Receipt, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReceiptEncoding, err)
	}
	var r zkvm.Receipt
	if err := r.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return &r, nil
}

// GenerateMazeRequest asks for the maze of a seed.
type GenerateMazeRequest struct {
	Seed    *uint32 `json:"seed" binding:"required"`
	Profile string  `json:"profile"`
}

// GenerateMazeResponse carries the maze proof or the error.
type GenerateMazeResponse struct {
	Success   bool       `json:"success"`
	MazeProof *MazeProof `json:"maze_proof,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// VerifyPathRequest asks for a path verification. Compose defaults to true.
type VerifyPathRequest struct {
	MazeProof *MazeProof `json:"maze_proof" binding:"required"`
	Moves     []int      `json:"moves"`
	Profile   string     `json:"profile"`
	Compose   *bool      `json:"compose"`
}

// VerifyPathResponse carries the path proof or the error.
type VerifyPathResponse struct {
	Success   bool       `json:"success"`
	PathProof *PathProof `json:"path_proof,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// VerifyProofRequest asks for the check of a path proof.
type VerifyProofRequest struct {
	PathProof *PathProof `json:"path_proof" binding:"required"`
}

// VerifyProofResponse reports the verified journal of a path proof.
type VerifyProofResponse struct {
	Success  bool   `json:"success"`
	IsValid  bool   `json:"is_valid"`
	MazeSeed uint32 `json:"maze_seed"`
	Error    string `json:"error,omitempty"`
}

// LeaderboardResponse lists the shortest verified solutions of a maze.
type LeaderboardResponse struct {
	MazeSeed uint32             `json:"maze_seed"`
	Entries  []LeaderboardEntry `json:"entries"`
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Solver string `json:"solver"`
	Moves  int    `json:"moves"`
}
