package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mazeapi "github.com/beka-birhanu/vinom-zkmaze/api/maze"
	"github.com/beka-birhanu/vinom-zkmaze/guest"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
	"github.com/beka-birhanu/vinom-zkmaze/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	knownSeed       = "2918957128"
	knownCommitment = "d996c59b4c5d38f95740f07e1c1a485522e098a2b8e09d0ca276fac47cde2c82"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSolve(t *testing.T) {
	out, err := run(t, "solve", knownSeed)
	require.NoError(t, err)

	var moves []int
	require.NoError(t, json.Unmarshal([]byte(out), &moves))
	assert.Len(t, moves, 312)

	_, err = run(t, "solve", "maze")
	assert.Error(t, err)
}

func TestGenerateAndVerify(t *testing.T) {
	t.Setenv("PROVER_KEY", "cli-test-key")
	t.Setenv("DEFAULT_PROFILE", "balanced")
	dir := t.TempDir()
	proofPath := filepath.Join(dir, "maze_proof.json")

	out, err := run(t, "generate-maze", knownSeed, proofPath)
	require.NoError(t, err)
	assert.Contains(t, out, knownCommitment)

	data, err := os.ReadFile(proofPath)
	require.NoError(t, err)
	var proof mazeapi.MazeProof
	require.NoError(t, json.Unmarshal(data, &proof))
	assert.Equal(t, uint32(2918957128), proof.MazeSeed)
	assert.Equal(t, knownCommitment, proof.GridHash)
	assert.Equal(t, "balanced", proof.ReceiptKind)
	assert.Len(t, proof.GridData, 41)

	solution, err := run(t, "solve", knownSeed)
	require.NoError(t, err)
	movesPath := writeFile(t, dir, "moves.json", solution)

	t.Run("valid path", func(t *testing.T) {
		pathProof := filepath.Join(dir, "path_proof.json")
		out, err := run(t, "verify-path", proofPath, movesPath, "--output", pathProof)
		require.NoError(t, err)
		assert.Contains(t, out, "succeeded")

		data, err := os.ReadFile(pathProof)
		require.NoError(t, err)
		var p mazeapi.PathProof
		require.NoError(t, json.Unmarshal(data, &p))
		assert.True(t, p.IsValid)
		assert.True(t, p.Composed)
		assert.Equal(t, 312, p.MoveCount)
	})

	t.Run("profile override", func(t *testing.T) {
		pathProof := filepath.Join(dir, "small_path_proof.json")
		_, err := run(t, "verify-path", proofPath, movesPath, "--profile", "small", "-o", pathProof)
		require.NoError(t, err)

		data, err := os.ReadFile(pathProof)
		require.NoError(t, err)
		var p mazeapi.PathProof
		require.NoError(t, json.Unmarshal(data, &p))
		assert.Equal(t, "small", p.ReceiptKind)
	})

	t.Run("conditional receipt", func(t *testing.T) {
		pathProof := filepath.Join(dir, "conditional_path_proof.json")
		_, err := run(t, "verify-path", proofPath, movesPath, "--compose=false", "-o", pathProof)
		require.NoError(t, err)

		data, err := os.ReadFile(pathProof)
		require.NoError(t, err)
		var p mazeapi.PathProof
		require.NoError(t, json.Unmarshal(data, &p))
		assert.False(t, p.Composed)
	})

	t.Run("wrong path", func(t *testing.T) {
		wrong := writeFile(t, dir, "wrong.json", `["N", "east", 2]`)
		out, err := run(t, "verify-path", proofPath, wrong)
		assert.ErrorIs(t, err, ErrPathRejected)
		assert.Contains(t, out, "failed")
	})

	t.Run("receipt of another key", func(t *testing.T) {
		t.Setenv("PROVER_KEY", "another-key")
		_, err := run(t, "verify-path", proofPath, movesPath)
		assert.ErrorIs(t, err, service.ErrInvalidReceipt)
		assert.ErrorIs(t, err, zkvm.ErrSealMismatch)
	})

	t.Run("missing files", func(t *testing.T) {
		_, err := run(t, "verify-path", filepath.Join(dir, "absent.json"), movesPath)
		assert.ErrorIs(t, err, os.ErrNotExist)
		_, err = run(t, "verify-path", proofPath, filepath.Join(dir, "absent.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid profile", func(t *testing.T) {
		_, err := run(t, "generate-maze", "1", filepath.Join(dir, "x.json"), "--profile", "tiny")
		assert.ErrorIs(t, err, zkvm.ErrInvalidProfile)
	})
}

func TestParseMoves(t *testing.T) {
	t.Run("numbers and names", func(t *testing.T) {
		moves, err := parseMoves([]byte(`[0, 1, "S", "west", "2"]`))
		require.NoError(t, err)
		assert.Equal(t, []maze.Direction{maze.North, maze.East, maze.South, maze.West, maze.South}, moves)
	})

	t.Run("unknown numbers are kept for replay", func(t *testing.T) {
		moves, err := parseMoves([]byte(`[7]`))
		require.NoError(t, err)
		assert.Equal(t, []maze.Direction{7}, moves)
	})

	for name, input := range map[string]string{
		"not an array": `{"moves": [0]}`,
		"empty":        `[]`,
		"null move":    `[0, null]`,
		"out of range": `[256]`,
		"negative":     `[-1]`,
		"unknown name": `["up"]`,
		"nested":       `[[0]]`,
		"fractional":   `[1.5]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseMoves([]byte(input))
			assert.ErrorIs(t, err, ErrMovesFile)
		})
	}

	t.Run("too many", func(t *testing.T) {
		input := "[" + strings.Repeat("0,", service.MaxTransportMoves) + "0]"
		_, err := parseMoves([]byte(input))
		assert.ErrorIs(t, err, service.ErrMoveSequenceTooLong)
	})
}

func TestLoadMovesTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moves.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, os.Truncate(path, MaxMovesFileBytes+1))

	_, err := loadMoves(path)
	assert.ErrorIs(t, err, ErrMovesFileLarge)
}

func TestParseSeed(t *testing.T) {
	seed, err := parseSeed("4294967295")
	require.NoError(t, err)
	assert.Equal(t, uint32(4294967295), seed)

	for _, s := range []string{"-1", "4294967296", "seed", ""} {
		_, err := parseSeed(s)
		assert.Error(t, err, s)
	}
}

func TestCheckImagePin(t *testing.T) {
	assert.NoError(t, checkImagePin(""))
	assert.NoError(t, checkImagePin(guest.MazeGenImageID.String()))
	assert.ErrorIs(t, checkImagePin(guest.PathVerifyImageID.String()), ErrImagePin)
	assert.ErrorIs(t, checkImagePin("zz"), zkvm.ErrInvalidImageID)
}

func TestResolveProfile(t *testing.T) {
	f := &globalFlags{}
	p, err := f.resolveProfile("")
	require.NoError(t, err)
	assert.Equal(t, zkvm.DefaultProfile, p)

	p, err = f.resolveProfile("groth16")
	require.NoError(t, err)
	assert.Equal(t, zkvm.Small, p)

	f.profile = "fast"
	p, err = f.resolveProfile("small")
	require.NoError(t, err)
	assert.Equal(t, zkvm.Fast, p)
}
