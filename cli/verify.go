package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	mazeapi "github.com/beka-birhanu/vinom-zkmaze/api/maze"
	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
	"github.com/beka-birhanu/vinom-zkmaze/service"
	"github.com/spf13/cobra"
)

// MaxMovesFileBytes bounds the size of a moves file.
const MaxMovesFileBytes = 10_000_000

var (
	ErrPathRejected   = errors.New("path did not reach the goal")
	ErrMovesFile      = errors.New("invalid moves file")
	ErrMovesFileLarge = errors.New("moves file is too large")
)

func newVerifyPathCmd(flags *globalFlags) *cobra.Command {
	var (
		output  string
		compose bool
	)
	cmd := &cobra.Command{
		Use:   "verify-path <maze_proof_file> <moves_file>",
		Short: "Prove a move sequence against a maze proof",
		Long: `Prove a move sequence against a maze proof. The moves file holds a JSON array of
directions, each a number (0 North, 1 East, 2 South, 3 West) or a name such as "N" or "east".
The command fails when the path does not reach the goal.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			proof, err := loadMazeProof(args[0])
			if err != nil {
				return err
			}
			moves, err := loadMoves(args[1])
			if err != nil {
				return err
			}

			key, fallback, err := flags.proverSettings()
			if err != nil {
				return err
			}
			pipeline, err := newLocalPipeline(key, fallback, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Verifying %d moves against the maze of seed %d\n", len(moves), proof.MazeSeed)

			receipt, err := proof.ReceiptValue()
			if err != nil {
				return err
			}
			artifact, err := pipeline.committer.FromReceipt(cmd.Context(), receipt)
			if err != nil {
				return fmt.Errorf("maze proof: %w", err)
			}
			grid, err := proof.Grid()
			if err != nil {
				return fmt.Errorf("maze proof: %w", err)
			}

			req := service.VerifyRequest{Artifact: artifact, Grid: grid, Moves: moves, Compose: compose}
			if flags.profile != "" {
				profile, err := flags.resolveProfile("")
				if err != nil {
					return err
				}
				req.Profile = &profile
			}

			start := time.Now()
			result, err := pipeline.verifier.Verify(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("verifying path: %w", err)
			}
			fmt.Fprintf(out, "  Proving time: %s\n", time.Since(start).Round(time.Millisecond))

			if output != "" {
				if err := savePathProof(result, output); err != nil {
					return err
				}
				fmt.Fprintf(out, "  Path proof saved to %s\n", output)
			}
			if !result.IsValid {
				fmt.Fprintf(out, "Path verification failed\n%s\n", rule)
				return fmt.Errorf("%w: seed %d", ErrPathRejected, result.Seed)
			}
			fmt.Fprintf(out, "Path verification succeeded for seed %d\n%s\n", result.Seed, rule)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "save the path proof as JSON to this file")
	cmd.Flags().BoolVar(&compose, "compose", true, "resolve the maze receipt inside the path receipt")
	return cmd
}

func savePathProof(result *dmn.PathResult, path string) error {
	proof, err := mazeapi.NewPathProof(result)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(proof, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving path proof: %w", err)
	}
	return nil
}

func loadMazeProof(path string) (*mazeapi.MazeProof, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading maze proof: %w", err)
	}
	var proof mazeapi.MazeProof
	if err := json.Unmarshal(data, &proof); err != nil {
		return nil, fmt.Errorf("loading maze proof %s: %w", path, err)
	}
	return &proof, nil
}

func loadMoves(path string) ([]maze.Direction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading moves: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxMovesFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("loading moves: %w", err)
	}
	if len(data) > MaxMovesFileBytes {
		return nil, fmt.Errorf("%w: max %d bytes", ErrMovesFileLarge, MaxMovesFileBytes)
	}
	return parseMoves(data)
}

// parseMoves decodes a JSON array whose elements are direction numbers or names.
func parseMoves(data []byte) ([]maze.Direction, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMovesFile, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: moves array is empty", ErrMovesFile)
	}
	if len(raw) > service.MaxTransportMoves {
		return nil, fmt.Errorf("%w: %d moves (max %d)", service.ErrMoveSequenceTooLong, len(raw), service.MaxTransportMoves)
	}

	moves := make([]maze.Direction, len(raw))
	for idx, elem := range raw {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			return nil, fmt.Errorf("%w: move at %d is null", ErrMovesFile, idx)
		}
		var n int
		if err := json.Unmarshal(elem, &n); err == nil {
			if n < 0 || n > 255 {
				return nil, fmt.Errorf("%w: move %d at %d", ErrMovesFile, n, idx)
			}
			moves[idx] = maze.Direction(n)
			continue
		}
		var name string
		if err := json.Unmarshal(elem, &name); err != nil {
			return nil, fmt.Errorf("%w: move at %d is neither a number nor a name", ErrMovesFile, idx)
		}
		d, err := maze.ParseDirection(name)
		if err != nil {
			return nil, fmt.Errorf("%w: move at %d: %w", ErrMovesFile, idx, err)
		}
		moves[idx] = d
	}
	return moves, nil
}
