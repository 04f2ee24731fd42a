package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	mazeapi "github.com/beka-birhanu/vinom-zkmaze/api/maze"
	"github.com/spf13/cobra"
)

const rule = "======================================================================"

func newGenerateMazeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-maze <seed> [output_file]",
		Short: "Prove the maze of a seed and save the maze proof",
		Long: `Prove the maze of a seed and save the maze proof as JSON.
The output file defaults to <seed>_maze_proof.json.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := parseSeed(args[0])
			if err != nil {
				return err
			}
			output := fmt.Sprintf("%d_maze_proof.json", seed)
			if len(args) == 2 {
				output = args[1]
			}

			key, profile, err := flags.proverSettings()
			if err != nil {
				return err
			}
			pipeline, err := newLocalPipeline(key, profile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generating maze proof for seed %d (%s)\n", seed, profile)
			start := time.Now()
			artifact, err := pipeline.committer.Commit(cmd.Context(), seed, profile)
			if err != nil {
				return fmt.Errorf("generating maze proof: %w", err)
			}
			proof, err := mazeapi.NewMazeProof(artifact)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(proof, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("saving maze proof: %w", err)
			}

			fmt.Fprintf(out, "  Proving time: %s\n", time.Since(start).Round(time.Millisecond))
			fmt.Fprintf(out, "  Grid hash:    %s\n", proof.GridHash)
			fmt.Fprintf(out, "  Journal:      %d bytes\n", len(artifact.Receipt.Journal))
			fmt.Fprintf(out, "  Grid:         %dx%d cells\n", artifact.Grid.Rows(), artifact.Grid.Cols())
			fmt.Fprintf(out, "Maze proof saved to %s\n%s\n", output, rule)
			return nil
		},
	}
}

func parseSeed(s string) (uint32, error) {
	seed, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid maze seed %q: must be an integer in [0, %d]", s, uint32(1<<32-1))
	}
	return uint32(seed), nil
}
