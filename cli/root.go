// Package cli is the command line of the maze proving pipeline: the HTTP server and
// offline commands that prove and verify on the local machine.
package cli

import (
	"fmt"
	"os"

	"github.com/beka-birhanu/vinom-zkmaze/config"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	profile string // Proving profile; DEFAULT_PROFILE when empty.
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "zkmaze",
		Short: "Verifiable maze generation and path verification",
		Long: `zkmaze proves that a maze was generated from a seed and that a move sequence
solves it, without revealing the moves.

Example workflow:
  zkmaze generate-maze 2918957128            (saves 2918957128_maze_proof.json)
  zkmaze solve 2918957128 > moves.json
  zkmaze verify-path 2918957128_maze_proof.json moves.json`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.profile, "profile", "", "proving profile: fast|balanced|small (default DEFAULT_PROFILE or balanced)")

	root.AddCommand(
		newServeCmd(flags),
		newGenerateMazeCmd(flags),
		newVerifyPathCmd(flags),
		newSolveCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveProfile returns the profile named by the flag, or fallback when the flag is
// empty.
func (f *globalFlags) resolveProfile(fallback string) (zkvm.Profile, error) {
	name := f.profile
	if name == "" {
		name = fallback
	}
	if name == "" {
		return zkvm.DefaultProfile, nil
	}
	return zkvm.ParseProfile(name)
}

// proverSettings reads the prover key and the profile of the offline commands.
func (f *globalFlags) proverSettings() ([]byte, zkvm.Profile, error) {
	key, fallback := config.ProverSettings()
	profile, err := f.resolveProfile(fallback)
	if err != nil {
		return nil, 0, err
	}
	return []byte(key), profile, nil
}
