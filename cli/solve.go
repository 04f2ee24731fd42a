package cli

import (
	"encoding/json"
	"fmt"

	mazeapi "github.com/beka-birhanu/vinom-zkmaze/api/maze"
	"github.com/beka-birhanu/vinom-zkmaze/game"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
	"github.com/spf13/cobra"
)

func newSolveCmd() *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "solve <seed>",
		Short: "Print the shortest solution of the maze of a seed as a JSON moves array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := parseSeed(args[0])
			if err != nil {
				return err
			}
			grid, err := maze.Regenerate(seed)
			if err != nil {
				return err
			}
			moves, err := game.Solve(grid)
			if err != nil {
				return err
			}

			if show {
				fmt.Fprintln(cmd.ErrOrStderr(), grid)
			}
			data, err := json.Marshal(mazeapi.RawMoves(moves))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "draw the maze on stderr")
	return cmd
}
