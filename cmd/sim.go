package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/robalobadob/stardust-blast/internal/board"
	"github.com/robalobadob/stardust-blast/internal/game"
	"github.com/robalobadob/stardust-blast/internal/gem"
)

var (
	simGames int
	simSeed  int64
	simQuiet bool
)

func init() {
	simCmd := &cobra.Command{
		Use:   "sim",
		Short: "Autoplay boards headlessly",
		Long: `Play boards without a screen, always taking the first hinted swap.
Every accepted move is checked to leave no run of three on the board.

Examples:
  stardust sim
  stardust sim -n 100 --seed 7
  stardust sim -n 1000 --quiet`,
		RunE: runSim,
	}
	simCmd.Flags().IntVarP(&simGames, "games", "n", 10, "Number of games to play")
	simCmd.Flags().Int64Var(&simSeed, "seed", 0, "Seed of the first game; game i uses seed+i (0 = random)")
	simCmd.Flags().BoolVarP(&simQuiet, "quiet", "q", false, "Only print the summary")

	rootCmd.AddCommand(simCmd)
}

func runSim(cmd *cobra.Command, args []string) error {
	if simGames < 1 {
		return fmt.Errorf("games must be at least 1, got %d", simGames)
	}
	opts := game.OptionsFromConfig(cfg.Board)
	out := cmd.OutOrStdout()
	per := out
	if simQuiet {
		per = io.Discard
	}
	st, err := simulate(opts, simGames, simSeed, per)
	if err != nil {
		return err
	}
	st.print(out)
	return nil
}

// simStats aggregates a batch of autoplayed games.
type simStats struct {
	Games       int
	TotalScore  int
	Best        int
	Worst       int
	Moves       int
	Cascades    int
	MaxCascades int
	Stuck       int // games that ran out of matching swaps before moves
}

func (s simStats) print(w io.Writer) {
	mean := 0.0
	if s.Games > 0 {
		mean = float64(s.TotalScore) / float64(s.Games)
	}
	fmt.Fprintf(w, "games %d  mean %.1f  best %d  worst %d\n", s.Games, mean, s.Best, s.Worst)
	fmt.Fprintf(w, "moves %d  cascades %d  deepest %d  stuck %d\n", s.Moves, s.Cascades, s.MaxCascades, s.Stuck)
}

// simulate plays n games and writes one line per game to w.
func simulate(opts game.Options, n int, seed int64, w io.Writer) (simStats, error) {
	var st simStats
	for i := 0; i < n; i++ {
		o := opts
		if seed != 0 {
			o.Seed = seed + int64(i)
		}
		g := game.New(o)
		if o.StableStart {
			if err := checkStable(g.View()); err != nil {
				return st, fmt.Errorf("game %d opening: %w", i+1, err)
			}
		}

		stuck := false
		for g.State() == game.StatePlaying {
			a, b, ok := g.Hint()
			if !ok {
				stuck = true
				break
			}
			res, err := g.Swap(a, b)
			if err != nil && !errors.Is(err, game.ErrCascadeLimit) {
				return st, fmt.Errorf("game %d swap %s %s: %w", i+1, a, b, err)
			}
			if !res.Accepted {
				return st, fmt.Errorf("game %d: hinted swap %s %s was rejected", i+1, a, b)
			}
			if err == nil {
				if err := checkStable(g.View()); err != nil {
					return st, fmt.Errorf("game %d after %s %s: %w", i+1, a, b, err)
				}
			}
			st.Moves++
			st.Cascades += res.Cascades
			if res.Cascades > st.MaxCascades {
				st.MaxCascades = res.Cascades
			}
		}

		score := g.Score()
		if st.Games == 0 || score > st.Best {
			st.Best = score
		}
		if st.Games == 0 || score < st.Worst {
			st.Worst = score
		}
		st.Games++
		st.TotalScore += score
		if stuck {
			st.Stuck++
		}
		fmt.Fprintf(w, "game %3d  seed %-20d score %5d  moves %2d  %s\n", i+1, g.Seed, score, g.MovesUsed(), endState(g, stuck))
	}
	return st, nil
}

func endState(g *game.Session, stuck bool) string {
	if stuck {
		return "stuck"
	}
	return string(g.State())
}

// checkStable rebuilds the board from a view and fails if any run remains.
func checkStable(v game.View) error {
	kinds := make([][]gem.Kind, len(v.Grid))
	for y, row := range v.Grid {
		kinds[y] = make([]gem.Kind, len(row))
		for x, g := range row {
			kinds[y][x] = g.Kind
		}
	}
	b, err := board.FromKinds(kinds, gem.Sequence())
	if err != nil {
		return err
	}
	if m := b.FindMatches(); len(m) > 0 {
		return fmt.Errorf("board holds %d run(s):\n%s", len(m), b)
	}
	return nil
}
