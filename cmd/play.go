package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/stardust-blast/internal/game"
	"github.com/robalobadob/stardust-blast/internal/terminal"
)

var (
	playSeed int64
	playCols int
	playRows int
)

func init() {
	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Play a board in the terminal.

Keys: arrows or hjkl move, space/enter select, ? hint, r new board, q quit.
The mouse works too: click a gem, then click a neighbour.

Examples:
  stardust play
  stardust play --seed 42
  stardust play --cols 10 --rows 9`,
		RunE: runPlay,
	}
	playCmd.Flags().Int64Var(&playSeed, "seed", 0, "Gem source seed (0 = random)")
	playCmd.Flags().IntVar(&playCols, "cols", 0, "Board width (default $BOARD_COLS)")
	playCmd.Flags().IntVar(&playRows, "rows", 0, "Board height (default $BOARD_ROWS)")

	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	logFile, err := terminalLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	opts := game.OptionsFromConfig(cfg.Board)
	opts.Seed = playSeed
	if playCols > 0 {
		opts.Cols = playCols
	}
	if playRows > 0 {
		opts.Rows = playRows
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}

	sound, err := terminal.NewSound()
	if err != nil {
		log.Warn().Err(err).Msg("audio unavailable, playing silently")
	}

	client := terminal.New(screen, opts, sound)
	runErr := client.Run(cmd.Context())
	sound.Close()
	screen.Fini()

	g := client.Session()
	fmt.Fprintf(cmd.OutOrStdout(), "score %d after %d moves (%s)\n", g.Score(), g.MovesUsed(), g.State())
	return runErr
}

// terminalLogger points the global logger at path, or silences it so log
// lines never land on the tcell screen.
func terminalLogger(path string) (*os.File, error) {
	if path == "" {
		log.Logger = zerolog.New(io.Discard)
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return f, nil
}
