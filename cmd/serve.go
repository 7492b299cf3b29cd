package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/stardust-blast/assets"
	"github.com/robalobadob/stardust-blast/internal/database"
	"github.com/robalobadob/stardust-blast/internal/httpserver"
	"github.com/robalobadob/stardust-blast/internal/store"
)

const (
	pruneEvery = 10 * time.Minute
	sessionTTL = 24 * time.Hour
)

var servePort string

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP game service",
		Long: `Serve the JSON game API, daily challenge and player accounts.

Examples:
  stardust serve
  stardust serve --port 8080
  DB_PATH=/var/lib/stardust.db stardust serve`,
		RunE: runServe,
	}
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Listen port (default $PORT or 5175)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != "" {
		cfg.Port = servePort
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	go pruneSessions(ctx, mem)

	srv := httpserver.New(mem, db, cfg)
	log.Info().Str("port", cfg.Port).Str("db", cfg.DBPath).Msg("starting stardust server")
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// pruneSessions drops idle boards until ctx ends.
func pruneSessions(ctx context.Context, mem *store.Memory) {
	ticker := time.NewTicker(pruneEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := mem.Prune(now.Add(-sessionTTL)); n > 0 {
				log.Info().Int("pruned", n).Int("live", mem.Len()).Msg("pruned idle sessions")
			}
		}
	}
}
