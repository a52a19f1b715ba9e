package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdxmph/tasks-tui/internal/db"
	"github.com/pdxmph/tasks-tui/internal/logging"
	"github.com/pdxmph/tasks-tui/internal/server"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var (
		addr   string
		dbPath string
		seed   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local task API backed by SQLite",
		Long: `Run a local task API backed by SQLite.

Examples:
  tasks-tui serve --seed
  tasks-tui serve --addr :9000 --db /tmp/tasks.db
  tasks-tui --base-url http://localhost:9000/api`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("db") {
				dbPath = a.cfg.Server.DBPath
			}

			logger, closer, err := a.logger(logging.ModeConsole)
			if err != nil {
				return err
			}
			defer closer.Close()

			database, err := db.Open(dbPath, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			ctx := cmd.Context()
			if seed {
				n, err := database.Seed(ctx, time.Now())
				if err != nil {
					return err
				}
				logger.Info().Int("count", n).Msg("seeded tasks")
			}

			httpServer := &http.Server{
				Addr:    addr,
				Handler: server.New(database, logger).Handler(),
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", addr).Str("db", dbPath).Msg("starting server")
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server stopped unexpectedly: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down server: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8000)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default from config)")
	cmd.Flags().BoolVar(&seed, "seed", false, "insert sample tasks into an empty database")
	return cmd
}
