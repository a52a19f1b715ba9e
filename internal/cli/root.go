// Package cli wires the terminal UI, one-shot task commands and the
// development API behind a single cobra command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	_ "github.com/pdxmph/tasks-tui/internal/api" // http backend
	"github.com/pdxmph/tasks-tui/internal/config"
	_ "github.com/pdxmph/tasks-tui/internal/db" // sqlite backend
	"github.com/pdxmph/tasks-tui/internal/logging"
	"github.com/pdxmph/tasks-tui/internal/store"
	"github.com/pdxmph/tasks-tui/internal/tasks"
)

// app carries the flags and configuration shared by every command
type app struct {
	configPath string
	backend    string
	baseURL    string
	verbose    bool

	cfg *config.Config
}

// Execute runs the command tree and exits non-zero on failure
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd(version).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. Without a subcommand it starts the
// terminal UI.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	var route string
	root := &cobra.Command{
		Use:           "tasks-tui",
		Short:         "Terminal client for a remote task list",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(route)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/tasks-tui/config.toml)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", fmt.Sprintf("task backend %v, overrides the config file", tasks.ListBackends()))
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "task API base URL, overrides the config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	root.Flags().StringVar(&route, "route", "/", "page to open: /, /add or /edit/ID")

	root.AddCommand(
		a.listCmd(),
		a.addCmd(),
		a.editCmd(),
		a.deleteCmd(),
		a.serveCmd(),
		a.configCmd(),
		versionCmd(version),
	)
	return root
}

func (a *app) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFrom(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if a.backend != "" {
		cfg.API.Backend = a.backend
	}
	if a.baseURL != "" {
		cfg.API.BaseURL = a.baseURL
	}
	a.cfg = cfg
	return nil
}

// logger builds the logger for a command; the closer must be released when
// the command returns
func (a *app) logger(mode logging.Mode) (zerolog.Logger, io.Closer, error) {
	return logging.New(a.cfg.Log, mode, a.verbose)
}

// store opens the configured backend; release must be called when done
func (a *app) store(logger zerolog.Logger) (s *store.Store, release func(), err error) {
	backend, err := tasks.OpenBackend(a.cfg.API.Backend, tasks.Settings{
		BaseURL: a.cfg.API.BaseURL,
		Timeout: a.cfg.API.Timeout,
		DBPath:  a.cfg.Server.DBPath,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, err
	}
	release = func() {
		if err := tasks.Close(backend); err != nil {
			logger.Warn().Err(err).Msg("closing backend")
		}
	}
	return store.New(backend, logger), release, nil
}

func versionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "tasks-tui %s\n", version)
			return nil
		},
	}
}
