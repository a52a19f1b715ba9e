package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdxmph/tasks-tui/internal/config"
)

// Mode selects where log output goes
type Mode int

const (
	// ModeConsole writes human readable lines to stderr
	ModeConsole Mode = iota
	// ModeFile writes JSON lines to the configured log file, leaving the
	// terminal to the UI
	ModeFile
)

// New builds the application logger. The returned closer releases the log
// file in ModeFile and is a no-op otherwise.
func New(cfg config.LogConfig, mode Mode, verbose bool) (zerolog.Logger, io.Closer, error) {
	zerolog.TimestampFieldName = "timestamp"

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	var (
		w      io.Writer
		closer io.Closer = nopCloser{}
	)
	switch mode {
	case ModeFile:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("opening log file: %w", err)
		}
		w, closer = f, f
	default:
		cw := zerolog.NewConsoleWriter()
		cw.Out = os.Stderr
		cw.TimeFormat = time.DateTime
		w = cw
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
