package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdxmph/tasks-tui/internal/logging"
	"github.com/pdxmph/tasks-tui/internal/tui"
)

func (a *app) runTUI(route string) error {
	// stdout belongs to the UI, so logs go to the file
	logger, closer, err := a.logger(logging.ModeFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info().Str("backend", a.cfg.API.Backend).Str("base_url", a.cfg.API.BaseURL).Str("route", route).Msg("starting tui")

	s, release, err := a.store(logger)
	if err != nil {
		return err
	}
	defer release()

	model := tui.New(s, tui.Options{
		Route:          tui.ParseRoute(route),
		NoticeDuration: a.cfg.UI.NoticeDuration,
		Logger:         logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
