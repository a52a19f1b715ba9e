package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/pdxmph/tasks-tui/internal/flow"
	"github.com/pdxmph/tasks-tui/internal/form"
	"github.com/pdxmph/tasks-tui/internal/store"
	"github.com/pdxmph/tasks-tui/internal/tasks"
	"github.com/pdxmph/tasks-tui/internal/view"
)

// DefaultNoticeDuration is how long a toast stays up when Options leaves it unset
const DefaultNoticeDuration = 3 * time.Second

// Options configures a new Model
type Options struct {
	Route          Route
	NoticeDuration time.Duration
	Logger         zerolog.Logger
	Now            func() time.Time
}

// Model represents the main application state
type Model struct {
	store          *store.Store
	logger         zerolog.Logger
	now            func() time.Time
	noticeDuration time.Duration

	// Navigation. Every page change advances nav and replaces ctx, so
	// responses meant for an abandoned page are dropped.
	route  Route
	nav    uint64
	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int

	// List page
	sort    view.Sort
	rows    []tasks.Task
	table   table.Model
	loading bool
	loads   uint64
	spinner spinner.Model
	err     error
	del     flow.Delete

	// Add and edit pages
	form        form.Form
	title       textinput.Model
	description textarea.Model
	due         textinput.Model
	dueText     string
	dueErr      error
	focus       field
	editID      int64
	formErr     string
	formLoading bool
	saving      bool

	notice    *flow.Notice
	noticeSeq int
}

// navigateMsg asks the model to switch pages
type navigateMsg struct {
	route Route
}

// New creates a new application model. Nothing is loaded until Init runs.
func New(s *store.Store, opts Options) Model {
	if opts.NoticeDuration <= 0 {
		opts.NoticeDuration = DefaultNoticeDuration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	m := Model{
		store:          s,
		logger:         opts.Logger.With().Str("component", "tui").Logger(),
		now:            opts.Now,
		noticeDuration: opts.NoticeDuration,
		route:          opts.Route,
		ctx:            context.Background(),
		sort:           view.Default(),
		table:          newTable(),
		spinner:        sp,
	}
	m.title, m.description, m.due = newInputs()
	return m
}

// Init opens the starting route
func (m Model) Init() tea.Cmd {
	route := m.route
	return func() tea.Msg {
		return navigateMsg{route: route}
	}
}

// Route returns the page currently shown
func (m Model) Route() Route {
	return m.route
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case navigateMsg:
		return m.navigate(msg.route)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tasksLoadedMsg:
		return m.handleLoaded(msg)

	case taskFetchedMsg:
		return m.handleFetched(msg)

	case savedMsg:
		return m.handleSaved(msg)

	case deletedMsg:
		n := m.del.Settle(msg.err)
		if n.IsError() {
			m.logger.Warn().Err(n.Err).Int64("id", msg.id).Msg("delete failed")
		}
		m.refreshTable()
		return m, m.notify(n)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.shutdown()
			return m, tea.Quit
		}
		switch m.route.page {
		case pageList:
			return m.updateList(msg)
		case pageAdd, pageEdit:
			return m.updateForm(msg)
		default:
			return m.updateNotFound(msg)
		}
	}

	if m.onForm() {
		return m.updateInputs(msg)
	}
	return m, nil
}

// navigate switches pages, cancelling whatever the previous page had in flight
func (m Model) navigate(r Route) (Model, tea.Cmd) {
	m.shutdown()
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.nav++
	m.route = r
	m.err = nil
	m.formErr = ""
	m.saving = false
	m.formLoading = false
	m.loading = false
	m.logger.Debug().Str("route", r.Path()).Uint64("nav", m.nav).Msg("navigate")

	switch r.page {
	case pageList:
		m.refreshTable()
		load := m.loadTasks()
		return m, tea.Batch(load, m.spinner.Tick)
	case pageAdd:
		m.editID = 0
		return m.openForm(form.New(form.Defaults(m.now())))
	case pageEdit:
		m.editID = r.id
		m.formLoading = true
		return m, tea.Batch(m.fetchTask(r.id), m.spinner.Tick)
	}
	return m, nil
}

func (m *Model) shutdown() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m Model) busy() bool {
	return m.loading || m.formLoading || m.saving || m.del.State() == flow.Deleting
}

func (m Model) onForm() bool {
	return m.route.page == pageAdd || m.route.page == pageEdit
}

func (m *Model) resize() {
	height := m.height - 8
	if height < 3 {
		height = 3
	}
	m.table.SetHeight(height)
	m.table.SetColumns(m.columns())

	width := m.width - 20
	if width > 80 {
		width = 80
	}
	if width < 20 {
		width = 20
	}
	m.title.Width = width
	m.due.Width = width
	m.description.SetWidth(width)
}

// View renders the current page
func (m Model) View() string {
	var content string
	switch m.route.page {
	case pageList:
		content = m.renderList()
	case pageAdd, pageEdit:
		content = m.renderForm()
	default:
		content = m.renderNotFound()
	}

	if m.del.Active() {
		content = m.renderConfirm()
	}

	parts := []string{content}
	if m.notice != nil {
		parts = append(parts, m.renderNotice())
	}
	parts = append(parts, m.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderNotice() string {
	style := successToastStyle
	if m.notice.IsError() {
		style = errorToastStyle
	}
	return style.Render(m.notice.String())
}

func (m Model) renderNotFound() string {
	lines := []string{
		titleStyle.Render("Not Found"),
		"The page or task you were looking for does not exist.",
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) updateNotFound(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.shutdown()
		return m, tea.Quit
	case "esc", "enter":
		return m.navigate(RouteList)
	}
	return m, nil
}

// renderHelp renders the help line
func (m Model) renderHelp() string {
	if m.del.State() == flow.Deleting {
		return " Deleting..."
	}
	if m.del.Active() {
		return " y: delete • n/Esc: cancel"
	}

	switch m.route.page {
	case pageList:
		return " j/k: navigate • t/s/d: sort by title/status/due • a: add • e: edit • x: delete • r: reload • q: quit"
	case pageAdd, pageEdit:
		if m.saving {
			return " Saving..."
		}
		return " Tab/Shift+Tab: next/prev • ←/→: status • Ctrl+S: save • Ctrl+R: reset • Esc: back"
	}
	return " Esc/Enter: back to tasks • q: quit"
}
