package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdxmph/tasks-tui/internal/flow"
	"github.com/pdxmph/tasks-tui/internal/store"
	"github.com/pdxmph/tasks-tui/internal/tasks"
	"github.com/pdxmph/tasks-tui/internal/view"
)

const (
	statusColumnWidth = 14
	dueColumnWidth    = 16
)

func newTable() table.Model {
	// d sorts by due date, so half-page moves keep only their ctrl bindings
	km := table.DefaultKeyMap()
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "½ page up"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "½ page down"))

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = selectedStyle

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(styles),
	)
	t.KeyMap = km
	return t
}

// columns sizes the table to the window and marks the active sort column
func (m Model) columns() []table.Column {
	width := m.width
	if width <= 0 {
		width = 100
	}
	rest := width - statusColumnWidth - dueColumnWidth - 10
	if rest < 20 {
		rest = 20
	}
	titleWidth := rest * 2 / 5

	return []table.Column{
		{Title: m.header("Title", view.KeyTitle), Width: titleWidth},
		{Title: "Description", Width: rest - titleWidth},
		{Title: m.header("Status", view.KeyStatus), Width: statusColumnWidth},
		{Title: m.header("Due Date", view.KeyDueDate), Width: dueColumnWidth},
	}
}

func (m Model) header(label string, k view.Key) string {
	if ind := m.sort.Indicator(k); ind != "" {
		return label + " " + ind
	}
	return label
}

// refreshTable re-projects the cached tasks under the current sort
func (m *Model) refreshTable() {
	m.rows = view.Project(m.store.Tasks(), m.sort)
	m.table.SetColumns(m.columns())

	rows := make([]table.Row, 0, len(m.rows))
	for _, t := range m.rows {
		rows = append(rows, table.Row{
			t.Title,
			firstLine(t.Description),
			t.Status.Label(),
			tasks.DisplayDue(t.DueDate),
		})
	}
	m.table.SetRows(rows)

	switch c := m.table.Cursor(); {
	case c < 0:
		m.table.SetCursor(0)
	case c >= len(rows):
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// selected returns the task under the cursor
func (m Model) selected() (tasks.Task, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rows) {
		return tasks.Task{}, false
	}
	return m.rows[c], true
}

func (m Model) handleLoaded(msg tasksLoadedMsg) (Model, tea.Cmd) {
	if msg.nav != m.nav || msg.load != m.loads {
		// a newer load is still running and owns the spinner
		return m, nil
	}
	m.loading = false
	switch {
	case msg.err == nil:
		m.err = nil
	case errors.Is(msg.err, store.ErrStale):
		// a removal landed mid-load; the cache already reflects it
	default:
		m.err = msg.err
	}
	m.refreshTable()
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.del.Active() {
		return m.updateConfirm(msg)
	}

	switch msg.String() {
	case "q":
		m.shutdown()
		return m, tea.Quit

	case "t":
		return m.sortBy(view.KeyTitle)
	case "s":
		return m.sortBy(view.KeyStatus)
	case "d":
		return m.sortBy(view.KeyDueDate)

	case "a":
		return m.navigate(RouteAdd)

	case "e", "enter":
		if t, ok := m.selected(); ok {
			return m.navigate(RouteEdit(t.ID))
		}
		return m, nil

	case "x":
		if t, ok := m.selected(); ok {
			if err := m.del.Request(t.ID); err != nil {
				m.logger.Debug().Err(err).Int64("id", t.ID).Msg("delete request ignored")
			}
		}
		return m, nil

	case "r":
		load := m.loadTasks()
		return m, tea.Batch(load, m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) sortBy(k view.Key) (Model, tea.Cmd) {
	var id int64
	if t, ok := m.selected(); ok {
		id = t.ID
	}
	m.sort = m.sort.Toggle(k)
	m.refreshTable()

	// keep the cursor on the same task
	for i, t := range m.rows {
		if t.ID == id {
			m.table.SetCursor(i)
			break
		}
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.del.State() == flow.Deleting {
		return m, nil
	}

	switch msg.String() {
	case "y", "Y":
		id, err := m.del.Confirm()
		if err != nil {
			return m, nil
		}
		return m, tea.Batch(m.removeTask(id), m.spinner.Tick)
	case "n", "N", "esc":
		m.del.Cancel()
	}
	return m, nil
}

func (m Model) renderList() string {
	heading := titleStyle.Render(fmt.Sprintf("Tasks (%d)", len(m.rows)))
	if m.loading {
		heading = lipgloss.JoinHorizontal(lipgloss.Top, heading, " ", m.spinner.View())
	}

	lines := []string{heading}
	if m.err != nil {
		lines = append(lines, errorStyle.Render("Failed to load tasks: "+m.err.Error()))
	}

	switch {
	case len(m.rows) > 0:
		lines = append(lines, borderStyle.Render(m.table.View()))
	case m.loading:
		lines = append(lines, labelStyle.Render("Loading tasks..."))
	default:
		lines = append(lines, labelStyle.Render("No tasks yet. Press a to add one."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderConfirm renders the delete confirmation overlay
func (m Model) renderConfirm() string {
	var name string
	for _, t := range m.rows {
		if t.ID == m.del.TaskID() {
			name = t.Title
			break
		}
	}

	var lines []string
	lines = append(lines, headerStyle.Render("Confirm Deletion"))
	lines = append(lines, "")
	if name != "" {
		lines = append(lines, statusStyle.Render(name))
	}
	lines = append(lines, "Are you sure you want to delete this task? This action cannot be undone.")
	lines = append(lines, "")
	if m.del.State() == flow.Deleting {
		lines = append(lines, m.spinner.View()+" Deleting...")
	} else {
		lines = append(lines, "Press y to delete, n or Esc to cancel")
	}

	box := borderStyle.
		Padding(1).
		Background(lipgloss.Color("235")).
		Render(strings.Join(lines, "\n"))

	height := m.height - 2
	if height < 0 {
		height = 0
	}
	return lipgloss.NewStyle().
		Width(m.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box)
}
