package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdxmph/tasks-tui/internal/form"
	"github.com/pdxmph/tasks-tui/internal/store"
	"github.com/pdxmph/tasks-tui/internal/tasks"
)

// dueLayout is what the due date input accepts
const dueLayout = "2006-01-02"

// field identifies the focused form input
type field int

const (
	fieldTitle field = iota
	fieldDescription
	fieldStatus
	fieldDue
	fieldCount
)

func newInputs() (textinput.Model, textarea.Model, textinput.Model) {
	title := textinput.New()
	title.Placeholder = "Title"
	title.Width = 50
	title.CharLimit = 200
	title.Prompt = "> "
	title.PromptStyle = labelStyle

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.SetHeight(4)
	desc.SetWidth(50)
	desc.CharLimit = 1000
	desc.ShowLineNumbers = false

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD"
	due.Width = 50
	due.CharLimit = len(dueLayout)
	due.Prompt = "> "
	due.PromptStyle = labelStyle

	return title, desc, due
}

// openForm loads a record into the inputs and focuses the title
func (m Model) openForm(f form.Form) (Model, tea.Cmd) {
	m.form = f
	m.fillInputs()
	m.formErr = ""
	return m, m.focusField(fieldTitle)
}

func (m *Model) fillInputs() {
	d := m.form.Draft()
	m.title.SetValue(d.Title)
	m.title.CursorEnd()
	m.description.SetValue(d.Description)
	m.dueText = dueInput(d.DueDate)
	m.due.SetValue(m.dueText)
	m.due.CursorEnd()
	m.dueErr = nil
}

// dueInput renders a stored due date the way the input expects it
func dueInput(raw string) string {
	t, err := tasks.ParseDue(raw)
	if err != nil {
		return raw
	}
	return t.Format(dueLayout)
}

func (m *Model) focusField(f field) tea.Cmd {
	m.focus = f
	m.title.Blur()
	m.description.Blur()
	m.due.Blur()

	switch f {
	case fieldTitle:
		return m.title.Focus()
	case fieldDescription:
		return m.description.Focus()
	case fieldDue:
		return m.due.Focus()
	}
	return nil
}

func (m Model) handleFetched(msg taskFetchedMsg) (Model, tea.Cmd) {
	if msg.nav != m.nav {
		return m, nil
	}
	m.formLoading = false
	if msg.err != nil {
		if errors.Is(msg.err, store.ErrNotFound) {
			return m.navigate(RouteNotFound)
		}
		m.err = msg.err
		return m, nil
	}
	return m.openForm(form.New(msg.task.Draft()))
}

func (m Model) handleSaved(msg savedMsg) (Model, tea.Cmd) {
	if msg.nav != m.nav {
		return m, nil
	}
	m.saving = false
	if msg.err != nil {
		m.formErr = "Failed to save task: " + msg.err.Error()
		return m, nil
	}
	return m.navigate(RouteList)
}

func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	if msg.String() == "esc" {
		return m.navigate(RouteList)
	}
	if m.formLoading || m.err != nil {
		return m, nil
	}

	switch msg.String() {
	case "tab":
		return m, m.focusField((m.focus + 1) % fieldCount)
	case "shift+tab":
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case "ctrl+s":
		return m.save()
	case "ctrl+r":
		m.form = m.form.Dispatch(form.Reset{})
		m.fillInputs()
		m.formErr = ""
		return m, nil
	}

	if m.focus == fieldStatus {
		switch msg.String() {
		case "left", "h":
			m.stepStatus(-1)
		case "right", "l", " ":
			m.stepStatus(1)
		}
		return m, nil
	}
	return m.updateInputs(msg)
}

func (m *Model) stepStatus(delta int) {
	all := tasks.Statuses()
	i := slices.Index(all, m.form.Draft().Status)
	i = (i + delta + len(all)) % len(all)
	m.form = m.form.Dispatch(form.SetStatus(all[i]))
}

// updateInputs forwards msg to the focused input and copies its value into
// the form
func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
		m.form = m.form.Dispatch(form.SetTitle(m.title.Value()))
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
		m.form = m.form.Dispatch(form.SetDescription(m.description.Value()))
	case fieldDue:
		m.due, cmd = m.due.Update(msg)
		m.syncDue()
	}
	return m, cmd
}

// syncDue dispatches the due date only when the text changed, so an untouched
// input keeps the stored value with its time of day
func (m *Model) syncDue() {
	text := strings.TrimSpace(m.due.Value())
	if text == m.dueText {
		return
	}
	m.dueText = text

	t, err := time.ParseInLocation(dueLayout, text, time.Local)
	if err != nil {
		m.dueErr = fmt.Errorf("%w: %q", tasks.ErrInvalidDue, text)
		return
	}
	m.dueErr = nil
	m.form = m.form.Dispatch(form.SetDueDate(t))
}

func (m Model) save() (Model, tea.Cmd) {
	if m.dueErr != nil {
		m.formErr = validationMessage(m.dueErr)
		return m, nil
	}
	if err := m.form.Validate(); err != nil {
		m.formErr = validationMessage(err)
		return m, nil
	}

	m.saving = true
	m.formErr = ""
	d := m.form.Draft()
	if m.route.page == pageEdit {
		return m, tea.Batch(m.updateTask(m.editID, d.Task(m.editID)), m.spinner.Tick)
	}
	return m, tea.Batch(m.createTask(d), m.spinner.Tick)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, tasks.ErrEmptyTitle):
		return "Title is required"
	case errors.Is(err, tasks.ErrInvalidStatus):
		return "Choose a status"
	case errors.Is(err, tasks.ErrInvalidDue):
		return "Due date must be YYYY-MM-DD"
	}
	return err.Error()
}

func (m Model) renderForm() string {
	heading := "New Task"
	if m.route.page == pageEdit {
		heading = "Edit Task"
	}
	if m.form.Dirty() {
		heading += " (modified)"
	}

	lines := []string{titleStyle.Render(heading)}
	if m.formLoading {
		lines = append(lines, m.spinner.View()+" Loading task...")
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	if m.err != nil {
		lines = append(lines, errorStyle.Render("Failed to load task: "+m.err.Error()))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines,
		m.label("Title", fieldTitle), m.title.View(), "",
		m.label("Description", fieldDescription), m.description.View(), "",
		m.label("Status", fieldStatus), m.renderStatus(), "",
		m.label("Due Date", fieldDue), m.due.View(),
	)

	if m.formErr != "" {
		lines = append(lines, "", errorStyle.Render(m.formErr))
	}
	if m.saving {
		lines = append(lines, "", m.spinner.View()+" Saving...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) label(text string, f field) string {
	if m.focus == f {
		return headerStyle.Render(text)
	}
	return labelStyle.Render(text)
}

func (m Model) renderStatus() string {
	current := m.form.Draft().Status
	var b strings.Builder
	for _, s := range tasks.Statuses() {
		if s == current {
			b.WriteString(selectedStyle.Render("[" + s.Label() + "]"))
		} else {
			b.WriteString(" " + s.Label() + " ")
		}
		b.WriteString(" ")
	}
	return b.String()
}
