package tui

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/tasks-tui/internal/api"
	"github.com/pdxmph/tasks-tui/internal/flow"
	"github.com/pdxmph/tasks-tui/internal/store"
	"github.com/pdxmph/tasks-tui/internal/tasks"
	"github.com/pdxmph/tasks-tui/internal/view"
)

var errBoom = errors.New("boom")

// memBackend is an in-memory tasks.Backend
type memBackend struct {
	mu        sync.Mutex
	tasks     []tasks.Task
	nextID    int64
	listErr   error
	createErr error
	updateErr error
	deleteErr error
}

func newMemBackend(ts ...tasks.Task) *memBackend {
	return &memBackend{tasks: ts, nextID: 100}
}

func (b *memBackend) List(context.Context) ([]tasks.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	return slices.Clone(b.tasks), nil
}

func (b *memBackend) Get(_ context.Context, id int64) (tasks.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return tasks.Task{}, &api.Error{Op: "get", Status: 404, Kind: api.ErrNotFound}
}

func (b *memBackend) Create(_ context.Context, d tasks.Draft) (tasks.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.createErr != nil {
		return tasks.Task{}, b.createErr
	}
	b.nextID++
	t := d.Task(b.nextID)
	b.tasks = append(b.tasks, t)
	return t, nil
}

func (b *memBackend) Update(_ context.Context, id int64, task tasks.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.updateErr != nil {
		return b.updateErr
	}
	for i, t := range b.tasks {
		if t.ID == id {
			b.tasks[i] = task
			return nil
		}
	}
	return &api.Error{Op: "update", Status: 404, Kind: api.ErrNotFound}
}

func (b *memBackend) Delete(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.tasks = slices.DeleteFunc(b.tasks, func(t tasks.Task) bool { return t.ID == id })
	return nil
}

func fixtures() []tasks.Task {
	return []tasks.Task{
		{ID: 1, Title: "Write report", Status: tasks.StatusPending, DueDate: "2024-03-10"},
		{ID: 2, Title: "Call plumber", Status: tasks.StatusCompleted, DueDate: "2024-01-05"},
		{ID: 3, Title: "Book flights", Status: tasks.StatusInProgress, DueDate: "2024-02-20"},
	}
}

// idlessBackend answers Get without the task id
type idlessBackend struct{ *memBackend }

func (b idlessBackend) Get(ctx context.Context, id int64) (tasks.Task, error) {
	t, err := b.memBackend.Get(ctx, id)
	t.ID = 0
	return t, err
}

func newTestModel(t *testing.T, b tasks.Backend, route Route) (Model, *store.Store) {
	t.Helper()
	s := store.New(b, zerolog.Nop())
	m := New(s, Options{
		Route:          route,
		NoticeDuration: time.Hour,
		Logger:         zerolog.Nop(),
		Now:            func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local) },
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	return pump(t, m, m.Init()), s
}

// exec runs a command, giving up on the slow ones (spinner frames, cursor
// blinks, long ticks)
func exec(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// pump runs cmd and feeds the application messages it produces back into
// the model until nothing is left
func pump(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := exec(c).(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case navigateMsg, tasksLoadedMsg, taskFetchedMsg, savedMsg, deletedMsg, noticeExpiredMsg:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys one by one, running whatever each of them starts
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(keyMsg(k))
		m = pump(t, next.(Model), cmd)
	}
	return m
}

func titles(ts []tasks.Task) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Title
	}
	return out
}

func TestStartupLoadsSortedByDueDate(t *testing.T) {
	m, _ := newTestModel(t, newMemBackend(fixtures()...), RouteList)

	assert.Equal(t, pageList, m.route.page)
	assert.False(t, m.loading)
	assert.NoError(t, m.err)
	assert.Equal(t, view.Default(), m.sort)
	assert.Equal(t, []string{"Call plumber", "Book flights", "Write report"}, titles(m.rows))
	assert.Contains(t, m.columns()[3].Title, "▲")
	assert.Contains(t, m.View(), "Call plumber")
}

func TestStartupCursorOnFirstRow(t *testing.T) {
	m, _ := newTestModel(t, newMemBackend(fixtures()...), RouteList)

	assert.Equal(t, 0, m.table.Cursor())
	sel, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "Call plumber", sel.Title)

	m = press(t, m, "x")
	assert.Equal(t, flow.ConfirmPending, m.del.State())
	assert.Equal(t, int64(2), m.del.TaskID())
}

func TestOverlappingReloadsKeepSpinner(t *testing.T) {
	m, _ := newTestModel(t, newMemBackend(fixtures()...), RouteList)

	next, first := m.Update(keyMsg("r"))
	m = next.(Model)
	next, second := m.Update(keyMsg("r"))
	m = next.(Model)
	require.True(t, m.loading)

	m = pump(t, m, first)
	assert.True(t, m.loading, "the newer load is still running")

	m = pump(t, m, second)
	assert.False(t, m.loading)
	assert.NoError(t, m.err)
	assert.Len(t, m.rows, 3)
}

func TestSortKeysToggle(t *testing.T) {
	m, _ := newTestModel(t, newMemBackend(fixtures()...), RouteList)

	m = press(t, m, "t")
	assert.Equal(t, view.Sort{Key: view.KeyTitle, Order: view.Asc}, m.sort)
	assert.Equal(t, []string{"Book flights", "Call plumber", "Write report"}, titles(m.rows))
	assert.Equal(t, "Title ▲", m.columns()[0].Title)
	assert.Equal(t, "Due Date", m.columns()[3].Title)

	m = press(t, m, "t")
	assert.Equal(t, view.Desc, m.sort.Order)
	assert.Equal(t, []string{"Write report", "Call plumber", "Book flights"}, titles(m.rows))
	assert.Equal(t, "Title ▼", m.columns()[0].Title)

	m = press(t, m, "s")
	assert.Equal(t, view.Sort{Key: view.KeyStatus, Order: view.Asc}, m.sort)
	assert.Equal(t, []string{"Call plumber", "Book flights", "Write report"}, titles(m.rows))
}

func TestSortKeepsCursorOnTask(t *testing.T) {
	m, _ := newTestModel(t, newMemBackend(fixtures()...), RouteList)

	m = press(t, m, "j")
	sel, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "Book flights", sel.Title)

	m = press(t, m, "t", "t")
	sel, ok = m.selected()
	require.True(t, ok)
	assert.Equal(t, "Book flights", sel.Title)
}

func TestLoadFailureKeepsRows(t *testing.T) {
	b := newMemBackend(fixtures()...)
	m, s := newTestModel(t, b, RouteList)
	require.Len(t, m.rows, 3)

	b.mu.Lock()
	b.listErr = &api.Error{Op: "list", Kind: api.ErrNetwork, Err: errBoom}
	b.mu.Unlock()

	m = press(t, m, "r")
	assert.False(t, m.loading)
	assert.ErrorIs(t, m.err, api.ErrNetwork)
	assert.Len(t, m.rows, 3)
	assert.Equal(t, 3, s.Len())
	assert.Contains(t, m.View(), "Failed to load tasks")
}

func TestDeleteConfirmAndCancel(t *testing.T) {
	b := newMemBackend(fixtures()...)
	m, _ := newTestModel(t, b, RouteList)

	m = press(t, m, "x")
	assert.Equal(t, flow.ConfirmPending, m.del.State())
	assert.Equal(t, int64(2), m.del.TaskID())
	assert.Contains(t, m.View(), "Confirm Deletion")
	assert.Contains(t, m.View(), "This action cannot be undone.")

	m = press(t, m, "n")
	assert.Equal(t, flow.Idle, m.del.State())
	assert.Len(t, m.rows, 3)

	m = press(t, m, "x", "esc")
	assert.Equal(t, flow.Idle, m.del.State())

	m = press(t, m, "x", "y")
	assert.Equal(t, flow.Idle, m.del.State())
	assert.Equal(t, []string{"Book flights", "Write report"}, titles(m.rows))
	require.NotNil(t, m.notice)
	assert.Equal(t, "Task deleted successfully", m.notice.Body)
	assert.False(t, m.notice.IsError())

	list, err := b.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestDeleteFailureKeepsTask(t *testing.T) {
	b := newMemBackend(fixtures()...)
	b.deleteErr = &api.Error{Op: "delete", Status: 500, Kind: api.ErrServer}
	m, _ := newTestModel(t, b, RouteList)

	m = press(t, m, "x", "y")
	assert.Equal(t, flow.Idle, m.del.State())
	assert.Len(t, m.rows, 3)
	require.NotNil(t, m.notice)
	assert.True(t, m.notice.IsError())
	assert.Equal(t, "Failed to delete task. Please try again.", m.notice.Body)
	assert.Contains(t, m.View(), "Failed to delete task")
}

func TestDeleteKeysIgnoredWhileDeleting(t *testing.T) {
	m, _ := newTestModel(t, newMemBackend(fixtures()...), RouteList)

	m = press(t, m, "x")
	next, removeCmd := m.Update(keyMsg("y"))
	m = next.(Model)
	require.Equal(t, flow.Deleting, m.del.State())

	// neither cancel, a second request nor navigation gets through
	m = press(t, m, "n", "x", "esc", "a")
	assert.Equal(t, flow.Deleting, m.del.State())
	assert.Equal(t, int64(2), m.del.TaskID())
	assert.Equal(t, pageList, m.route.page)
	assert.Contains(t, m.renderHelp(), "Deleting")

	m = pump(t, m, removeCmd)
	assert.Equal(t, flow.Idle, m.del.State())
	assert.Len(t, m.rows, 2)
}

func TestNoticeExpires(t *testing.T) {
	s := store.New(newMemBackend(fixtures()...), zerolog.Nop())
	m := New(s, Options{NoticeDuration: time.Millisecond, Logger: zerolog.Nop()})
	m = pump(t, m, m.Init())

	m = press(t, m, "x")
	next, cmd := m.Update(keyMsg("y"))
	m = pump(t, next.(Model), cmd)

	assert.Nil(t, m.notice)
	assert.Equal(t, 1, m.noticeSeq)
}

func TestAddTask(t *testing.T) {
	b := newMemBackend(fixtures()...)
	m, _ := newTestModel(t, b, RouteList)

	m = press(t, m, "a")
	require.Equal(t, pageAdd, m.route.page)
	assert.Equal(t, tasks.StatusPending, m.form.Draft().Status)
	assert.Equal(t, "2024-06-01", m.due.Value())

	m = press(t, m, "Pay rent", "tab", "first of the month", "tab", "right", "ctrl+s")
	assert.Equal(t, pageList, m.route.page)
	assert.Len(t, m.rows, 4)

	created, err := b.Get(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "Pay rent", created.Title)
	assert.Equal(t, "first of the month", created.Description)
	assert.Equal(t, tasks.StatusInProgress, created.Status)
	due, err := created.Due()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", due.Format(dueLayout))
}

func TestAddRequiresTitle(t *testing.T) {
	b := newMemBackend()
	m, _ := newTestModel(t, b, RouteAdd)

	m = press(t, m, "ctrl+s")
	assert.Equal(t, pageAdd, m.route.page)
	assert.Equal(t, "Title is required", m.formErr)
	assert.False(t, m.saving)

	list, _ := b.List(context.Background())
	assert.Empty(t, list)
}

func TestAddRejectsBadDueDate(t *testing.T) {
	m, _ := newTestModel(t, newMemBackend(), RouteAdd)

	m = press(t, m, "Pay rent", "shift+tab", "ctrl+u", "2024-13")
	assert.Equal(t, fieldDue, m.focus)
	m = press(t, m, "ctrl+s")
	assert.Equal(t, pageAdd, m.route.page)
	assert.Equal(t, "Due date must be YYYY-MM-DD", m.formErr)
}

func TestSaveFailureStaysOnForm(t *testing.T) {
	b := newMemBackend()
	b.createErr = &api.Error{Op: "create", Status: 422, Kind: api.ErrValidation, Message: "title taken"}
	m, _ := newTestModel(t, b, RouteAdd)

	m = press(t, m, "Pay rent", "ctrl+s")
	assert.Equal(t, pageAdd, m.route.page)
	assert.False(t, m.saving)
	assert.Contains(t, m.formErr, "Failed to save task")
	assert.Equal(t, "Pay rent", m.form.Draft().Title)
	assert.Contains(t, m.View(), "Failed to save task")
}

func TestEditTask(t *testing.T) {
	b := newMemBackend(fixtures()...)
	m, _ := newTestModel(t, b, RouteList)

	// cursor starts on the earliest due task
	m = press(t, m, "e")
	require.Equal(t, pageEdit, m.route.page)
	assert.Equal(t, int64(2), m.editID)
	assert.False(t, m.formLoading)
	assert.Equal(t, "Call plumber", m.title.Value())
	assert.False(t, m.form.Dirty())

	m = press(t, m, " now", "tab", "tab", "left")
	assert.True(t, m.form.Dirty())
	assert.Equal(t, tasks.StatusInProgress, m.form.Draft().Status)

	m = press(t, m, "ctrl+s")
	assert.Equal(t, pageList, m.route.page)

	got, err := b.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Call plumber now", got.Title)
	assert.Equal(t, tasks.StatusInProgress, got.Status)
	assert.Equal(t, "2024-01-05", got.DueDate, "untouched due date is sent as stored")
}

func TestEditKeepsRouteID(t *testing.T) {
	b := newMemBackend(fixtures()...)
	m, _ := newTestModel(t, idlessBackend{b}, RouteEdit(2))

	require.Equal(t, pageEdit, m.route.page)
	assert.Equal(t, int64(2), m.editID)
	assert.Equal(t, "Call plumber", m.title.Value())

	m = press(t, m, " now", "ctrl+s")
	assert.Equal(t, pageList, m.route.page)

	got, err := b.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Call plumber now", got.Title)
}

func TestEditReset(t *testing.T) {
	m, _ := newTestModel(t, newMemBackend(fixtures()...), RouteEdit(1))

	m = press(t, m, " draft", "ctrl+r")
	assert.False(t, m.form.Dirty())
	assert.Equal(t, "Write report", m.title.Value())
}

func TestEditMissingTaskShowsNotFound(t *testing.T) {
	b := newMemBackend(fixtures()...)
	m, s := newTestModel(t, b, RouteList)
	before := s.Tasks()

	m = pump(t, m, func() tea.Msg { return navigateMsg{route: RouteEdit(99)} })
	assert.Equal(t, pageNotFound, m.route.page)
	assert.Contains(t, m.View(), "Not Found")
	assert.Equal(t, before, s.Tasks())

	m = press(t, m, "esc")
	assert.Equal(t, pageList, m.route.page)
	assert.Len(t, m.rows, 3)
}

func TestAbandonedPageResponsesIgnored(t *testing.T) {
	m, _ := newTestModel(t, newMemBackend(fixtures()...), RouteList)

	next, fetch := m.Update(navigateMsg{route: RouteEdit(1)})
	m = next.(Model)
	require.True(t, m.formLoading)

	m = press(t, m, "esc")
	require.Equal(t, pageList, m.route.page)

	m = pump(t, m, fetch)
	assert.Equal(t, pageList, m.route.page)
	assert.Empty(t, m.form.Draft().Title)

	stale := savedMsg{nav: m.nav - 1, err: errBoom}
	next, _ = m.Update(stale)
	m = next.(Model)
	assert.Empty(t, m.formErr)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, newMemBackend(), RouteList)

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path string
		want Route
	}{
		{"/", RouteList},
		{"", RouteList},
		{"/add", RouteAdd},
		{"/add/", RouteAdd},
		{"/edit/7", RouteEdit(7)},
		{"/edit/0", RouteNotFound},
		{"/edit/abc", RouteNotFound},
		{"/settings", RouteNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRoute(tt.path))
		})
	}

	assert.Equal(t, "/edit/7", RouteEdit(7).Path())
	assert.Equal(t, "/", RouteList.Path())
}
