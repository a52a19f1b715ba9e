package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdxmph/tasks-tui/internal/flow"
	"github.com/pdxmph/tasks-tui/internal/tasks"
)

// tasksLoadedMsg reports the end of a store load
type tasksLoadedMsg struct {
	nav  uint64
	load uint64
	err  error
}

// taskFetchedMsg carries the task opened on the edit page
type taskFetchedMsg struct {
	nav  uint64
	task tasks.Task
	err  error
}

// savedMsg reports the outcome of a create or update
type savedMsg struct {
	nav uint64
	err error
}

// deletedMsg reports the outcome of a confirmed delete
type deletedMsg struct {
	id  int64
	err error
}

// noticeExpiredMsg clears the toast it belongs to
type noticeExpiredMsg struct {
	seq int
}

// loadTasks starts a store load and marks the list as loading until the
// latest load reports back
func (m *Model) loadTasks() tea.Cmd {
	m.loads++
	m.loading = true
	ctx, nav, load, s := m.ctx, m.nav, m.loads, m.store
	return func() tea.Msg {
		return tasksLoadedMsg{nav: nav, load: load, err: s.Load(ctx)}
	}
}

func (m Model) fetchTask(id int64) tea.Cmd {
	ctx, nav := m.ctx, m.nav
	return func() tea.Msg {
		t, err := m.store.FetchOne(ctx, id)
		return taskFetchedMsg{nav: nav, task: t, err: err}
	}
}

func (m Model) createTask(d tasks.Draft) tea.Cmd {
	ctx, nav := m.ctx, m.nav
	return func() tea.Msg {
		_, err := m.store.Create(ctx, d)
		return savedMsg{nav: nav, err: err}
	}
}

func (m Model) updateTask(id int64, t tasks.Task) tea.Cmd {
	ctx, nav := m.ctx, m.nav
	return func() tea.Msg {
		return savedMsg{nav: nav, err: m.store.Update(ctx, id, t)}
	}
}

// removeTask runs outside the page context so navigating away cannot leave
// the delete flow stuck in Deleting
func (m Model) removeTask(id int64) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: m.store.Remove(context.Background(), id)}
	}
}

// notify shows a toast and schedules its removal
func (m *Model) notify(n flow.Notice) tea.Cmd {
	m.noticeSeq++
	m.notice = &n
	seq := m.noticeSeq
	return tea.Tick(m.noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
