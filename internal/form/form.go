package form

import (
	"time"

	"github.com/pdxmph/tasks-tui/internal/tasks"
)

// Action is a single edit applied to the record being edited
type Action interface {
	apply(current, initial tasks.Draft) tasks.Draft
}

// SetTitle replaces the title
type SetTitle string

// SetDescription replaces the description
type SetDescription string

// SetStatus replaces the status
type SetStatus tasks.Status

// SetDueDate replaces the due date with its wire form
type SetDueDate time.Time

// Reset restores the record the form was opened with
type Reset struct{}

func (a SetTitle) apply(d, _ tasks.Draft) tasks.Draft {
	d.Title = string(a)
	return d
}

func (a SetDescription) apply(d, _ tasks.Draft) tasks.Draft {
	d.Description = string(a)
	return d
}

func (a SetStatus) apply(d, _ tasks.Draft) tasks.Draft {
	d.Status = tasks.Status(a)
	return d
}

func (a SetDueDate) apply(d, _ tasks.Draft) tasks.Draft {
	d.DueDate = tasks.FormatDue(time.Time(a))
	return d
}

func (Reset) apply(_, initial tasks.Draft) tasks.Draft {
	return initial
}

// Form holds the record behind the add and edit pages. It is a value: every
// Dispatch returns a new Form and leaves the receiver untouched.
type Form struct {
	initial tasks.Draft
	current tasks.Draft
}

// New starts a form from an initial record
func New(initial tasks.Draft) Form {
	return Form{initial: initial, current: initial}
}

// Defaults is the record a new task starts from
func Defaults(now time.Time) tasks.Draft {
	return tasks.Draft{
		Status:  tasks.StatusPending,
		DueDate: tasks.FormatDue(now),
	}
}

// Dispatch applies actions in order
func (f Form) Dispatch(actions ...Action) Form {
	for _, a := range actions {
		f.current = a.apply(f.current, f.initial)
	}
	return f
}

// Draft returns the current record
func (f Form) Draft() tasks.Draft {
	return f.current
}

// Dirty reports whether the record differs from the initial one
func (f Form) Dirty() bool {
	return f.current != f.initial
}

// Validate checks required fields before submitting
func (f Form) Validate() error {
	return f.current.Validate()
}
