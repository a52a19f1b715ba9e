package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a task
type Status string

// Available task statuses
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrEmptyTitle    = errors.New("title is required")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidDue    = errors.New("invalid due date")
)

// Statuses returns every status in display order
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// ParseStatus converts a raw string into a Status
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Label returns the human readable status name
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In-Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Task is a to-do item owned by the remote API
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	DueDate     string `json:"due_date"`
}

// Due parses the task's due date
func (t Task) Due() (time.Time, error) {
	return ParseDue(t.DueDate)
}

// Validate checks the fields the rest of the client relies on
func (t Task) Validate() error {
	return t.Draft().Validate()
}

// Draft returns the task without its identifier
func (t Task) Draft() Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
	}
}

// Draft is the payload for a task that has no id yet
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	DueDate     string `json:"due_date"`
}

// Task attaches an id to the draft
func (d Draft) Task(id int64) Task {
	return Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		DueDate:     d.DueDate,
	}
}

// Validate checks required fields, status and due date
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, d.Status)
	}
	if _, err := ParseDue(d.DueDate); err != nil {
		return err
	}
	return nil
}

// Layouts accepted for due dates, most specific first. The last one is the
// browser locale format older clients stored.
var dueLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006, 3:04:05 PM",
}

// ParseDue parses a due date in any of the accepted layouts
func ParseDue(s string) (time.Time, error) {
	// browsers put a narrow no-break space before AM/PM
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u202f", " "))
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDue)
	}
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDue, s)
}

// FormatDue serializes a due date for the wire
func FormatDue(t time.Time) string {
	return t.Format(time.RFC3339)
}

// DisplayDue renders a due date the way the list shows it
func DisplayDue(s string) string {
	t, err := ParseDue(s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}
