package db

import (
	"time"

	"github.com/pdxmph/tasks-tui/internal/tasks"
)

// Row is a task as stored in the database
type Row struct {
	ID          int64
	Title       string
	Description string
	Status      string
	DueDate     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Task converts the row into the API representation
func (r Row) Task() tasks.Task {
	return tasks.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      tasks.Status(r.Status),
		DueDate:     r.DueDate,
	}
}
