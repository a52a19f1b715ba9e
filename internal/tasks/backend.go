package tasks

import "context"

// Backend defines the remote system that owns durable task state
type Backend interface {
	// List returns every task
	List(ctx context.Context) ([]Task, error)

	// Get returns a single task by id
	Get(ctx context.Context, id int64) (Task, error)

	// Create submits a new task and returns what the remote reported back,
	// which may be the zero Task when the remote sends no body
	Create(ctx context.Context, draft Draft) (Task, error)

	// Update replaces every field of an existing task
	Update(ctx context.Context, id int64, task Task) error

	// Delete removes a task
	Delete(ctx context.Context, id int64) error
}
