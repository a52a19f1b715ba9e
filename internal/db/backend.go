package db

import (
	"context"

	"github.com/pdxmph/tasks-tui/internal/tasks"
)

// BackendName selects the local database in the backend registry
const BackendName = "sqlite"

// Local serves tasks straight from the database so the client can work
// without a running API
type Local struct {
	db *DB
}

// NewLocal wraps an open database
func NewLocal(db *DB) *Local {
	return &Local{db: db}
}

func (l *Local) List(ctx context.Context) ([]tasks.Task, error) {
	return l.db.ListTasks(ctx)
}

func (l *Local) Get(ctx context.Context, id int64) (tasks.Task, error) {
	return l.db.GetTask(ctx, id)
}

func (l *Local) Create(ctx context.Context, d tasks.Draft) (tasks.Task, error) {
	if err := d.Validate(); err != nil {
		return tasks.Task{}, err
	}
	return l.db.CreateTask(ctx, d)
}

func (l *Local) Update(ctx context.Context, id int64, t tasks.Task) error {
	d := t.Draft()
	if err := d.Validate(); err != nil {
		return err
	}
	_, err := l.db.UpdateTask(ctx, id, d)
	return err
}

func (l *Local) Delete(ctx context.Context, id int64) error {
	return l.db.DeleteTask(ctx, id)
}

// Close closes the underlying database
func (l *Local) Close() error {
	return l.db.Close()
}

// Register the local database backend
func init() {
	tasks.Register(BackendName, func(s tasks.Settings) (tasks.Backend, error) {
		database, err := Open(s.DBPath, s.Logger)
		if err != nil {
			return nil, err
		}
		return NewLocal(database), nil
	})
}
