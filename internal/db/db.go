package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdxmph/tasks-tui/internal/tasks"
)

// ErrNotFound is returned when no task has the requested id
var ErrNotFound = tasks.ErrNotFound

// DB wraps the database connection
type DB struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// Open creates a new database connection, creating the file and schema when
// they do not exist yet
func Open(dbPath string, logger zerolog.Logger) (*DB, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, logger: logger.With().Str("component", "db").Logger()}

	if err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

const selectColumns = `id, title, description, status, due_date, created_at, updated_at`

func scanRow(scanner interface{ Scan(...any) error }) (Row, error) {
	var r Row
	err := scanner.Scan(&r.ID, &r.Title, &r.Description, &r.Status, &r.DueDate, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// ListTasks returns all tasks ordered by id
func (db *DB) ListTasks(ctx context.Context) ([]tasks.Task, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+selectColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	list := []tasks.Task{}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		list = append(list, r.Task())
	}

	return list, rows.Err()
}

// GetTask retrieves a single task by ID
func (db *DB) GetTask(ctx context.Context, id int64) (tasks.Task, error) {
	r, err := scanRow(db.conn.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return tasks.Task{}, ErrNotFound
	}
	if err != nil {
		return tasks.Task{}, fmt.Errorf("querying task: %w", err)
	}
	return r.Task(), nil
}

// CreateTask inserts a task and returns it with its new id
func (db *DB) CreateTask(ctx context.Context, d tasks.Draft) (tasks.Task, error) {
	result, err := db.conn.ExecContext(ctx, `
		INSERT INTO tasks (title, description, status, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, strings.TrimSpace(d.Title), d.Description, string(d.Status), d.DueDate)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("inserting task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return tasks.Task{}, fmt.Errorf("getting insert ID: %w", err)
	}

	return db.GetTask(ctx, id)
}

// UpdateTask replaces all fields of a task
func (db *DB) UpdateTask(ctx context.Context, id int64, d tasks.Draft) (tasks.Task, error) {
	result, err := db.conn.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?,
		    description = ?,
		    status = ?,
		    due_date = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, strings.TrimSpace(d.Title), d.Description, string(d.Status), d.DueDate, id)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("updating task: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return tasks.Task{}, ErrNotFound
	}

	return db.GetTask(ctx, id)
}

// DeleteTask permanently deletes a task
func (db *DB) DeleteTask(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}
