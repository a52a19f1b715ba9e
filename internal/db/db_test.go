package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/tasks-tui/internal/tasks"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "tasks.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	list, err := database.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := database.CreateTask(ctx, tasks.Draft{
		Title: "  Water plants ", Status: tasks.StatusPending, DueDate: "2024-04-01",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Water plants", created.Title)

	got, err := database.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := database.UpdateTask(ctx, created.ID, tasks.Draft{
		Title: "Water plants", Description: "ferns too", Status: tasks.StatusCompleted, DueDate: "2024-04-02",
	})
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusCompleted, updated.Status)
	assert.Equal(t, "ferns too", updated.Description)

	require.NoError(t, database.DeleteTask(ctx, created.ID))
	_, err = database.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingIDs(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	_, err := database.GetTask(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = database.UpdateTask(ctx, 42, tasks.Draft{Title: "x", Status: tasks.StatusPending, DueDate: "2024-01-01"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, database.DeleteTask(ctx, 42), ErrNotFound)
}

func TestStatusConstraint(t *testing.T) {
	database := openTestDB(t)
	_, err := database.CreateTask(context.Background(), tasks.Draft{Title: "x", Status: "todo", DueDate: "2024-01-01"})
	assert.Error(t, err)
}

func TestSeedOnlyOnce(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	n, err := database.Seed(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, len(Fixtures(now)), n)

	n, err = database.Seed(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := database.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(Fixtures(now)))
	for _, task := range list {
		assert.NoError(t, task.Validate())
	}
}

