package db

import (
	"context"
	"fmt"
	"time"

	"github.com/pdxmph/tasks-tui/internal/tasks"
)

// Fixtures returns realistic sample tasks with due dates relative to now
func Fixtures(now time.Time) []tasks.Draft {
	day := func(n int) string {
		return tasks.FormatDue(now.AddDate(0, 0, n).Truncate(time.Hour))
	}
	return []tasks.Draft{
		{
			Title:       "Renew domain registration",
			Description: "Expires at the end of the month. Card on file changed in March.",
			Status:      tasks.StatusPending,
			DueDate:     day(12),
		},
		{
			Title:       "Quarterly budget review",
			Description: "Pull numbers from the shared sheet before the meeting.",
			Status:      tasks.StatusInProgress,
			DueDate:     day(3),
		},
		{
			Title:       "Book dentist appointment",
			Description: "",
			Status:      tasks.StatusPending,
			DueDate:     day(-2),
		},
		{
			Title:       "Write release notes",
			Description: "Cover the new sort options and the delete confirmation.",
			Status:      tasks.StatusCompleted,
			DueDate:     day(-7),
		},
		{
			Title:       "Archive old invoices",
			Description: "Anything older than two years goes to cold storage.",
			Status:      tasks.StatusPending,
			DueDate:     day(30),
		},
		{
			Title:       "Fix flaky login test",
			Description: "Fails about once a week on CI, timing related.",
			Status:      tasks.StatusInProgress,
			DueDate:     day(1),
		},
	}
}

// Seed inserts the fixture tasks. It refuses to touch a database that
// already has tasks.
func (db *DB) Seed(ctx context.Context, now time.Time) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, d := range Fixtures(now) {
		if _, err := db.CreateTask(ctx, d); err != nil {
			return 0, fmt.Errorf("adding fixture %q: %w", d.Title, err)
		}
	}

	n := len(Fixtures(now))
	db.logger.Info().Int("count", n).Msg("seeded fixture tasks")
	return n, nil
}
