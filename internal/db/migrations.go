package db

import (
	"fmt"
)

// RunMigrations applies any pending database migrations
func (db *DB) RunMigrations() error {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*)
		FROM sqlite_master
		WHERE type = 'table' AND name = 'tasks'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking for tasks table: %w", err)
	}

	if count == 0 {
		db.logger.Info().Msg("running migration: creating tasks schema")
		if _, err := db.conn.Exec(schema); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
		db.logger.Info().Msg("migration completed successfully")
	}

	return nil
}
