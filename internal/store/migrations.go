package store

import "fmt"

// migrate runs database migrations.
func (s *Store) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS routines (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			days        TEXT NOT NULL DEFAULT '0,1,2,3,4',
			description TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS steps (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			routine_id INTEGER NOT NULL REFERENCES routines(id) ON DELETE CASCADE,
			name       TEXT NOT NULL,
			time       TEXT NOT NULL DEFAULT '00:00',
			category   TEXT NOT NULL DEFAULT 'Other' CHECK(category IN ('IoT','Browser','Lifestyle','Other')),
			memo       TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS daily_logs (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			date    TEXT NOT NULL,
			step_id INTEGER NOT NULL REFERENCES steps(id) ON DELETE CASCADE,
			done    INTEGER NOT NULL DEFAULT 0,
			memo    TEXT NOT NULL DEFAULT '',
			UNIQUE(date, step_id)
		);

		CREATE TABLE IF NOT EXISTS custom_tasks (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			name TEXT NOT NULL,
			time TEXT NOT NULL DEFAULT '00:00',
			done INTEGER NOT NULL DEFAULT 0,
			memo TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS day_logs (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			date    TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS chat_history (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			role      TEXT NOT NULL CHECK(role IN ('user','assistant','system')),
			content   TEXT NOT NULL,
			timestamp TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_steps_routine ON steps(routine_id);
		CREATE INDEX IF NOT EXISTS idx_daily_logs_date ON daily_logs(date);
		CREATE INDEX IF NOT EXISTS idx_daily_logs_step ON daily_logs(step_id);
		CREATE INDEX IF NOT EXISTS idx_custom_tasks_date ON custom_tasks(date);
		CREATE INDEX IF NOT EXISTS idx_day_logs_date ON day_logs(date);
		CREATE INDEX IF NOT EXISTS idx_chat_history_timestamp ON chat_history(timestamp);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}

	return nil
}
