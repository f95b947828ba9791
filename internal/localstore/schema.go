package localstore

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_history (
			attempt_id TEXT PRIMARY KEY,
			quiz_id TEXT NOT NULL,
			title TEXT NOT NULL,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL,
			-- percentage as returned by the backend, not rounded
			score REAL NOT NULL,
			correct_answers INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			time_taken INTEGER NOT NULL,
			completed_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempt_history_completed_at ON attempt_history(completed_at_unix DESC);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
