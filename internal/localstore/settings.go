package localstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// LoadToken returns "" with no error when key is not set.
func (s *SQLiteStore) LoadToken(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT value FROM settings WHERE key = ?`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (s *SQLiteStore) SaveToken(ctx context.Context, key, token string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("token key is required")
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO settings (key, value, updated_at_unix) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at_unix = excluded.updated_at_unix`,
		key,
		token,
		time.Now().UTC().UnixNano(),
	)
	return err
}

func (s *SQLiteStore) ClearToken(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}
