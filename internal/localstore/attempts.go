package localstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"study-assistant/internal/quiz"
)

const defaultHistoryLimit = 10

// RecordAttempt stores a finished attempt. Recording the same attempt id twice
// keeps the first row; a submission is final on the backend too.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, summary quiz.AttemptSummary) error {
	if strings.TrimSpace(summary.AttemptID) == "" {
		return errors.New("attempt id is required")
	}
	if summary.CompletedAt.IsZero() {
		summary.CompletedAt = time.Now().UTC()
	}

	passed := 0
	if summary.Passed {
		passed = 1
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO attempt_history (
			attempt_id, quiz_id, title, subject, topic, score,
			correct_answers, total_questions, passed, time_taken, completed_at_unix
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.AttemptID,
		summary.QuizID,
		summary.Title,
		summary.Subject,
		summary.Topic,
		summary.Score,
		summary.CorrectAnswers,
		summary.TotalQuestions,
		passed,
		summary.TimeTaken,
		summary.CompletedAt.UTC().UnixNano(),
	)
	return err
}

// ListAttempts returns the newest attempts first.
func (s *SQLiteStore) ListAttempts(ctx context.Context, limit int) ([]quiz.AttemptSummary, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT attempt_id, quiz_id, title, subject, topic, score,
			correct_answers, total_questions, passed, time_taken, completed_at_unix
		 FROM attempt_history
		 ORDER BY completed_at_unix DESC, attempt_id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]quiz.AttemptSummary, 0)
	for rows.Next() {
		var (
			item            quiz.AttemptSummary
			passed          int
			completedAtUnix int64
		)
		if err := rows.Scan(
			&item.AttemptID,
			&item.QuizID,
			&item.Title,
			&item.Subject,
			&item.Topic,
			&item.Score,
			&item.CorrectAnswers,
			&item.TotalQuestions,
			&passed,
			&item.TimeTaken,
			&completedAtUnix,
		); err != nil {
			return nil, err
		}
		item.Passed = passed == 1
		item.Completed = true
		item.CompletedAt = time.Unix(0, completedAtUnix).UTC()
		attempts = append(attempts, item)
	}

	return attempts, rows.Err()
}

func (s *SQLiteStore) Stats(ctx context.Context) (quiz.AttemptStats, error) {
	var stats quiz.AttemptStats
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COALESCE(SUM(passed), 0), COALESCE(AVG(score), 0), COALESCE(MAX(score), 0)
		 FROM attempt_history`,
	).Scan(&stats.Attempts, &stats.Passed, &stats.AverageScore, &stats.BestScore)
	if err != nil {
		return quiz.AttemptStats{}, err
	}
	return stats, nil
}
