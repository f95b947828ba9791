package backend

import (
	"strings"
	"time"

	"study-assistant/internal/quiz"
)

type quizResponse struct {
	Quiz quiz.Quiz `json:"quiz"`
}

type startResponse struct {
	AttemptID      string `json:"attempt_id"`
	TimeLimit      int    `json:"time_limit"`
	TotalQuestions int    `json:"total_questions"`
}

type submitRequest struct {
	Answers   quiz.AnswerSet `json:"answers"`
	TimeTaken int            `json:"time_taken"`
}

type attemptItem struct {
	ID             string  `json:"_id"`
	QuizID         string  `json:"quiz_id"`
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	TimeTaken      int     `json:"time_taken"`
	Completed      bool    `json:"completed"`
	Passed         bool    `json:"passed"`
	StartedAt      string  `json:"started_at"`
	CompletedAt    string  `json:"completed_at"`
}

type attemptsResponse struct {
	Attempts []attemptItem `json:"attempts"`
}

type availableItem struct {
	ID           string  `json:"_id"`
	Title        string  `json:"title"`
	Subject      string  `json:"subject"`
	Topic        string  `json:"topic"`
	Difficulty   string  `json:"difficulty"`
	TimeLimit    int     `json:"time_limit"`
	PassingScore float64 `json:"passing_score"`
	CreatedAt    string  `json:"created_at"`
}

type availableResponse struct {
	Quizzes []availableItem `json:"quizzes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// The backend writes naive UTC isoformat() timestamps; RFC3339 is accepted too.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}

	var lastErr error
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
