package quiz

import (
	"strings"
	"time"
)

const (
	DefaultDifficulty       = "medium"
	DefaultExamType         = "WAEC"
	DefaultNumQuestions     = 5
	DefaultTimeLimitMinutes = 30
)

type Quiz struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Subject      string     `json:"subject,omitempty"`
	Topic        string     `json:"topic,omitempty"`
	Difficulty   string     `json:"difficulty,omitempty"`
	Questions    []Question `json:"questions,omitempty"`
	NumQuestions int        `json:"num_questions,omitempty"`
	// TimeLimit is in minutes.
	TimeLimit    int     `json:"time_limit"`
	PassingScore float64 `json:"passing_score,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

func (q Quiz) QuestionCount() int {
	return len(q.Questions)
}

func (q Quiz) TimeLimitSeconds() int {
	return q.TimeLimit * 60
}

// GenerateParams is both the validated setup form and the generate request body.
type GenerateParams struct {
	Subject      string `json:"subject" validate:"required"`
	Topic        string `json:"topic" validate:"required"`
	Difficulty   string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	ExamType     string `json:"exam_type"`
	NumQuestions int    `json:"num_questions" validate:"omitempty,min=1,max=50"`
}

// Normalize trims the free-text fields and fills in the backend defaults for
// everything except subject and topic.
func (p GenerateParams) Normalize() GenerateParams {
	p.Subject = strings.TrimSpace(p.Subject)
	p.Topic = strings.TrimSpace(p.Topic)
	p.Difficulty = strings.ToLower(strings.TrimSpace(p.Difficulty))
	p.ExamType = strings.TrimSpace(p.ExamType)

	if p.Difficulty == "" {
		p.Difficulty = DefaultDifficulty
	}
	if p.ExamType == "" {
		p.ExamType = DefaultExamType
	}
	if p.NumQuestions == 0 {
		p.NumQuestions = DefaultNumQuestions
	}
	return p
}

// AttemptSummary describes one finished (or, from the backend history,
// possibly unfinished) attempt.
type AttemptSummary struct {
	AttemptID      string
	QuizID         string
	Title          string
	Subject        string
	Topic          string
	Score          float64
	CorrectAnswers int
	TotalQuestions int
	Passed         bool
	Completed      bool
	TimeTaken      int
	StartedAt      time.Time
	CompletedAt    time.Time
}

type AttemptStats struct {
	Attempts     int
	Passed       int
	AverageScore float64
	BestScore    float64
}
