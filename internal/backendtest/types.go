package backendtest

import "study-assistant/internal/quiz"

type generatedQuiz struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Subject      string `json:"subject"`
	Topic        string `json:"topic"`
	Difficulty   string `json:"difficulty"`
	NumQuestions int    `json:"num_questions"`
	TimeLimit    int    `json:"time_limit"`
}

type generateResponse struct {
	Success bool          `json:"success"`
	Quiz    generatedQuiz `json:"quiz"`
}

type fetchedQuiz struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Subject      string          `json:"subject"`
	Topic        string          `json:"topic"`
	Difficulty   string          `json:"difficulty"`
	Questions    []quiz.Question `json:"questions"`
	TimeLimit    int             `json:"time_limit"`
	PassingScore float64         `json:"passing_score"`
}

type fetchResponse struct {
	Quiz fetchedQuiz `json:"quiz"`
}

type startResponse struct {
	Success        bool   `json:"success"`
	AttemptID      string `json:"attempt_id"`
	TimeLimit      int    `json:"time_limit"`
	TotalQuestions int    `json:"total_questions"`
}

type submitRequest struct {
	Answers   map[string]string `json:"answers"`
	TimeTaken int               `json:"time_taken"`
}

type submitResponse struct {
	Success         bool                  `json:"success"`
	Score           float64               `json:"score"`
	CorrectAnswers  int                   `json:"correct_answers"`
	TotalQuestions  int                   `json:"total_questions"`
	Passed          bool                  `json:"passed"`
	TimeTaken       int                   `json:"time_taken"`
	DetailedResults []quiz.DetailedResult `json:"detailed_results"`
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
	CompletedAt    string  `json:"completed_at,omitempty"`
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

// messageResponse is the shape of the token middleware's rejections.
type messageResponse struct {
	Msg string `json:"msg"`
}
