// Package backendtest is an in-memory quiz backend speaking the same REST
// contract as the real service. Tests and local demos point a backend.Client
// at it through httptest.
package backendtest

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	"study-assistant/internal/quiz"
)

// Operation names accepted by Fail and Calls.
const (
	OpGenerate  = "generate"
	OpStart     = "start"
	OpFetch     = "fetch"
	OpSubmit    = "submit"
	OpAttempts  = "attempts"
	OpAvailable = "available"
)

const (
	defaultTimeLimitMinutes = 30
	defaultPassingScore     = 70
	isoLayout               = "2006-01-02T15:04:05.999999"
)

// StoredQuestion is a question as the backend keeps it, answer included.
type StoredQuestion struct {
	quiz.Question
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

type storedQuiz struct {
	id           string
	title        string
	subject      string
	topic        string
	difficulty   string
	questions    []StoredQuestion
	timeLimit    int
	passingScore float64
	createdAt    time.Time
}

type storedAttempt struct {
	id             string
	quizID         string
	answers        map[string]string
	score          float64
	totalQuestions int
	correctAnswers int
	timeTaken      int
	completed      bool
	passed         bool
	startedAt      time.Time
	completedAt    time.Time
}

type failure struct {
	status  int
	message string
}

type Server struct {
	token   string
	handler http.Handler

	mu           sync.Mutex
	now          func() time.Time
	nextID       int
	timeLimit    int
	quizzes      map[string]*storedQuiz
	quizOrder    []string
	attempts     map[string]*storedAttempt
	attemptOrder []string
	failures     map[string]failure
	calls        map[string]int
	lastGenerate *quiz.GenerateParams
	questions    func(params quiz.GenerateParams) []StoredQuestion
}

// New returns a backend that accepts only requests bearing token.
func New(token string) *Server {
	s := &Server{
		token:     token,
		now:       func() time.Time { return time.Now().UTC() },
		timeLimit: defaultTimeLimitMinutes,
		quizzes:   make(map[string]*storedQuiz),
		attempts:  make(map[string]*storedAttempt),
		failures:  make(map[string]failure),
		calls:     make(map[string]int),
		questions: defaultQuestions,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8000", "http://127.0.0.1:8000", "http://localhost:3000", "http://127.0.0.1:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api/quiz", func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/generate", s.handleGenerate)
		r.Get("/attempts", s.handleAttempts)
		r.Get("/available", s.handleAvailable)
		r.Post("/start/{quizID}", s.handleStart)
		r.Post("/submit/{attemptID}", s.handleSubmit)
		r.Get("/{quizID}", s.handleGetQuiz)
	})

	return r
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Fail makes every later call to op answer status with message as its error.
func (s *Server) Fail(op string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{status: status, message: message}
}

func (s *Server) Recover(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, op)
}

// Calls counts authenticated requests that reached op, failed ones included.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Server) LastGenerate() (quiz.GenerateParams, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastGenerate == nil {
		return quiz.GenerateParams{}, false
	}
	return *s.lastGenerate, true
}

// SetTimeLimit sets the limit in minutes given to quizzes generated from now on.
func (s *Server) SetTimeLimit(minutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeLimit = minutes
}

// SetQuestions replaces the question generator.
func (s *Server) SetQuestions(generate func(params quiz.GenerateParams) []StoredQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = generate
}

func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CorrectAnswers returns the answer key of a stored quiz, one letter per question.
func (s *Server) CorrectAnswers(quizID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.quizzes[quizID]
	if !ok {
		return nil
	}
	answers := make([]string, 0, len(stored.questions))
	for _, question := range stored.questions {
		answers = append(answers, question.CorrectAnswer)
	}
	return answers
}

// beginLocked counts a call to op and reports an injected failure, if any.
// Callers hold s.mu.
func (s *Server) beginLocked(op string) (failure, bool) {
	s.calls[op]++
	injected, ok := s.failures[op]
	return injected, ok
}

func (s *Server) newIDLocked(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s%06d", prefix, s.nextID)
}

var answerLetters = []string{"A", "B", "C", "D"}

func defaultQuestions(params quiz.GenerateParams) []StoredQuestion {
	questions := make([]StoredQuestion, 0, params.NumQuestions)
	for idx := 0; idx < params.NumQuestions; idx++ {
		options := make(map[string]string, len(answerLetters))
		for _, letter := range answerLetters {
			options[letter] = fmt.Sprintf("%s option %s", params.Topic, letter)
		}
		correct := answerLetters[idx%len(answerLetters)]
		questions = append(questions, StoredQuestion{
			Question: quiz.Question{
				Question:   fmt.Sprintf("%s question %d on %s", params.Subject, idx+1, params.Topic),
				Options:    options,
				ExamType:   params.ExamType,
				ExamYear:   quiz.ExamYear(fmt.Sprintf("%d", 2015+idx%8)),
				Difficulty: params.Difficulty,
				Topic:      params.Topic,
			},
			CorrectAnswer: correct,
			Explanation:   fmt.Sprintf("Option %s is correct.", correct),
		})
	}
	return questions
}
