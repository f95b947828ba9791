package session

import (
	"context"
	"errors"
	"io"
	"log"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"study-assistant/internal/auth"
	"study-assistant/internal/quiz"
)

const (
	defaultTickInterval  = time.Second
	defaultSubmitTimeout = 10 * time.Second
	historyTimeout       = 2 * time.Second

	exitPrompt = "Are you sure you want to exit? Your progress will be lost."
)

// Backend is the subset of the quiz REST API a session drives.
type Backend interface {
	GenerateQuiz(ctx context.Context, params quiz.GenerateParams) (quiz.Quiz, error)
	StartAttempt(ctx context.Context, quizID string) (string, error)
	GetQuiz(ctx context.Context, quizID string) (quiz.Quiz, error)
	SubmitAttempt(ctx context.Context, attemptID string, answers quiz.AnswerSet, timeTaken int) (quiz.Results, error)
}

type Authenticator interface {
	Authenticated() bool
}

type HistoryRecorder interface {
	RecordAttempt(ctx context.Context, summary quiz.AttemptSummary) error
}

type Config struct {
	Backend  Backend
	Auth     Authenticator
	Renderer Renderer
	// History is optional; finished attempts are recorded when set.
	History HistoryRecorder
	Logger  *log.Logger

	TickInterval  time.Duration
	SubmitTimeout time.Duration
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Session is the quiz-taking state machine for one user. All methods are safe
// for concurrent use; backend calls run without the lock held and the busy
// flag rejects overlapping generate/start/submit requests.
type Session struct {
	backend       Backend
	auth          Authenticator
	renderer      Renderer
	history       HistoryRecorder
	logger        *log.Logger
	tickInterval  time.Duration
	submitTimeout time.Duration

	mu         sync.Mutex
	state      State
	quiz       *quiz.Quiz
	attemptID  string
	// pendingAttempt is an attempt the backend issued whose quiz failed to
	// load; Start reuses it instead of opening a second one.
	pendingAttempt string
	answers    quiz.AnswerSet
	current    int
	timeLimit  int
	remaining  int
	results    *quiz.Results
	lastParams *quiz.GenerateParams
	busy       bool
	// epoch changes on every reset so late responses can be recognised.
	epoch     uint64
	countdown *countdown
}

func New(cfg Config) (*Session, error) {
	if cfg.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if cfg.Auth == nil {
		return nil, errors.New("authenticator is required")
	}

	renderer := cfg.Renderer
	if renderer == nil {
		renderer = NopRenderer{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = defaultTickInterval
	}
	submitTimeout := cfg.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}

	return &Session{
		backend:       cfg.Backend,
		auth:          cfg.Auth,
		renderer:      renderer,
		history:       cfg.History,
		logger:        logger,
		tickInterval:  tickInterval,
		submitTimeout: submitTimeout,
		state:         StateSetup,
		answers:       quiz.AnswerSet{},
	}, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastParams returns the params of the last successful generate.
func (s *Session) LastParams() (quiz.GenerateParams, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastParams == nil {
		return quiz.GenerateParams{}, false
	}
	return *s.lastParams, true
}

// Generate asks the backend for a new quiz and starts an attempt on it.
func (s *Session) Generate(ctx context.Context, params quiz.GenerateParams) error {
	return s.generate(ctx, params, StateSetup)
}

// generate runs from state from and returns there when the backend fails.
func (s *Session) generate(ctx context.Context, params quiz.GenerateParams, from State) error {
	params = params.Normalize()

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return s.fail(ErrBusy, "")
	}
	if s.state != from {
		s.mu.Unlock()
		return s.fail(ErrInvalidState, "")
	}
	if !s.auth.Authenticated() {
		s.mu.Unlock()
		return s.fail(auth.ErrNotAuthenticated, "")
	}
	if err := validate.Struct(params); err != nil {
		s.mu.Unlock()
		return s.fail(toValidationError(err), "")
	}
	s.busy = true
	s.state = StateLoading
	epoch := s.epoch
	s.mu.Unlock()

	s.renderer.ShowLoading("Generating quiz questions...")
	generated, err := s.backend.GenerateQuiz(ctx, params)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.logger.Printf("discarding generate response for %s/%s: session was reset", params.Subject, params.Topic)
		return ErrStaleResponse
	}
	if err != nil {
		s.state = from
		s.busy = false
		var previous *quiz.Results
		if from == StateResults && s.results != nil {
			kept := *s.results
			previous = &kept
		}
		s.mu.Unlock()
		if previous != nil {
			s.renderer.ShowResults(*previous)
		} else {
			s.renderer.ShowSetup()
		}
		return s.fail(wrapNetwork("generate quiz", err), "Failed to generate quiz. Please try again.")
	}
	s.quiz = &generated
	s.attemptID = ""
	s.pendingAttempt = ""
	s.answers = quiz.AnswerSet{}
	s.current = 0
	s.results = nil
	s.lastParams = &params
	s.mu.Unlock()

	s.logger.Printf("generated quiz %s (%s)", generated.ID, generated.Title)
	return s.begin(ctx, epoch, generated, "")
}

// Start requests an attempt for the quiz held in Loading. Generate calls it
// implicitly; calling it directly retries after a failed start.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return s.fail(ErrBusy, "")
	}
	if s.state != StateLoading || s.quiz == nil {
		s.mu.Unlock()
		return s.fail(ErrInvalidState, "")
	}
	if !s.auth.Authenticated() {
		s.mu.Unlock()
		return s.fail(auth.ErrNotAuthenticated, "")
	}
	s.busy = true
	epoch := s.epoch
	generated := *s.quiz
	pending := s.pendingAttempt
	s.mu.Unlock()

	return s.begin(ctx, epoch, generated, pending)
}

// begin starts an attempt, unless attemptID already names one, and loads the
// full quiz. The caller must have set busy.
func (s *Session) begin(ctx context.Context, epoch uint64, generated quiz.Quiz, attemptID string) error {
	if attemptID == "" {
		s.renderer.ShowLoading("Starting quiz...")
		started, err := s.backend.StartAttempt(ctx, generated.ID)
		if err != nil {
			return s.abortStart(epoch, "", wrapNetwork("start quiz", err), "Failed to start quiz. Please try again.")
		}
		attemptID = started
	} else {
		s.renderer.ShowLoading("Loading quiz...")
	}

	full, err := s.backend.GetQuiz(ctx, generated.ID)
	if err != nil {
		return s.abortStart(epoch, attemptID, wrapNetwork("load quiz", err), "Failed to load quiz. Please try again.")
	}
	fillFromGenerated(&full, generated)
	if full.QuestionCount() == 0 {
		return s.abortStart(epoch, attemptID, ErrEmptyQuiz, "")
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.logger.Printf("discarding attempt %s for quiz %s: session was reset", attemptID, full.ID)
		return ErrStaleResponse
	}
	s.quiz = &full
	s.attemptID = attemptID
	s.pendingAttempt = ""
	s.answers = quiz.AnswerSet{}
	s.current = 0
	s.results = nil
	s.timeLimit = full.TimeLimitSeconds()
	s.remaining = s.timeLimit
	s.state = StateInProgress
	s.busy = false
	s.startCountdownLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Printf("attempt %s started for quiz %s (%d questions, %ds)", attemptID, full.ID, full.QuestionCount(), full.TimeLimitSeconds())
	s.renderer.ShowQuiz(snapshot)
	return nil
}

// fillFromGenerated copies what the fetched quiz left out from the quiz the
// generate call returned.
func fillFromGenerated(full *quiz.Quiz, generated quiz.Quiz) {
	if full.ID == "" {
		full.ID = generated.ID
	}
	if full.Title == "" {
		full.Title = generated.Title
	}
	if full.Subject == "" {
		full.Subject = generated.Subject
	}
	if full.Topic == "" {
		full.Topic = generated.Topic
	}
	if full.Difficulty == "" {
		full.Difficulty = generated.Difficulty
	}
	if full.PassingScore <= 0 {
		full.PassingScore = generated.PassingScore
	}
	if full.TimeLimit <= 0 {
		full.TimeLimit = generated.TimeLimit
	}
	if full.TimeLimit <= 0 {
		full.TimeLimit = quiz.DefaultTimeLimitMinutes
	}
}

// abortStart leaves the session in Loading with the generated quiz so the
// start can be retried. A non-empty attemptID is kept for that retry.
func (s *Session) abortStart(epoch uint64, attemptID string, err error, fallback string) error {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	s.pendingAttempt = attemptID
	s.busy = false
	s.mu.Unlock()
	return s.fail(err, fallback)
}

// SelectAnswer records optionLetter for the question. The letter is not
// checked against the question's options; the backend scores what it gets.
func (s *Session) SelectAnswer(questionIndex int, optionLetter string) error {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return s.fail(ErrInvalidState, "")
	}
	if questionIndex < 0 || questionIndex >= s.quiz.QuestionCount() {
		s.mu.Unlock()
		return s.fail(ErrQuestionOutOfRange, "")
	}
	letter := quiz.NormalizeLetter(optionLetter)
	if letter == "" {
		s.mu.Unlock()
		return s.fail(ErrNoOption, "")
	}
	s.answers[questionIndex] = letter
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.renderer.ShowQuiz(snapshot)
	return nil
}

// Navigate moves to index. Out-of-range indices leave the pointer unchanged.
func (s *Session) Navigate(index int) error {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return ErrInvalidState
	}
	if index < 0 || index >= s.quiz.QuestionCount() {
		s.mu.Unlock()
		return ErrQuestionOutOfRange
	}
	s.current = index
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.renderer.ShowQuiz(snapshot)
	return nil
}

// Previous is a no-op on the first question.
func (s *Session) Previous() error {
	return s.step(-1)
}

// Next is a no-op on the last question.
func (s *Session) Next() error {
	return s.step(1)
}

func (s *Session) step(delta int) error {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return ErrInvalidState
	}
	target := s.current + delta
	s.mu.Unlock()

	if err := s.Navigate(target); err != nil && !errors.Is(err, ErrQuestionOutOfRange) {
		return err
	}
	return nil
}

func (s *Session) Submit(ctx context.Context) error {
	return s.submit(ctx, false)
}

func (s *Session) submit(ctx context.Context, forced bool) error {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		if forced {
			return ErrInvalidState
		}
		return s.fail(ErrInvalidState, "")
	}
	if s.busy {
		s.mu.Unlock()
		return s.fail(ErrBusy, "")
	}
	if !s.auth.Authenticated() {
		s.mu.Unlock()
		return s.fail(auth.ErrNotAuthenticated, "")
	}
	s.stopCountdownLocked()
	timeTaken := s.timeLimit - s.remaining
	answers := s.answers.Clone()
	attemptID := s.attemptID
	epoch := s.epoch
	taken := *s.quiz
	s.state = StateSubmitting
	s.busy = true
	s.mu.Unlock()

	if forced {
		s.logger.Printf("time expired: submitting attempt %s with %d of %d answered", attemptID, len(answers), taken.QuestionCount())
		s.renderer.Notify(Notification{Level: LevelInfo, Message: "Time is up! Submitting your answers.", TTL: notificationTTL})
	}
	s.renderer.ShowLoading("Submitting quiz...")
	results, err := s.backend.SubmitAttempt(ctx, attemptID, answers, timeTaken)

	s.mu.Lock()
	if s.epoch != epoch || s.attemptID != attemptID {
		s.mu.Unlock()
		s.logger.Printf("discarding submit response for attempt %s: no longer active", attemptID)
		return ErrStaleResponse
	}
	s.busy = false
	if err != nil {
		s.state = StateInProgress
		if s.remaining > 0 {
			s.startCountdownLocked()
		}
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		s.renderer.ShowQuiz(snapshot)
		return s.fail(wrapNetwork("submit quiz", err), "Failed to submit quiz. Please try again.")
	}
	if results.TimeTaken == 0 {
		results.TimeTaken = timeTaken
	}
	s.results = &results
	s.state = StateResults
	s.mu.Unlock()

	s.logger.Printf("attempt %s submitted: score=%.1f passed=%t", attemptID, results.Score, results.Passed)
	s.recordHistory(attemptID, taken, results)
	s.renderer.ShowResults(results)
	return nil
}

func (s *Session) recordHistory(attemptID string, taken quiz.Quiz, results quiz.Results) {
	if s.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	summary := quiz.AttemptSummary{
		AttemptID:      attemptID,
		QuizID:         taken.ID,
		Title:          taken.Title,
		Subject:        taken.Subject,
		Topic:          taken.Topic,
		Score:          results.Score,
		CorrectAnswers: results.CorrectAnswers,
		TotalQuestions: results.TotalQuestions,
		Passed:         results.Passed,
		Completed:      true,
		TimeTaken:      results.TimeTaken,
		CompletedAt:    time.Now().UTC(),
	}
	if err := s.history.RecordAttempt(ctx, summary); err != nil {
		s.logger.Printf("record attempt %s: %v", attemptID, err)
	}
}

// Retake replays the last successful generate. Without one it returns to setup.
func (s *Session) Retake(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return s.fail(ErrBusy, "")
	}
	if s.state != StateResults && s.state != StateSetup {
		s.mu.Unlock()
		return s.fail(ErrInvalidState, "")
	}
	if s.lastParams == nil {
		s.resetLocked()
		s.mu.Unlock()
		s.renderer.ShowSetup()
		return nil
	}
	params := *s.lastParams
	from := s.state
	s.mu.Unlock()

	return s.generate(ctx, params, from)
}

// Exit abandons the attempt in progress after the renderer confirms.
func (s *Session) Exit() error {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return s.fail(ErrInvalidState, "")
	}
	epoch := s.epoch
	s.mu.Unlock()

	if !s.renderer.Confirm(exitPrompt) {
		return ErrExitCancelled
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	if s.state != StateInProgress {
		s.mu.Unlock()
		return s.fail(ErrInvalidState, "")
	}
	attemptID := s.attemptID
	s.resetLocked()
	s.mu.Unlock()

	s.logger.Printf("attempt %s abandoned", attemptID)
	s.renderer.ShowSetup()
	return nil
}

// Reset clears the quiz, attempt, answers and timer. The last generate params
// survive so Retake keeps working.
func (s *Session) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.renderer.ShowSetup()
}

func (s *Session) resetLocked() {
	s.stopCountdownLocked()
	s.epoch++
	s.state = StateSetup
	s.quiz = nil
	s.attemptID = ""
	s.pendingAttempt = ""
	s.answers = quiz.AnswerSet{}
	s.current = 0
	s.timeLimit = 0
	s.remaining = 0
	s.results = nil
	s.busy = false
}

func (s *Session) fail(err error, fallback string) error {
	s.renderer.Notify(Notification{
		Level:   LevelError,
		Message: userMessage(err, fallback),
		TTL:     notificationTTL,
	})
	return err
}
