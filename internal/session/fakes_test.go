package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"study-assistant/internal/quiz"
)

type fakeAuth struct {
	mu sync.Mutex
	ok bool
}

func (f *fakeAuth) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ok
}

func (f *fakeAuth) set(ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ok = ok
}

type submitCall struct {
	attemptID string
	answers   quiz.AnswerSet
	timeTaken int
}

type fakeBackend struct {
	mu sync.Mutex

	questionCount int
	timeLimit     int
	correct       string

	generateErr error
	startErr    error
	fetchErr    error
	submitErr   error

	generateCalls []quiz.GenerateParams
	startCalls    int
	fetchCalls    int
	submitCalls   []submitCall

	// When generateGate is set GenerateQuiz signals generateEntered and
	// blocks until the gate is closed.
	generateGate    chan struct{}
	generateEntered chan struct{}
	// submitGate works the same way for SubmitAttempt.
	submitGate    chan struct{}
	submitEntered chan struct{}
	submitted     chan struct{}
}

func newFakeBackend(questionCount int) *fakeBackend {
	return &fakeBackend{
		questionCount: questionCount,
		timeLimit:     1,
		correct:       "A",
		submitted:     make(chan struct{}, 16),
	}
}

func (f *fakeBackend) GenerateQuiz(ctx context.Context, params quiz.GenerateParams) (quiz.Quiz, error) {
	f.mu.Lock()
	f.generateCalls = append(f.generateCalls, params)
	gate, entered := f.generateGate, f.generateEntered
	err := f.generateErr
	count := len(f.generateCalls)
	f.mu.Unlock()

	if gate != nil {
		entered <- struct{}{}
		<-gate
	}
	if err != nil {
		return quiz.Quiz{}, err
	}
	return quiz.Quiz{
		ID:           fmt.Sprintf("quiz-%d", count),
		Title:        params.Subject + " - " + params.Topic + " Quiz",
		Subject:      params.Subject,
		Topic:        params.Topic,
		NumQuestions: f.questionCount,
		TimeLimit:    f.timeLimit,
	}, nil
}

func (f *fakeBackend) StartAttempt(ctx context.Context, quizID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.startErr != nil {
		return "", f.startErr
	}
	return fmt.Sprintf("attempt-%d", f.startCalls), nil
}

func (f *fakeBackend) GetQuiz(ctx context.Context, quizID string) (quiz.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return quiz.Quiz{}, f.fetchErr
	}

	questions := make([]quiz.Question, 0, f.questionCount)
	for idx := 0; idx < f.questionCount; idx++ {
		questions = append(questions, quiz.Question{
			Question: fmt.Sprintf("Question %d", idx+1),
			Options:  map[string]string{"A": "one", "B": "two", "C": "three", "D": "four"},
			ExamType: "WAEC",
			ExamYear: "2019",
		})
	}
	return quiz.Quiz{
		ID:        quizID,
		Title:     "Fetched quiz",
		Questions: questions,
		TimeLimit: f.timeLimit,
	}, nil
}

func (f *fakeBackend) SubmitAttempt(ctx context.Context, attemptID string, answers quiz.AnswerSet, timeTaken int) (quiz.Results, error) {
	f.mu.Lock()
	f.submitCalls = append(f.submitCalls, submitCall{attemptID: attemptID, answers: answers.Clone(), timeTaken: timeTaken})
	err := f.submitErr
	count := f.questionCount
	correct := f.correct
	gate, entered := f.submitGate, f.submitEntered
	f.mu.Unlock()

	if gate != nil {
		entered <- struct{}{}
		<-gate
	}
	f.submitted <- struct{}{}
	if err != nil {
		return quiz.Results{}, err
	}

	results := quiz.Results{TotalQuestions: count, TimeTaken: timeTaken}
	for idx := 0; idx < count; idx++ {
		userAnswer := answers[idx]
		isCorrect := userAnswer == correct
		if isCorrect {
			results.CorrectAnswers++
		}
		results.DetailedResults = append(results.DetailedResults, quiz.DetailedResult{
			Question:      fmt.Sprintf("Question %d", idx+1),
			UserAnswer:    userAnswer,
			CorrectAnswer: correct,
			IsCorrect:     isCorrect,
		})
	}
	if count > 0 {
		results.Score = float64(results.CorrectAnswers) / float64(count) * 100
	}
	results.Passed = results.Score >= 70
	return results, nil
}

func (f *fakeBackend) counts() (generate, start, fetch, submit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.generateCalls), f.startCalls, f.fetchCalls, len(f.submitCalls)
}

func (f *fakeBackend) lastSubmit() submitCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitCalls[len(f.submitCalls)-1]
}

type recordingRenderer struct {
	mu            sync.Mutex
	setups        int
	loading       []string
	quizzes       []Snapshot
	timers        []int
	results       []quiz.Results
	notifications []Notification
	confirm       bool
	prompts       []string
}

func (r *recordingRenderer) ShowSetup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setups++
}

func (r *recordingRenderer) ShowLoading(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = append(r.loading, message)
}

func (r *recordingRenderer) ShowQuiz(snapshot Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes = append(r.quizzes, snapshot)
}

func (r *recordingRenderer) ShowTimer(remaining int, level TimerLevel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers = append(r.timers, remaining)
}

func (r *recordingRenderer) ShowResults(results quiz.Results) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, results)
}

func (r *recordingRenderer) Notify(notification Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, notification)
}

func (r *recordingRenderer) Confirm(prompt string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	return r.confirm
}

func (r *recordingRenderer) lastNotification() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}

func (r *recordingRenderer) resultCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

type memoryHistory struct {
	mu        sync.Mutex
	summaries []quiz.AttemptSummary
}

func (m *memoryHistory) RecordAttempt(ctx context.Context, summary quiz.AttemptSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, summary)
	return nil
}

type testHarness struct {
	session  *Session
	backend  *fakeBackend
	auth     *fakeAuth
	renderer *recordingRenderer
	history  *memoryHistory
}

func newHarness(t *testing.T, questionCount int) *testHarness {
	t.Helper()
	return newHarnessWithTick(t, questionCount, time.Hour)
}

// newHarnessWithTick builds a session; an hour-long tick interval leaves the
// countdown to manual Tick calls.
func newHarnessWithTick(t *testing.T, questionCount int, tick time.Duration) *testHarness {
	t.Helper()

	h := &testHarness{
		backend:  newFakeBackend(questionCount),
		auth:     &fakeAuth{ok: true},
		renderer: &recordingRenderer{confirm: true},
		history:  &memoryHistory{},
	}
	s, err := New(Config{
		Backend:       h.backend,
		Auth:          h.auth,
		Renderer:      h.renderer,
		History:       h.history,
		TickInterval:  tick,
		SubmitTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.session = s
	t.Cleanup(s.Reset)
	return h
}

var mathParams = quiz.GenerateParams{
	Subject:      "Math",
	Topic:        "Algebra",
	Difficulty:   "medium",
	ExamType:     "WAEC",
	NumQuestions: 5,
}

func (h *testHarness) startQuiz(t *testing.T) {
	t.Helper()
	if err := h.session.Generate(context.Background(), mathParams); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := h.session.State(); got != StateInProgress {
		t.Fatalf("expected in_progress after generate, got %s", got)
	}
}
