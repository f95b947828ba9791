package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"study-assistant/internal/auth"
	"study-assistant/internal/backend"
)

var (
	ErrInvalidState       = errors.New("operation not allowed in current state")
	ErrBusy               = errors.New("another request is in progress")
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrExitCancelled      = errors.New("exit cancelled")
	ErrStaleResponse      = errors.New("response discarded: session moved on")
	ErrEmptyQuiz          = errors.New("quiz has no questions")
	ErrNoOption           = errors.New("no option selected")
)

// ValidationError lists the setup fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid quiz settings: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) missingSubjectOrTopic() bool {
	for _, field := range e.Fields {
		if field == "subject" || field == "topic" {
			return true
		}
	}
	return false
}

// NetworkError wraps a failed backend call: either backend.ErrServiceUnavailable
// or a *backend.APIError.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func toValidationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	fields := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		fields = append(fields, strings.ToLower(fieldErr.Field()))
	}
	return &ValidationError{Fields: fields}
}

func wrapNetwork(op string, err error) error {
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return err
	}
	return &NetworkError{Op: op, Err: err}
}

// userMessage picks the text shown for err. Server-provided messages win over
// the per-operation fallback.
func userMessage(err error, fallback string) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.missingSubjectOrTopic() {
			return "Please select a subject and enter a topic"
		}
		return "Please check the quiz settings: " + strings.Join(validationErr.Fields, ", ")
	}

	if errors.Is(err, auth.ErrNotAuthenticated) {
		return "Please login to access quizzes"
	}
	if errors.Is(err, ErrInvalidState) {
		return "That action is not available right now"
	}
	if errors.Is(err, ErrQuestionOutOfRange) {
		return "No such question"
	}
	if errors.Is(err, ErrBusy) {
		return "Please wait for the current request to finish"
	}
	if errors.Is(err, ErrNoOption) {
		return "Please choose one of the options"
	}
	if errors.Is(err, ErrEmptyQuiz) {
		return "The generated quiz has no questions. Please try again."
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}
