package session

import (
	"fmt"
	"time"

	"study-assistant/internal/quiz"
)

type State int

const (
	StateSetup State = iota
	StateLoading
	StateInProgress
	StateSubmitting
	StateResults
)

func (s State) String() string {
	switch s {
	case StateSetup:
		return "setup"
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "in_progress"
	case StateSubmitting:
		return "submitting"
	case StateResults:
		return "results"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type TimerLevel string

const (
	TimerNormal  TimerLevel = "normal"
	TimerWarning TimerLevel = "warning"
	TimerDanger  TimerLevel = "danger"
)

const (
	warningThresholdSeconds = 600
	dangerThresholdSeconds  = 300
)

func timerLevel(remaining int) TimerLevel {
	switch {
	case remaining <= dangerThresholdSeconds:
		return TimerDanger
	case remaining <= warningThresholdSeconds:
		return TimerWarning
	default:
		return TimerNormal
	}
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
)

const notificationTTL = 5 * time.Second

// Notification is a transient message; renderers drop it after TTL.
type Notification struct {
	Level   NotificationLevel
	Message string
	TTL     time.Duration
}

// Renderer is the display sink. Session never calls it while holding its lock,
// so implementations may call back into the session.
type Renderer interface {
	ShowSetup()
	ShowLoading(message string)
	ShowQuiz(snapshot Snapshot)
	ShowTimer(remaining int, level TimerLevel)
	ShowResults(results quiz.Results)
	Notify(notification Notification)
	Confirm(prompt string) bool
}

// NopRenderer discards everything and confirms every prompt.
type NopRenderer struct{}

func (NopRenderer) ShowSetup() {}
func (NopRenderer) ShowLoading(string) {}
func (NopRenderer) ShowQuiz(Snapshot) {}
func (NopRenderer) ShowTimer(int, TimerLevel) {}
func (NopRenderer) ShowResults(quiz.Results) {}
func (NopRenderer) Notify(Notification) {}
func (NopRenderer) Confirm(string) bool { return true }
