package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"study-assistant/internal/quiz"
	"study-assistant/internal/session"
)

const finalCountdownSeconds = 10

// terminal renders session output as text. Countdown ticks arrive from the
// timer goroutine, so every write goes through mu.
type terminal struct {
	mu        sync.Mutex
	out       io.Writer
	reader    *bufio.Reader
	lastLevel session.TimerLevel
}

func newTerminal(reader *bufio.Reader, out io.Writer) *terminal {
	return &terminal{
		out:       out,
		reader:    reader,
		lastLevel: session.TimerNormal,
	}
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) ShowSetup() {
	t.printf("Quiz setup. Type 'generate' to create a new quiz.\n")
}

func (t *terminal) ShowLoading(message string) {
	t.printf("%s\n", message)
}

func (t *terminal) ShowQuiz(snapshot session.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastLevel = snapshot.TimerLevel
	if snapshot.Current == nil {
		return
	}
	current := snapshot.Current

	fmt.Fprintln(t.out)
	fmt.Fprintf(t.out, "%s\n", snapshot.Title)
	header := fmt.Sprintf("Question %d of %d", current.Number, snapshot.QuestionCount)
	if current.ExamMeta != "" {
		header += " [" + current.ExamMeta + "]"
	}
	fmt.Fprintf(t.out, "%s\n%s\n\n", header, current.Text)
	for _, option := range current.Options {
		marker := " "
		if option.Letter == current.Selected {
			marker = "*"
		}
		fmt.Fprintf(t.out, "%s %s. %s\n", marker, option.Letter, option.Text)
	}

	answered := 0
	for _, done := range snapshot.Answered {
		if done {
			answered++
		}
	}
	fmt.Fprintf(t.out, "\nAnswered %d/%d  Time left %s\n", answered, snapshot.QuestionCount, session.FormatClock(snapshot.Remaining))
}

// ShowTimer stays quiet except when the level changes and during the final
// seconds.
func (t *terminal) ShowTimer(remaining int, level session.TimerLevel) {
	t.mu.Lock()
	defer t.mu.Unlock()

	changed := level != t.lastLevel
	t.lastLevel = level
	switch {
	case changed && level == session.TimerWarning:
		fmt.Fprintf(t.out, "\n[timer] %s left\n", session.FormatClock(remaining))
	case changed && level == session.TimerDanger:
		fmt.Fprintf(t.out, "\n[timer] only %s left!\n", session.FormatClock(remaining))
	case remaining <= finalCountdownSeconds:
		fmt.Fprintf(t.out, "[timer] %s\n", session.FormatClock(remaining))
	}
}

func (t *terminal) ShowResults(results quiz.Results) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := "not passed"
	if results.Passed {
		status = "passed"
	}
	fmt.Fprintln(t.out)
	fmt.Fprintf(t.out, "Score: %d%% (%d/%d correct) - %s\n", results.RoundedScore(), results.CorrectAnswers, results.TotalQuestions, status)
	fmt.Fprintf(t.out, "Time taken: %s\n", session.FormatClock(results.TimeTaken))
	for idx, detail := range results.DetailedResults {
		verdict := "wrong"
		if detail.IsCorrect {
			verdict = "correct"
		}
		fmt.Fprintf(t.out, "\n%d. %s\n", idx+1, detail.Question)
		fmt.Fprintf(t.out, "   Your answer: %s  Correct answer: %s  [%s]\n", detail.DisplayAnswer(), detail.CorrectAnswer, verdict)
		if explanation := strings.TrimSpace(detail.Explanation); explanation != "" {
			fmt.Fprintf(t.out, "   %s\n", explanation)
		}
	}
	fmt.Fprintln(t.out, "\nType 'retake' to try the same settings again or 'new' for a new quiz.")
}

func (t *terminal) Notify(notification session.Notification) {
	t.printf("[%s] %s\n", notification.Level, notification.Message)
}

// Write lets plain fmt calls share the terminal with the timer goroutine.
func (t *terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.Write(p)
}

// Confirm reads from the command input. Session only asks from inside a
// command, so the loop is not reading concurrently.
func (t *terminal) Confirm(prompt string) bool {
	ok, err := promptYesNo(t.reader, t, prompt+" (yes/no): ")
	if err != nil {
		return false
	}
	return ok
}
