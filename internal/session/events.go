package session

import (
	"context"
	"fmt"

	"study-assistant/internal/quiz"
)

type EventKind int

const (
	EventGenerate EventKind = iota
	EventStart
	EventSelectAnswer
	EventNavigate
	EventPrevious
	EventNext
	EventSubmit
	EventExit
	EventRetake
	EventReset
	EventTimerTick
)

func (k EventKind) String() string {
	switch k {
	case EventGenerate:
		return "generate"
	case EventStart:
		return "start"
	case EventSelectAnswer:
		return "select_answer"
	case EventNavigate:
		return "navigate"
	case EventPrevious:
		return "previous"
	case EventNext:
		return "next"
	case EventSubmit:
		return "submit"
	case EventExit:
		return "exit"
	case EventRetake:
		return "retake"
	case EventReset:
		return "reset"
	case EventTimerTick:
		return "timer_tick"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a user or timer trigger. Only the fields its Kind needs are read.
type Event struct {
	Kind          EventKind
	Params        quiz.GenerateParams
	QuestionIndex int
	Option        string
}

// Dispatch applies ev and returns the resulting snapshot. Failures have
// already been reported to the renderer, so they are only logged here.
func (s *Session) Dispatch(ctx context.Context, ev Event) Snapshot {
	var err error
	switch ev.Kind {
	case EventGenerate:
		err = s.Generate(ctx, ev.Params)
	case EventStart:
		err = s.Start(ctx)
	case EventSelectAnswer:
		err = s.SelectAnswer(ev.QuestionIndex, ev.Option)
	case EventNavigate:
		err = s.Navigate(ev.QuestionIndex)
	case EventPrevious:
		err = s.Previous()
	case EventNext:
		err = s.Next()
	case EventSubmit:
		err = s.Submit(ctx)
	case EventExit:
		err = s.Exit()
	case EventRetake:
		err = s.Retake(ctx)
	case EventReset:
		s.Reset()
	case EventTimerTick:
		s.Tick()
	default:
		err = fmt.Errorf("unknown event %s", ev.Kind)
	}
	if err != nil {
		s.logger.Printf("%s: %v", ev.Kind, err)
	}
	return s.Snapshot()
}
