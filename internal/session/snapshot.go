package session

import "study-assistant/internal/quiz"

// QuestionView is the question under the cursor, options in display order.
type QuestionView struct {
	Index    int
	Number   int
	Text     string
	Options  []quiz.Option
	Selected string
	ExamMeta string
}

// Snapshot is a copy of the session's observable state. It shares nothing
// with the session.
type Snapshot struct {
	State         State
	QuizID        string
	Title         string
	AttemptID     string
	QuestionCount int
	CurrentIndex  int
	Current       *QuestionView
	Answers       quiz.AnswerSet
	Answered      []bool
	Remaining     int
	TimeLimit     int
	TimerLevel    TimerLevel
	CanPrevious   bool
	CanNext       bool
	Busy          bool
	Results       *quiz.Results
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		State:        s.state,
		AttemptID:    s.attemptID,
		CurrentIndex: s.current,
		Answers:      s.answers.Clone(),
		Remaining:    s.remaining,
		TimeLimit:    s.timeLimit,
		TimerLevel:   timerLevel(s.remaining),
		Busy:         s.busy,
	}

	if s.quiz != nil {
		count := s.quiz.QuestionCount()
		snapshot.QuizID = s.quiz.ID
		snapshot.Title = s.quiz.Title
		snapshot.QuestionCount = count
		snapshot.Answered = make([]bool, count)
		for idx := range snapshot.Answered {
			snapshot.Answered[idx] = s.answers.Answered(idx)
		}
		if s.state == StateInProgress || s.state == StateSubmitting {
			snapshot.CanPrevious = s.current > 0
			snapshot.CanNext = s.current < count-1
		}
		if s.current >= 0 && s.current < count {
			question := s.quiz.Questions[s.current]
			snapshot.Current = &QuestionView{
				Index:    s.current,
				Number:   s.current + 1,
				Text:     question.Question,
				Options:  question.OrderedOptions(),
				Selected: s.answers[s.current],
				ExamMeta: question.ExamMeta(),
			}
		}
	}

	if s.results != nil {
		results := *s.results
		results.DetailedResults = append([]quiz.DetailedResult(nil), s.results.DetailedResults...)
		snapshot.Results = &results
	}
	return snapshot
}
