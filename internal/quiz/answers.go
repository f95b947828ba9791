package quiz

import (
	"math"
	"sort"
	"strings"
)

// AnswerSet maps a zero-based question index to the chosen option letter.
// encoding/json writes the keys as decimal strings, which is what the backend
// reads back with answers.get(str(i)).
type AnswerSet map[int]string

func (a AnswerSet) Clone() AnswerSet {
	clone := make(AnswerSet, len(a))
	for index, letter := range a {
		clone[index] = letter
	}
	return clone
}

func (a AnswerSet) Answered(index int) bool {
	_, ok := a[index]
	return ok
}

// Indices returns the answered indices in ascending order.
func (a AnswerSet) Indices() []int {
	indices := make([]int, 0, len(a))
	for index := range a {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices
}

const UnansweredDisplay = "Not answered"

type DetailedResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation,omitempty"`
}

// Answered reports whether the user answered. An empty user_answer is the
// backend's unanswered sentinel.
func (d DetailedResult) Answered() bool {
	return strings.TrimSpace(d.UserAnswer) != ""
}

func (d DetailedResult) DisplayAnswer() string {
	if !d.Answered() {
		return UnansweredDisplay
	}
	return d.UserAnswer
}

type Results struct {
	Score           float64          `json:"score"`
	CorrectAnswers  int              `json:"correct_answers"`
	TotalQuestions  int              `json:"total_questions"`
	Passed          bool             `json:"passed"`
	TimeTaken       int              `json:"time_taken"`
	DetailedResults []DetailedResult `json:"detailed_results"`
}

// Unanswered returns the indices of questions left without an answer.
func (r Results) Unanswered() []int {
	indices := make([]int, 0)
	for index, detail := range r.DetailedResults {
		if !detail.Answered() {
			indices = append(indices, index)
		}
	}
	return indices
}

func (r Results) RoundedScore() int {
	return int(math.Round(r.Score))
}
