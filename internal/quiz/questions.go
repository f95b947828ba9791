package quiz

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type Option struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// Question is the client view of a quiz question. The correct answer is
// stripped by the backend before questions reach the client.
type Question struct {
	ID         string            `json:"id,omitempty"`
	Question   string            `json:"question"`
	Options    map[string]string `json:"options"`
	ExamType   string            `json:"exam_type,omitempty"`
	ExamYear   ExamYear          `json:"exam_year,omitempty"`
	Difficulty string            `json:"difficulty,omitempty"`
	Topic      string            `json:"topic,omitempty"`
}

// ExamYear accepts both "2019" and 2019 on the wire; generated questions are
// not consistent about it.
type ExamYear string

func (y *ExamYear) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*y = ExamYear(strings.TrimSpace(text))
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("exam_year: %w", err)
	}
	*y = ExamYear(number.String())
	return nil
}

// OrderedOptions returns the options sorted by letter.
func (q Question) OrderedOptions() []Option {
	letters := make([]string, 0, len(q.Options))
	for letter := range q.Options {
		letters = append(letters, letter)
	}
	sort.Strings(letters)

	options := make([]Option, 0, len(letters))
	for _, letter := range letters {
		options = append(options, Option{
			Letter: letter,
			Text:   q.Options[letter],
		})
	}
	return options
}

// ExamMeta renders the exam-type/exam-year tag, or "" when neither is set.
func (q Question) ExamMeta() string {
	parts := make([]string, 0, 2)
	if examType := strings.TrimSpace(q.ExamType); examType != "" {
		parts = append(parts, examType)
	}
	if year := strings.TrimSpace(string(q.ExamYear)); year != "" {
		parts = append(parts, year)
	}
	return strings.Join(parts, " ")
}

func NormalizeLetter(answer string) string {
	return strings.ToUpper(strings.TrimSpace(answer))
}
