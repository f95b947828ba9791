package quiz

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestQuestionDecodesExamYearAsStringOrNumber(t *testing.T) {
	payload := `[
		{"question":"Q1","options":{"A":"x"},"exam_year":2019},
		{"question":"Q2","options":{"A":"x"},"exam_year":" 2020 "},
		{"question":"Q3","options":{"A":"x"},"exam_year":null},
		{"question":"Q4","options":{"A":"x"}}
	]`

	var questions []Question
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		t.Fatalf("unmarshal questions: %v", err)
	}

	want := []ExamYear{"2019", "2020", "", ""}
	for idx, question := range questions {
		if question.ExamYear != want[idx] {
			t.Fatalf("question %d exam_year = %q, want %q", idx, question.ExamYear, want[idx])
		}
	}
}

func TestQuestionRejectsNonScalarExamYear(t *testing.T) {
	var question Question
	if err := json.Unmarshal([]byte(`{"question":"Q","exam_year":{"y":1}}`), &question); err == nil {
		t.Fatalf("expected error for object exam_year")
	}
}

func TestOrderedOptionsSortsByLetter(t *testing.T) {
	question := Question{
		Options: map[string]string{"C": "5", "A": "3", "D": "6", "B": "4"},
	}

	got := question.OrderedOptions()
	want := []Option{
		{Letter: "A", Text: "3"},
		{Letter: "B", Text: "4"},
		{Letter: "C", Text: "5"},
		{Letter: "D", Text: "6"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("OrderedOptions = %+v, want %+v", got, want)
	}
}

func TestExamMeta(t *testing.T) {
	cases := []struct {
		question Question
		want     string
	}{
		{Question{ExamType: "WAEC", ExamYear: "2019"}, "WAEC 2019"},
		{Question{ExamType: "JAMB"}, "JAMB"},
		{Question{ExamYear: "2021"}, "2021"},
		{Question{}, ""},
	}

	for _, tc := range cases {
		if got := tc.question.ExamMeta(); got != tc.want {
			t.Fatalf("ExamMeta(%+v) = %q, want %q", tc.question, got, tc.want)
		}
	}
}

func TestNormalizeLetter(t *testing.T) {
	if got := NormalizeLetter(" b "); got != "B" {
		t.Fatalf("NormalizeLetter = %q, want B", got)
	}
	if got := NormalizeLetter("zz"); got != "ZZ" {
		t.Fatalf("NormalizeLetter keeps unknown letters, got %q", got)
	}
}

func TestGenerateParamsNormalizeFillsDefaults(t *testing.T) {
	got := GenerateParams{Subject: " Math ", Topic: "Algebra", Difficulty: " HARD "}.Normalize()
	want := GenerateParams{
		Subject:      "Math",
		Topic:        "Algebra",
		Difficulty:   "hard",
		ExamType:     DefaultExamType,
		NumQuestions: DefaultNumQuestions,
	}
	if got != want {
		t.Fatalf("Normalize = %+v, want %+v", got, want)
	}

	explicit := GenerateParams{Subject: "Physics", Topic: "Motion", Difficulty: "easy", ExamType: "NECO", NumQuestions: 12}
	if normalized := explicit.Normalize(); normalized != explicit {
		t.Fatalf("Normalize changed explicit params: %+v", normalized)
	}
}

func TestQuizTimeLimitSeconds(t *testing.T) {
	q := Quiz{TimeLimit: 30, Questions: make([]Question, 3)}
	if q.TimeLimitSeconds() != 1800 {
		t.Fatalf("TimeLimitSeconds = %d, want 1800", q.TimeLimitSeconds())
	}
	if q.QuestionCount() != 3 {
		t.Fatalf("QuestionCount = %d, want 3", q.QuestionCount())
	}
}
