package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewQuestionValidate(t *testing.T) {
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	valid := NewQuestion{
		Text:          "Pick one",
		Type:          QuestionTypeMultipleChoice,
		Options:       []string{" Dates ", "Figs"},
		CorrectAnswer: "Dates",
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
	}
	if err := valid.Normalized().Validate(); err != nil {
		t.Fatalf("expected valid question, got %v", err)
	}

	cases := map[string]func(n *NewQuestion){
		"end equals start":   func(n *NewQuestion) { n.EndTime = n.StartTime },
		"end before start":   func(n *NewQuestion) { n.EndTime = n.StartTime.Add(-time.Second) },
		"missing text":       func(n *NewQuestion) { n.Text = "  " },
		"missing answer":     func(n *NewQuestion) { n.CorrectAnswer = "" },
		"single option":      func(n *NewQuestion) { n.Options = []string{"Dates"} },
		"duplicate options":  func(n *NewQuestion) { n.Options = []string{"Dates", " Dates"} },
		"empty option":       func(n *NewQuestion) { n.Options = []string{"Dates", " "} },
		"answer not offered": func(n *NewQuestion) { n.CorrectAnswer = "Olives" },
		"unknown type":       func(n *NewQuestion) { n.Type = "essay" },
		"text with options":  func(n *NewQuestion) { n.Type = QuestionTypeText },
		"missing start":      func(n *NewQuestion) { n.StartTime = time.Time{} },
	}
	for name, mutate := range cases {
		n := valid
		n.Options = append([]string(nil), valid.Options...)
		mutate(&n)
		err := n.Normalized().Validate()
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestNormalizedDefaultsType(t *testing.T) {
	n := NewQuestion{Text: " q ", CorrectAnswer: " a "}.Normalized()
	if n.Type != QuestionTypeText || n.Text != "q" || n.CorrectAnswer != "a" {
		t.Fatalf("unexpected normalization: %+v", n)
	}
}

func TestAnswerMatchesIgnoresCaseAndSpace(t *testing.T) {
	if !AnswerMatches(" Paris ", "paris") {
		t.Fatalf("expected match")
	}
	if AnswerMatches("Pariss", "paris") {
		t.Fatalf("expected no fuzzy matching")
	}
	if Normalize("  ALICE ") != Normalize("alice") {
		t.Fatalf("expected names to normalize equal")
	}
}

func TestStorageErrorMatching(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageError("insert timer", cause)
	if !errors.Is(err, ErrStorage) || !errors.Is(err, cause) {
		t.Fatalf("storage error should match ErrStorage and its cause")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("storage error must not look like validation")
	}
}
