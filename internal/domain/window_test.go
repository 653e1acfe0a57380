package domain

import (
	"testing"
	"time"
)

func sampleQuestion() Question {
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	return Question{
		ID:            "q1",
		Text:          "Capital of France?",
		Type:          QuestionTypeText,
		CorrectAnswer: "Paris",
		StartTime:     start,
		EndTime:       start.Add(10 * time.Minute),
	}
}

func TestIsOpenBoundsInclusive(t *testing.T) {
	q := sampleQuestion()
	cases := []struct {
		at   time.Time
		open bool
	}{
		{q.StartTime.Add(-time.Nanosecond), false},
		{q.StartTime, true},
		{q.StartTime.Add(time.Minute), true},
		{q.EndTime, true},
		{q.EndTime.Add(time.Nanosecond), false},
	}
	for _, c := range cases {
		if got := q.IsOpen(c.at); got != c.open {
			t.Fatalf("IsOpen(%s) = %v, want %v", c.at, got, c.open)
		}
	}
}

func TestForceEnd(t *testing.T) {
	q := sampleQuestion()
	now := q.StartTime.Add(3 * time.Minute)

	if !q.ForceEnd(now) {
		t.Fatalf("expected end time to change")
	}
	if !q.EndTime.Equal(now) {
		t.Fatalf("expected end %s, got %s", now, q.EndTime)
	}
	if q.ForceEnd(now.Add(time.Minute)) {
		t.Fatalf("ending an ended question must be a no-op")
	}
	if !q.EndTime.Equal(now) {
		t.Fatalf("end time must never be extended")
	}
}

func TestForceEndBeforeStartClampsToStart(t *testing.T) {
	q := sampleQuestion()
	if !q.ForceEnd(q.StartTime.Add(-time.Hour)) {
		t.Fatalf("expected end time to change")
	}
	if !q.EndTime.Equal(q.StartTime) {
		t.Fatalf("end time moved before start: %s", q.EndTime)
	}
}

func TestPersonalEndIsBoundedByQuestionEnd(t *testing.T) {
	q := sampleQuestion()
	start := q.EndTime.Add(-30 * time.Second)
	if end := PersonalEnd(start, 2*time.Minute, q.EndTime); !end.Equal(q.EndTime) {
		t.Fatalf("expected clamp to %s, got %s", q.EndTime, end)
	}
	start = q.StartTime
	if end := PersonalEnd(start, 2*time.Minute, q.EndTime); !end.Equal(start.Add(2 * time.Minute)) {
		t.Fatalf("expected full duration, got %s", end)
	}
}

func TestResponseSecondsFloorsAndClamps(t *testing.T) {
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	if got := ResponseSeconds(start, start.Add(1999*time.Millisecond)); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := ResponseSeconds(start, start.Add(-time.Second)); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}
