package domain

import (
	"testing"
	"time"
)

func secs(v int64) *int64 { return &v }

func TestResolveWinnerPrefersLowerResponseTime(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	t2 := t1.Add(10 * time.Second)

	a := Submission{ID: "a", IsCorrect: true, ResponseTimeSeconds: secs(30), SubmittedAt: t1}
	b := Submission{ID: "b", IsCorrect: true, ResponseTimeSeconds: secs(20), SubmittedAt: t2}
	c := Submission{ID: "c", IsCorrect: false, ResponseTimeSeconds: secs(5), SubmittedAt: t1}

	orders := [][]Submission{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}
	for _, order := range orders {
		winner, ok := ResolveWinner(order)
		if !ok {
			t.Fatalf("expected a winner for %v", order)
		}
		if winner.ID != "b" {
			t.Fatalf("expected b to win, got %s", winner.ID)
		}
	}
}

func TestResolveWinnerMissingResponseTimeIsSlowest(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	early := Submission{ID: "early", IsCorrect: true, SubmittedAt: t0}
	slow := Submission{ID: "slow", IsCorrect: true, ResponseTimeSeconds: secs(110), SubmittedAt: t0.Add(time.Minute)}

	winner, ok := ResolveWinner([]Submission{early, slow})
	if !ok || winner.ID != "slow" {
		t.Fatalf("expected timed submission to beat untimed one, got %+v", winner)
	}
}

func TestResolveWinnerTieBreaksBySubmittedAtThenID(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	subs := []Submission{
		{ID: "z", IsCorrect: true, ResponseTimeSeconds: secs(10), SubmittedAt: t0},
		{ID: "m", IsCorrect: true, ResponseTimeSeconds: secs(10), SubmittedAt: t0},
		{ID: "k", IsCorrect: true, ResponseTimeSeconds: secs(10), SubmittedAt: t0.Add(time.Millisecond)},
	}
	for i := 0; i < 10; i++ {
		rotated := append(append([]Submission{}, subs[i%3:]...), subs[:i%3]...)
		winner, ok := ResolveWinner(rotated)
		if !ok || winner.ID != "m" {
			t.Fatalf("run %d: expected m, got %+v", i, winner)
		}
	}

	untimed := []Submission{
		{ID: "2", IsCorrect: true, SubmittedAt: t0.Add(time.Second)},
		{ID: "1", IsCorrect: true, SubmittedAt: t0.Add(time.Second)},
		{ID: "0", IsCorrect: true, SubmittedAt: t0.Add(2 * time.Second)},
	}
	if winner, _ := ResolveWinner(untimed); winner.ID != "1" {
		t.Fatalf("expected 1, got %s", winner.ID)
	}
}

func TestResolveWinnerNoCorrectSubmissions(t *testing.T) {
	if _, ok := ResolveWinner(nil); ok {
		t.Fatalf("expected no winner for empty input")
	}
	wrong := []Submission{
		{ID: "a", IsCorrect: false, ResponseTimeSeconds: secs(1)},
		{ID: "b", IsCorrect: false},
	}
	if _, ok := ResolveWinner(wrong); ok {
		t.Fatalf("expected no winner when every answer is wrong")
	}
}

func TestRankSubmissionsMatchesResolveWinner(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	subs := []Submission{
		{ID: "d", IsCorrect: true, SubmittedAt: t0},
		{ID: "c", IsCorrect: true, ResponseTimeSeconds: secs(3), SubmittedAt: t0.Add(3 * time.Second)},
		{ID: "b", IsCorrect: false, ResponseTimeSeconds: secs(1), SubmittedAt: t0},
		{ID: "a", IsCorrect: true, ResponseTimeSeconds: secs(3), SubmittedAt: t0.Add(2 * time.Second)},
	}
	ranked := RankSubmissions(subs)
	want := []string{"a", "c", "d"}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d ranked, got %d", len(want), len(ranked))
	}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, ranked[i].ID)
		}
	}
	if subs[0].ID != "d" {
		t.Fatalf("input slice was reordered")
	}
	winner, _ := ResolveWinner(subs)
	if winner.ID != ranked[0].ID {
		t.Fatalf("winner %s disagrees with ranking head %s", winner.ID, ranked[0].ID)
	}
}
