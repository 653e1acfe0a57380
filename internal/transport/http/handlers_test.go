package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
)

var quizStart = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

type testEnv struct {
	service  *app.Service
	clock    *clockwork.FakeClock
	question domain.Question
}

// newTestEnv creates an open text question and parks the clock a minute in.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := clockwork.NewFakeClockAt(quizStart.Add(time.Minute))
	service := app.NewService(memory.NewQuestionStore(), memory.NewTimerStore(), memory.NewSubmissionStore(),
		app.WithClock(clock))
	q, err := service.CreateQuestion(context.Background(), domain.NewQuestion{
		Text:          "What is the capital of France?",
		CorrectAnswer: "Paris",
		StartTime:     quizStart,
		EndTime:       quizStart.Add(10 * time.Minute),
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return &testEnv{service: service, clock: clock, question: q}
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestCreateAndListQuestions(t *testing.T) {
	env := newTestEnv(t)
	router := NewRouter(env.service)

	rec := do(t, router, http.MethodPost, "/questions", map[string]any{
		"text":          "Pick the fruit",
		"type":          "multiple_choice",
		"options":       []string{"Dates", "Stones"},
		"correctAnswer": "Dates",
		"startTime":     quizStart.Add(time.Hour).Format(time.RFC3339),
		"endTime":       quizStart.Add(2 * time.Hour).Format(time.RFC3339),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[domain.Question](t, rec)
	if created.ID == "" || len(created.Options) != 2 {
		t.Fatalf("unexpected question %+v", created)
	}

	rec = do(t, router, http.MethodGet, "/questions", nil)
	list := decodeBody[[]domain.Question](t, rec)
	if len(list) != 2 || list[0].ID != env.question.ID || list[1].ID != created.ID {
		t.Fatalf("expected schedule ordered by start, got %+v", list)
	}

	rec = do(t, router, http.MethodPost, "/questions", map[string]any{
		"text":          "Broken",
		"correctAnswer": "x",
		"startTime":     quizStart.Format(time.RFC3339),
		"endTime":       quizStart.Format(time.RFC3339),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody[errorBody](t, rec)
	if body.Error.Code != "validation_error" || body.Error.Field != "endTime" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestActiveQuestionEndpoint(t *testing.T) {
	env := newTestEnv(t)
	router := NewRouter(env.service)

	rec := do(t, router, http.MethodGet, "/questions/active", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody[domain.Question](t, rec); got.ID != env.question.ID {
		t.Fatalf("expected active question, got %+v", got)
	}

	rec = do(t, router, http.MethodGet, "/questions/active?at="+quizStart.Add(time.Hour).Format(time.RFC3339), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 later on, got %d", rec.Code)
	}
	if body := decodeBody[errorBody](t, rec); body.Error.Code != "no_active_question" {
		t.Fatalf("unexpected error %+v", body)
	}

	rec = do(t, router, http.MethodGet, "/questions/active?at=yesterday", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad timestamp, got %d", rec.Code)
	}
}

func TestTimerSubmitWinnerFlow(t *testing.T) {
	env := newTestEnv(t)
	router := NewRouter(env.service)
	base := "/questions/" + env.question.ID

	rec := do(t, router, http.MethodPost, base+"/timers", participantRequest{Participant: "Sara"})
	if rec.Code != http.StatusOK {
		t.Fatalf("timer: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	timer := decodeBody[domain.PersonalTimer](t, rec)
	if !timer.EndTime.Equal(env.clock.Now().Add(app.DefaultTimerDuration)) {
		t.Fatalf("unexpected deadline %s", timer.EndTime)
	}

	rec = do(t, router, http.MethodGet, base+"/winner", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected no winner yet, got %d", rec.Code)
	}
	if body := decodeBody[errorBody](t, rec); body.Error.Code != "no_winner" {
		t.Fatalf("expected no_winner, got %+v", body)
	}

	env.clock.Advance(15 * time.Second)
	rec = do(t, router, http.MethodPost, base+"/submissions", answerRequest{Participant: "sara ", Answer: "PARIS"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	sub := decodeBody[domain.Submission](t, rec)

	rec = do(t, router, http.MethodPost, base+"/submissions", answerRequest{Participant: "SARA", Answer: "Rome"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, base+"/submissions/status?participant=Sara", nil)
	if status := decodeBody[statusResponse](t, rec); !status.Answered {
		t.Fatalf("expected answered status, got %+v", status)
	}

	rec = do(t, router, http.MethodGet, base+"/winner", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("winner: expected 200, got %d", rec.Code)
	}
	winner := decodeBody[winnerResponse](t, rec)
	if winner.Winner.ID != sub.ID || *winner.Winner.ResponseTimeSeconds != 15 {
		t.Fatalf("unexpected winner %+v", winner)
	}

	rec = do(t, router, http.MethodGet, base+"/submissions?correct=true", nil)
	if list := decodeBody[[]domain.Submission](t, rec); len(list) != 1 {
		t.Fatalf("expected one correct submission, got %d", len(list))
	}

	rec = do(t, router, http.MethodPost, "/submissions/"+sub.ID+"/viewed", nil)
	if viewed := decodeBody[domain.Submission](t, rec); !viewed.ResultViewed {
		t.Fatalf("expected viewed flag")
	}
}

func TestSubmitAfterDeadlineAndUnknownQuestion(t *testing.T) {
	env := newTestEnv(t)
	router := NewRouter(env.service)

	rec := do(t, router, http.MethodPost, "/questions/nope/submissions", answerRequest{Participant: "A", Answer: "B"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	base := "/questions/" + env.question.ID
	_ = do(t, router, http.MethodPost, base+"/timers", participantRequest{Participant: "Tariq"})
	env.clock.Advance(app.DefaultTimerDuration + time.Second)

	rec = do(t, router, http.MethodPost, base+"/submissions", answerRequest{Participant: "Tariq", Answer: "Paris"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if body := decodeBody[errorBody](t, rec); body.Error.Code != "window_expired" {
		t.Fatalf("expected window_expired, got %+v", body)
	}

	rec = do(t, router, http.MethodPost, base+"/end", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("end: expected 200, got %d", rec.Code)
	}
	ended := decodeBody[domain.Question](t, rec)
	if !ended.EndTime.Equal(env.clock.Now()) {
		t.Fatalf("expected end at now, got %s", ended.EndTime)
	}
	env.clock.Advance(time.Second)
	rec = do(t, router, http.MethodPost, base+"/timers", participantRequest{Participant: "Late"})
	if body := decodeBody[errorBody](t, rec); body.Error.Code != "window_closed" {
		t.Fatalf("expected window_closed, got %+v", body)
	}
}

func TestClassifyHidesStorageDetails(t *testing.T) {
	status, payload := classify(domain.NewStorageError("insert timer", context.DeadlineExceeded))
	if status != http.StatusInternalServerError || payload.Message != "internal error" {
		t.Fatalf("unexpected mapping %d %+v", status, payload)
	}
}
