package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

// Handler exposes the quiz use cases as a JSON API.
type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter wires the REST API, the play socket and the health check.
func NewRouter(service *app.Service) *mux.Router {
	h := NewHandler(service)
	ws := NewWSHandler(service)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", ws.ServeWS)

	r.HandleFunc("/questions", h.CreateQuestion).Methods(http.MethodPost)
	r.HandleFunc("/questions", h.ListQuestions).Methods(http.MethodGet)
	r.HandleFunc("/questions/active", h.ActiveQuestion).Methods(http.MethodGet)
	r.HandleFunc("/questions/{id}", h.GetQuestion).Methods(http.MethodGet)
	r.HandleFunc("/questions/{id}/end", h.ForceEndQuestion).Methods(http.MethodPost)
	r.HandleFunc("/questions/{id}/timers", h.GetOrCreateTimer).Methods(http.MethodPost)
	r.HandleFunc("/questions/{id}/submissions", h.SubmitAnswer).Methods(http.MethodPost)
	r.HandleFunc("/questions/{id}/submissions", h.ListSubmissions).Methods(http.MethodGet)
	r.HandleFunc("/questions/{id}/submissions/status", h.SubmissionStatus).Methods(http.MethodGet)
	r.HandleFunc("/questions/{id}/winner", h.GetWinner).Methods(http.MethodGet)
	r.HandleFunc("/questions/{id}/ranking", h.Ranking).Methods(http.MethodGet)
	r.HandleFunc("/submissions/{id}/viewed", h.MarkResultViewed).Methods(http.MethodPost)
	return r
}

type participantRequest struct {
	Participant string `json:"participant"`
}

type answerRequest struct {
	Participant string `json:"participant"`
	Answer      string `json:"answer"`
}

type winnerResponse struct {
	QuestionID string            `json:"questionId"`
	Winner     domain.Submission `json:"winner"`
}

type statusResponse struct {
	QuestionID  string `json:"questionId"`
	Participant string `json:"participant"`
	Answered    bool   `json:"answered"`
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var input domain.NewQuestion
	if !decode(w, r, &input) {
		return
	}
	q, err := h.service.CreateQuestion(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.service.ListQuestions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

// ActiveQuestion serves the question open at ?at= (RFC 3339), defaulting to now.
func (h *Handler) ActiveQuestion(w http.ResponseWriter, r *http.Request) {
	now := h.service.Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeError(w, r, &domain.ValidationError{Field: "at", Reason: "must be an RFC 3339 timestamp"})
			return
		}
		now = at
	}
	q, err := h.service.ActiveQuestion(r.Context(), now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.GetQuestion(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) ForceEndQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.ForceEndQuestion(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) GetOrCreateTimer(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if !decode(w, r, &req) {
		return
	}
	timer, err := h.service.GetOrCreateTimer(r.Context(), mux.Vars(r)["id"], req.Participant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, timer)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	sub, err := h.service.SubmitAnswer(r.Context(), mux.Vars(r)["id"], req.Participant, req.Answer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	correctOnly := false
	if raw := r.URL.Query().Get("correct"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, &domain.ValidationError{Field: "correct", Reason: "must be a boolean"})
			return
		}
		correctOnly = v
	}
	subs, err := h.service.ListSubmissions(r.Context(), mux.Vars(r)["id"], correctOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) SubmissionStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	participant := r.URL.Query().Get("participant")
	answered, err := h.service.HasAnswered(r.Context(), id, participant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{QuestionID: id, Participant: participant, Answered: answered})
}

// GetWinner answers 404 no_winner when the question exists but nobody
// answered correctly yet.
func (h *Handler) GetWinner(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	winner, ok, err := h.service.GetWinner(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorPayload{Code: "no_winner", Message: "no correct submission yet"}})
		return
	}
	writeJSON(w, http.StatusOK, winnerResponse{QuestionID: id, Winner: winner})
}

func (h *Handler) Ranking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.service.Ranking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (h *Handler) MarkResultViewed(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.MarkResultViewed(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, &domain.ValidationError{Reason: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}
