package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"timed-quiz-service/internal/domain"
)

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// classify maps a use-case error onto an HTTP status and a stable code.
func classify(err error) (int, errorPayload) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorPayload{Code: "validation_error", Message: verr.Error(), Field: verr.Field}
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound, errorPayload{Code: "question_not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrSubmissionNotFound):
		return http.StatusNotFound, errorPayload{Code: "submission_not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrNoActiveQuestion):
		return http.StatusNotFound, errorPayload{Code: "no_active_question", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicateSubmission):
		return http.StatusConflict, errorPayload{Code: "duplicate_submission", Message: err.Error()}
	case errors.Is(err, domain.ErrWindowNotOpen):
		return http.StatusUnprocessableEntity, errorPayload{Code: "window_not_open", Message: err.Error()}
	case errors.Is(err, domain.ErrWindowClosed):
		return http.StatusUnprocessableEntity, errorPayload{Code: "window_closed", Message: err.Error()}
	case errors.Is(err, domain.ErrWindowExpired):
		return http.StatusUnprocessableEntity, errorPayload{Code: "window_expired", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Code: "storage_error", Message: "internal error"}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: payload})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}
