package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"timed-quiz-service/internal/app"
)

// WSHandler serves the play socket: one connection per participant and
// question, answering timer and answer requests. It never pushes results.
type WSHandler struct {
	service  *app.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.Service) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type answerResult struct {
	SubmissionID        string `json:"submissionId"`
	Correct             bool   `json:"correct"`
	ResponseTimeSeconds *int64 `json:"responseTimeSeconds"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

func errorMessage(err error) outboundMessage[any] {
	_, payload := classify(err)
	return outboundMessage[any]{Type: "error", Payload: payload}
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	questionID := r.URL.Query().Get("questionId")
	name := r.URL.Query().Get("name")
	if questionID == "" || name == "" {
		http.Error(w, "missing questionId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	timer, err := h.service.GetOrCreateTimer(r.Context(), questionID, name)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Str("question_id", questionID).Msg("ws write error")
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "timer", Payload: timer}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "timer":
			timer, err := h.service.GetOrCreateTimer(r.Context(), questionID, name)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "timer", Payload: timer}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "validation_error", Message: "invalid answer payload"}}
				continue
			}
			sub, err := h.service.SubmitAnswer(r.Context(), questionID, name, payload.Answer)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: answerResult{
				SubmissionID:        sub.ID,
				Correct:             sub.IsCorrect,
				ResponseTimeSeconds: sub.ResponseTimeSeconds,
			}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "unsupported", Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}
