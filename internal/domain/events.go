package domain

import "time"

// EventType names an integration event emitted after a state change.
type EventType string

const (
	EventQuestionCreated    EventType = "question.created"
	EventQuestionEnded      EventType = "question.ended"
	EventSubmissionRecorded EventType = "submission.recorded"
)

// Event is published to back-office consumers once a write has committed.
type Event struct {
	Type       EventType `json:"type"`
	QuestionID string    `json:"questionId"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurredAt"`
}
