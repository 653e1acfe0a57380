package domain

import (
	"strings"
	"time"
)

// QuestionType selects how a question is answered.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

// Question is open for answers between StartTime and EndTime, both inclusive.
type Question struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
	StartTime     time.Time    `json:"startTime"`
	EndTime       time.Time    `json:"endTime"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// NewQuestion is the authoring input for a question.
type NewQuestion struct {
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
	StartTime     time.Time    `json:"startTime"`
	EndTime       time.Time    `json:"endTime"`
}

// Normalized returns a copy with trimmed text fields and a defaulted type.
func (n NewQuestion) Normalized() NewQuestion {
	out := n
	out.Text = strings.TrimSpace(n.Text)
	out.CorrectAnswer = strings.TrimSpace(n.CorrectAnswer)
	if out.Type == "" {
		out.Type = QuestionTypeText
	}
	if len(n.Options) > 0 {
		out.Options = make([]string, len(n.Options))
		for i, opt := range n.Options {
			out.Options[i] = strings.TrimSpace(opt)
		}
	}
	return out
}

// Validate checks the structural shape of a (normalized) question.
func (n NewQuestion) Validate() error {
	if n.Text == "" {
		return invalid("text", "is required")
	}
	if n.CorrectAnswer == "" {
		return invalid("correctAnswer", "is required")
	}
	if n.StartTime.IsZero() {
		return invalid("startTime", "is required")
	}
	if n.EndTime.IsZero() {
		return invalid("endTime", "is required")
	}
	if !n.EndTime.After(n.StartTime) {
		return invalid("endTime", "must be after startTime")
	}

	switch n.Type {
	case QuestionTypeText:
		if len(n.Options) > 0 {
			return invalid("options", "only allowed for multiple_choice questions")
		}
	case QuestionTypeMultipleChoice:
		if len(n.Options) < 2 {
			return invalid("options", "multiple_choice needs at least two options")
		}
		seen := make(map[string]struct{}, len(n.Options))
		for _, opt := range n.Options {
			if opt == "" {
				return invalid("options", "options must not be empty")
			}
			if _, dup := seen[opt]; dup {
				return invalid("options", "options must be unique")
			}
			seen[opt] = struct{}{}
		}
		if _, ok := seen[n.CorrectAnswer]; !ok {
			return invalid("correctAnswer", "must be one of the options")
		}
	default:
		return invalid("type", "unsupported question type "+string(n.Type))
	}
	return nil
}

// PersonalTimer is a participant's answer window for a question. One per
// (QuestionID, Participant); never mutated once stored.
type PersonalTimer struct {
	ID          string    `json:"id"`
	QuestionID  string    `json:"questionId"`
	Participant string    `json:"participant"` // normalized
	StartTime   time.Time `json:"personalStartTime"`
	EndTime     time.Time `json:"personalEndTime"`
}

// Submission is a recorded answer. ResponseTimeSeconds is nil when the
// participant answered without a personal timer.
type Submission struct {
	ID                  string    `json:"id"`
	QuestionID          string    `json:"questionId"`
	ParticipantName     string    `json:"name"`
	Participant         string    `json:"normalizedName"`
	Answer              string    `json:"answer"`
	IsCorrect           bool      `json:"isCorrect"`
	ResponseTimeSeconds *int64    `json:"responseTimeSeconds"`
	ResultViewed        bool      `json:"resultViewed"`
	SubmittedAt         time.Time `json:"submittedAt"`
}

// ResponseSeconds is floor(submittedAt - start), clamped at zero.
func ResponseSeconds(start, submittedAt time.Time) int64 {
	d := submittedAt.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
