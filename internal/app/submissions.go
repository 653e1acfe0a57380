package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"timed-quiz-service/internal/domain"
)

// SubmitAnswer records the participant's single answer for a question.
func (s *Service) SubmitAnswer(ctx context.Context, questionID, participant, answer string) (domain.Submission, error) {
	displayName := strings.TrimSpace(participant)
	name := domain.Normalize(displayName)
	if name == "" {
		return domain.Submission{}, &domain.ValidationError{Field: "participant", Reason: "is required"}
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return domain.Submission{}, &domain.ValidationError{Field: "answer", Reason: "is required"}
	}

	q, err := s.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.Submission{}, err
	}

	// The question end always applies; a personal timer can only tighten it,
	// so a force end also cuts running timers short.
	deadline := q.EndTime
	timer, err := s.timers.Find(ctx, q.ID, name)
	hasTimer := err == nil
	if err != nil && !errors.Is(err, domain.ErrTimerNotFound) {
		return domain.Submission{}, asStorage("find timer", err)
	}
	if hasTimer && timer.EndTime.Before(deadline) {
		deadline = timer.EndTime
	}

	now := s.now()
	if !q.HasStarted(now) {
		return domain.Submission{}, domain.ErrWindowNotOpen
	}
	if now.After(deadline) {
		return domain.Submission{}, domain.ErrWindowExpired
	}

	if _, err := s.submissions.Find(ctx, q.ID, name); err == nil {
		return domain.Submission{}, domain.ErrDuplicateSubmission
	} else if !errors.Is(err, domain.ErrSubmissionNotFound) {
		return domain.Submission{}, asStorage("find submission", err)
	}

	sub := domain.Submission{
		ID:              uuid.NewString(),
		QuestionID:      q.ID,
		ParticipantName: displayName,
		Participant:     name,
		Answer:          answer,
		IsCorrect:       domain.AnswerMatches(answer, q.CorrectAnswer),
		SubmittedAt:     now,
	}
	if hasTimer {
		secs := domain.ResponseSeconds(timer.StartTime, now)
		sub.ResponseTimeSeconds = &secs
	}

	if err := s.submissions.Insert(ctx, sub); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Submission{}, domain.ErrDuplicateSubmission
		}
		return domain.Submission{}, asStorage("insert submission", err)
	}

	log.Info().
		Str("question_id", q.ID).
		Str("participant", name).
		Str("submission_id", sub.ID).
		Bool("correct", sub.IsCorrect).
		Msg("answer recorded")
	s.publish(ctx, domain.EventSubmissionRecorded, q.ID, sub)
	return sub, nil
}

// HasAnswered reports whether the participant already has a submission.
func (s *Service) HasAnswered(ctx context.Context, questionID, participant string) (bool, error) {
	name := domain.Normalize(participant)
	if name == "" {
		return false, &domain.ValidationError{Field: "participant", Reason: "is required"}
	}
	if _, err := s.GetQuestion(ctx, questionID); err != nil {
		return false, err
	}
	_, err := s.submissions.Find(ctx, questionID, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrSubmissionNotFound):
		return false, nil
	default:
		return false, asStorage("find submission", err)
	}
}

// ListSubmissions returns a question's submissions by submission time,
// optionally only the correct ones.
func (s *Service) ListSubmissions(ctx context.Context, questionID string, correctOnly bool) ([]domain.Submission, error) {
	if _, err := s.GetQuestion(ctx, questionID); err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, asStorage("list submissions", err)
	}
	if !correctOnly {
		return subs, nil
	}
	filtered := subs[:0:0]
	for _, sub := range subs {
		if sub.IsCorrect {
			filtered = append(filtered, sub)
		}
	}
	return filtered, nil
}

// MarkResultViewed flags that the participant has seen the result. Repeated
// calls keep the flag set.
func (s *Service) MarkResultViewed(ctx context.Context, submissionID string) (domain.Submission, error) {
	sub, err := s.submissions.MarkViewed(ctx, submissionID)
	if err != nil {
		if errors.Is(err, domain.ErrSubmissionNotFound) {
			return domain.Submission{}, err
		}
		return domain.Submission{}, asStorage("mark result viewed", err)
	}
	return sub, nil
}
