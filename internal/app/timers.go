package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"timed-quiz-service/internal/domain"
)

// GetOrCreateTimer returns the participant's personal timer for a question,
// creating it on first access. Concurrent first calls for the same participant
// all observe the single stored timer.
func (s *Service) GetOrCreateTimer(ctx context.Context, questionID, participant string) (domain.PersonalTimer, error) {
	name := domain.Normalize(participant)
	if name == "" {
		return domain.PersonalTimer{}, &domain.ValidationError{Field: "participant", Reason: "is required"}
	}

	q, err := s.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.PersonalTimer{}, err
	}

	now := s.now()
	if q.HasEnded(now) {
		return domain.PersonalTimer{}, domain.ErrWindowClosed
	}
	if !q.HasStarted(now) {
		return domain.PersonalTimer{}, domain.ErrWindowNotOpen
	}

	existing, err := s.timers.Find(ctx, q.ID, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrTimerNotFound) {
		return domain.PersonalTimer{}, asStorage("find timer", err)
	}

	timer := domain.PersonalTimer{
		ID:          uuid.NewString(),
		QuestionID:  q.ID,
		Participant: name,
		StartTime:   now,
		EndTime:     domain.PersonalEnd(now, s.timerDuration, q.EndTime),
	}
	err = s.timers.Insert(ctx, timer)
	switch {
	case err == nil:
		log.Info().Str("question_id", q.ID).Str("participant", name).Time("deadline", timer.EndTime).Msg("timer started")
		return timer, nil
	case errors.Is(err, domain.ErrConflict):
		winner, err := s.timers.Find(ctx, q.ID, name)
		if err != nil {
			return domain.PersonalTimer{}, asStorage("reread timer", err)
		}
		log.Debug().Str("question_id", q.ID).Str("participant", name).Msg("timer race resolved to existing row")
		return winner, nil
	default:
		return domain.PersonalTimer{}, asStorage("insert timer", err)
	}
}
