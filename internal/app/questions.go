package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"timed-quiz-service/internal/domain"
)

// CreateQuestion validates and stores a new question.
func (s *Service) CreateQuestion(ctx context.Context, input domain.NewQuestion) (domain.Question, error) {
	input = input.Normalized()
	input.StartTime = truncate(input.StartTime)
	input.EndTime = truncate(input.EndTime)
	if err := input.Validate(); err != nil {
		return domain.Question{}, err
	}

	q := domain.Question{
		ID:            uuid.NewString(),
		Text:          input.Text,
		Type:          input.Type,
		Options:       input.Options,
		CorrectAnswer: input.CorrectAnswer,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		CreatedAt:     s.now(),
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return domain.Question{}, asStorage("create question", err)
	}

	log.Info().Str("question_id", q.ID).Time("start", q.StartTime).Time("end", q.EndTime).Msg("question created")
	s.publish(ctx, domain.EventQuestionCreated, q.ID, q)
	return q, nil
}

// GetQuestion loads a question by id.
func (s *Service) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return domain.Question{}, err
		}
		return domain.Question{}, asStorage("get question", err)
	}
	return q, nil
}

// ListQuestions returns the schedule ordered by start time.
func (s *Service) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	qs, err := s.questions.List(ctx)
	if err != nil {
		return nil, asStorage("list questions", err)
	}
	return qs, nil
}

// ActiveQuestion returns the question open at now, preferring the most
// recent start. It returns domain.ErrNoActiveQuestion when nothing is open.
func (s *Service) ActiveQuestion(ctx context.Context, now time.Time) (domain.Question, error) {
	q, err := s.questions.ActiveAt(ctx, now)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveQuestion) {
			return domain.Question{}, err
		}
		return domain.Question{}, asStorage("active question", err)
	}
	return q, nil
}

// ForceEndQuestion closes a question now. Ending an already ended question
// returns it unchanged.
func (s *Service) ForceEndQuestion(ctx context.Context, id string) (domain.Question, error) {
	now := s.now()
	before, err := s.GetQuestion(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}

	q, err := s.questions.ForceEnd(ctx, id, now)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return domain.Question{}, err
		}
		return domain.Question{}, asStorage("force end question", err)
	}

	if !q.EndTime.Equal(before.EndTime) {
		log.Info().Str("question_id", id).Time("end", q.EndTime).Msg("question ended early")
		s.publish(ctx, domain.EventQuestionEnded, id, q)
	}
	return q, nil
}

func asStorage(op string, err error) error {
	if errors.Is(err, domain.ErrStorage) {
		return err
	}
	return domain.NewStorageError(op, err)
}
