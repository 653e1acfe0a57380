package app

import (
	"context"

	"timed-quiz-service/internal/domain"
)

// GetWinner recomputes the winner from all stored submissions. ok is false
// when the question has no correct submission yet.
func (s *Service) GetWinner(ctx context.Context, questionID string) (winner domain.Submission, ok bool, err error) {
	if _, err := s.GetQuestion(ctx, questionID); err != nil {
		return domain.Submission{}, false, err
	}
	subs, err := s.submissions.ListByQuestion(ctx, questionID)
	if err != nil {
		return domain.Submission{}, false, asStorage("list submissions", err)
	}
	winner, ok = domain.ResolveWinner(subs)
	return winner, ok, nil
}

// Ranking returns the correct submissions in winning order.
func (s *Service) Ranking(ctx context.Context, questionID string) ([]domain.Submission, error) {
	if _, err := s.GetQuestion(ctx, questionID); err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, asStorage("list submissions", err)
	}
	return domain.RankSubmissions(subs), nil
}
