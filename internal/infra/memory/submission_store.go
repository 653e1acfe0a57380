package memory

import (
	"context"
	"sort"
	"sync"

	"timed-quiz-service/internal/domain"
)

// SubmissionStore is an in-memory implementation of app.SubmissionRepository.
type SubmissionStore struct {
	mu            sync.RWMutex
	byParticipant map[participantKey]string
	byID          map[string]*domain.Submission
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		byParticipant: make(map[participantKey]string),
		byID:          make(map[string]*domain.Submission),
	}
}

func (s *SubmissionStore) Find(_ context.Context, questionID, participant string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byParticipant[participantKey{questionID, participant}]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return cloneSubmission(*s.byID[id]), nil
}

func (s *SubmissionStore) Insert(_ context.Context, sub domain.Submission) error {
	key := participantKey{sub.QuestionID, sub.Participant}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byParticipant[key]; ok {
		return domain.ErrConflict
	}
	if _, ok := s.byID[sub.ID]; ok {
		return domain.ErrConflict
	}
	stored := cloneSubmission(sub)
	s.byParticipant[key] = sub.ID
	s.byID[sub.ID] = &stored
	return nil
}

func (s *SubmissionStore) ListByQuestion(_ context.Context, questionID string) ([]domain.Submission, error) {
	s.mu.RLock()
	out := make([]domain.Submission, 0)
	for _, sub := range s.byID {
		if sub.QuestionID == questionID {
			out = append(out, cloneSubmission(*sub))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *SubmissionStore) MarkViewed(_ context.Context, id string) (domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.byID[id]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	sub.ResultViewed = true
	return cloneSubmission(*sub), nil
}

func cloneSubmission(sub domain.Submission) domain.Submission {
	if sub.ResponseTimeSeconds != nil {
		v := *sub.ResponseTimeSeconds
		sub.ResponseTimeSeconds = &v
	}
	return sub
}
