package memory

import (
	"context"
	"sync"

	"timed-quiz-service/internal/domain"
)

type participantKey struct {
	questionID  string
	participant string
}

// TimerStore keeps personal timers in a map guarded by a single lock, which
// makes Insert an atomic compare-and-insert within one process.
type TimerStore struct {
	mu     sync.RWMutex
	timers map[participantKey]domain.PersonalTimer
}

func NewTimerStore() *TimerStore {
	return &TimerStore{timers: make(map[participantKey]domain.PersonalTimer)}
}

func (s *TimerStore) Find(_ context.Context, questionID, participant string) (domain.PersonalTimer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.timers[participantKey{questionID, participant}]
	if !ok {
		return domain.PersonalTimer{}, domain.ErrTimerNotFound
	}
	return t, nil
}

func (s *TimerStore) Insert(_ context.Context, timer domain.PersonalTimer) error {
	key := participantKey{timer.QuestionID, timer.Participant}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[key]; ok {
		return domain.ErrConflict
	}
	s.timers[key] = timer
	return nil
}

// Len reports how many timers are stored.
func (s *TimerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.timers)
}
