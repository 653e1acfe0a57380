package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"timed-quiz-service/internal/domain"
)

// TimerStore keeps one personal timer per participant using SET NX, so the
// first writer wins across every replica sharing the Redis instance.
//
//	SET quiz:{questionID}:timer:{participant} {json} NX [PX ttl]
type TimerStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTimerStore keeps timers for ttl; zero keeps them until deleted.
func NewTimerStore(client *redis.Client, ttl time.Duration) *TimerStore {
	return &TimerStore{client: client, ttl: ttl}
}

func (s *TimerStore) Find(ctx context.Context, questionID, participant string) (domain.PersonalTimer, error) {
	raw, err := s.client.Get(ctx, s.key(questionID, participant)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PersonalTimer{}, domain.ErrTimerNotFound
	}
	if err != nil {
		return domain.PersonalTimer{}, domain.NewStorageError("redis get timer", err)
	}
	var timer domain.PersonalTimer
	if err := json.Unmarshal(raw, &timer); err != nil {
		return domain.PersonalTimer{}, domain.NewStorageError("decode timer", err)
	}
	return timer, nil
}

func (s *TimerStore) Insert(ctx context.Context, timer domain.PersonalTimer) error {
	raw, err := json.Marshal(timer)
	if err != nil {
		return domain.NewStorageError("encode timer", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(timer.QuestionID, timer.Participant), raw, s.ttl).Result()
	if err != nil {
		return domain.NewStorageError("redis setnx timer", err)
	}
	if !ok {
		return domain.ErrConflict
	}
	return nil
}

func (s *TimerStore) key(questionID, participant string) string {
	return "quiz:" + questionID + ":timer:" + participant
}
