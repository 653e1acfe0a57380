package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

// QuestionCache caches questions in Redis (one JSON string per question) and
// falls back to the backing repository on a miss. The cache is shared by every
// replica. A force end overwrites the key with the stored question, and fills
// only create missing keys, so a read that started before the force end can
// never put the old end time back.
//
//	SET quiz:question:{questionID} {json} PX ttl NX   (fill)
//	SET quiz:question:{questionID} {json} PX ttl      (force end)
type QuestionCache struct {
	app.QuestionRepository

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionCache(client *redis.Client, backing app.QuestionRepository, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		QuestionRepository: backing,
		client:             client,
		ttl:                ttl,
		rnd:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) Get(ctx context.Context, id string) (domain.Question, error) {
	if q, ok := c.cached(ctx, id); ok {
		return q, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if q, ok := c.cached(ctx, id); ok {
			return q, nil
		}

		q, err := c.QuestionRepository.Get(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}

		raw, err := json.Marshal(q)
		if err == nil {
			err = c.client.SetNX(ctx, questionKey(id), raw, c.ttlWithJitter()).Err()
		}
		if err != nil {
			log.Warn().Err(err).Str("question_id", id).Msg("cache question failed")
		}
		return q, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

func (c *QuestionCache) ForceEnd(ctx context.Context, id string, at time.Time) (domain.Question, error) {
	q, err := c.QuestionRepository.ForceEnd(ctx, id, at)
	if err != nil {
		c.drop(ctx, id)
		return q, err
	}
	raw, encErr := json.Marshal(q)
	if encErr == nil {
		encErr = c.client.Set(ctx, questionKey(id), raw, c.ttlWithJitter()).Err()
	}
	if encErr != nil {
		log.Error().Err(encErr).Str("question_id", id).Msg("refresh cached question failed")
		c.drop(ctx, id)
	}
	c.sf.Forget(id)
	return q, nil
}

func (c *QuestionCache) drop(ctx context.Context, id string) {
	if err := c.client.Del(ctx, questionKey(id)).Err(); err != nil {
		log.Error().Err(err).Str("question_id", id).Msg("invalidate cached question failed")
	}
}

func (c *QuestionCache) cached(ctx context.Context, id string) (domain.Question, bool) {
	raw, err := c.client.Get(ctx, questionKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("question_id", id).Msg("read cached question failed")
		}
		return domain.Question{}, false
	}
	var q domain.Question
	if err := json.Unmarshal(raw, &q); err != nil {
		return domain.Question{}, false
	}
	return q, true
}

func questionKey(id string) string {
	return "quiz:question:" + id
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
