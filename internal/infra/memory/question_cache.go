package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

// QuestionCache caches question lookups by id with TTL to avoid repeated DB
// hits on the answer path. Writes go straight to the backing repository and
// drop the cached entry. The cache is per process; replicas see a force-end
// from another replica once their entry expires.
type QuestionCache struct {
	app.QuestionRepository

	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuestion
	// gen counts invalidations per id; a fill that started before one is dropped.
	gen map[string]uint64
}

type cachedQuestion struct {
	question  domain.Question
	expiresAt time.Time
}

func NewQuestionCache(backing app.QuestionRepository, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		QuestionRepository: backing,
		ttl:                ttl,
		clock:              time.Now,
		rnd:                rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:              make(map[string]cachedQuestion),
		gen:                make(map[string]uint64),
	}
}

func (c *QuestionCache) Get(ctx context.Context, id string) (domain.Question, error) {
	if q, ok := c.lookup(id); ok {
		return q, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		if q, ok := c.lookup(id); ok {
			return q, nil
		}
		c.mu.RLock()
		gen := c.gen[id]
		c.mu.RUnlock()

		q, err := c.QuestionRepository.Get(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			if c.gen[id] == gen {
				c.cache[id] = cachedQuestion{question: q, expiresAt: c.clock().Add(c.ttlWithJitter())}
			}
			c.mu.Unlock()
		}
		return q, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return cloneQuestion(result.(domain.Question)), nil
}

func (c *QuestionCache) ForceEnd(ctx context.Context, id string, at time.Time) (domain.Question, error) {
	q, err := c.QuestionRepository.ForceEnd(ctx, id, at)
	c.Invalidate(id)
	return q, err
}

// Invalidate drops a cached question and any fill still in flight for it.
func (c *QuestionCache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.cache, id)
	c.gen[id]++
	c.mu.Unlock()
	c.sf.Forget(id)
}

func (c *QuestionCache) lookup(id string) (domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[id]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Question{}, false
	}
	return cloneQuestion(entry.question), true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
