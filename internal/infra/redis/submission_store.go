package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"timed-quiz-service/internal/domain"
)

// claimSubmission stores the submission only if the participant has none yet
// and indexes it in the same step.
//
//	KEYS[1] quiz:{questionID}:submission:{participant}
//	KEYS[2] quiz:{questionID}:submissions   (set of KEYS[1]-style keys)
//	KEYS[3] quiz:submission:{submissionID}  (points at KEYS[1])
//	ARGV    json, ttl in ms (0 = keep)
var claimSubmission = redis.NewScript(`
local ttl = tonumber(ARGV[2])
local ok
if ttl > 0 then
  ok = redis.call('SET', KEYS[1], ARGV[1], 'PX', ttl, 'NX')
else
  ok = redis.call('SET', KEYS[1], ARGV[1], 'NX')
end
if not ok then
  return 0
end
redis.call('SADD', KEYS[2], KEYS[1])
redis.call('SET', KEYS[3], KEYS[1])
if ttl > 0 then
  redis.call('PEXPIRE', KEYS[2], ttl)
  redis.call('PEXPIRE', KEYS[3], ttl)
end
return 1
`)

const markViewedRetries = 5

// SubmissionStore keeps one submission per participant per question in Redis.
type SubmissionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSubmissionStore keeps submissions for ttl; zero keeps them until deleted.
func NewSubmissionStore(client *redis.Client, ttl time.Duration) *SubmissionStore {
	return &SubmissionStore{client: client, ttl: ttl}
}

func (s *SubmissionStore) Find(ctx context.Context, questionID, participant string) (domain.Submission, error) {
	return s.load(ctx, dataKey(questionID, participant))
}

func (s *SubmissionStore) Insert(ctx context.Context, sub domain.Submission) error {
	raw, err := json.Marshal(sub)
	if err != nil {
		return domain.NewStorageError("encode submission", err)
	}
	key := dataKey(sub.QuestionID, sub.Participant)
	keys := []string{key, indexKey(sub.QuestionID), idKey(sub.ID)}
	claimed, err := claimSubmission.Run(ctx, s.client, keys, raw, s.ttl.Milliseconds()).Int()
	if err != nil {
		return domain.NewStorageError("redis claim submission", err)
	}
	if claimed == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (s *SubmissionStore) ListByQuestion(ctx context.Context, questionID string) ([]domain.Submission, error) {
	keys, err := s.client.SMembers(ctx, indexKey(questionID)).Result()
	if err != nil {
		return nil, domain.NewStorageError("redis list submissions", err)
	}
	out := make([]domain.Submission, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, domain.NewStorageError("redis load submissions", err)
	}
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // expired between SMEMBERS and MGET
		}
		var sub domain.Submission
		if err := json.Unmarshal([]byte(str), &sub); err != nil {
			return nil, domain.NewStorageError("decode submission", err)
		}
		out = append(out, sub)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// MarkViewed sets ResultViewed with an optimistic WATCH/MULTI transaction.
func (s *SubmissionStore) MarkViewed(ctx context.Context, id string) (domain.Submission, error) {
	key, err := s.client.Get(ctx, idKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, domain.NewStorageError("redis get submission pointer", err)
	}

	var result domain.Submission
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}
		var sub domain.Submission
		if err := json.Unmarshal(raw, &sub); err != nil {
			return err
		}
		result = sub
		if sub.ResultViewed {
			return nil
		}
		sub.ResultViewed = true
		updated, err := json.Marshal(sub)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, updated, redis.SetArgs{KeepTTL: true})
			return nil
		})
		if err == nil {
			result = sub
		}
		return err
	}

	for i := 0; i < markViewedRetries; i++ {
		err = s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		break
	}
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, redis.Nil):
		return domain.Submission{}, domain.ErrSubmissionNotFound
	default:
		return domain.Submission{}, domain.NewStorageError("redis mark viewed", err)
	}
}

func (s *SubmissionStore) load(ctx context.Context, key string) (domain.Submission, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, domain.NewStorageError("redis get submission", err)
	}
	var sub domain.Submission
	if err := json.Unmarshal(raw, &sub); err != nil {
		return domain.Submission{}, domain.NewStorageError("decode submission", err)
	}
	return sub, nil
}

func dataKey(questionID, participant string) string {
	return "quiz:" + questionID + ":submission:" + participant
}

func indexKey(questionID string) string {
	return "quiz:" + questionID + ":submissions"
}

func idKey(submissionID string) string {
	return "quiz:submission:" + submissionID
}
