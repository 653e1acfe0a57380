package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"timed-quiz-service/internal/domain"
)

// TimerStore persists personal timers; the unique index on
// (question_id, normalized_name) arbitrates concurrent first access.
type TimerStore struct {
	pool *pgxpool.Pool
}

func NewTimerStore(pool *pgxpool.Pool) *TimerStore {
	return &TimerStore{pool: pool}
}

func (s *TimerStore) Find(ctx context.Context, questionID, participant string) (domain.PersonalTimer, error) {
	var t domain.PersonalTimer
	err := s.pool.QueryRow(ctx,
		`SELECT id, question_id, normalized_name, personal_start_time, personal_end_time
		 FROM personal_timers WHERE question_id = $1 AND normalized_name = $2`,
		questionID, participant,
	).Scan(&t.ID, &t.QuestionID, &t.Participant, &t.StartTime, &t.EndTime)
	return t, classify("load timer", err, domain.ErrTimerNotFound)
}

func (s *TimerStore) Insert(ctx context.Context, t domain.PersonalTimer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO personal_timers (id, question_id, normalized_name, personal_start_time, personal_end_time)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.QuestionID, t.Participant, t.StartTime, t.EndTime,
	)
	return classify("insert timer", err, nil)
}
