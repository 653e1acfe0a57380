package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"timed-quiz-service/internal/domain"
)

const questionColumns = `id, text, type, options, correct_answer, start_time, end_time, created_at`

// QuestionStore persists questions in the questions table.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) Create(ctx context.Context, q domain.Question) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO questions (`+questionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		q.ID, q.Text, string(q.Type), optionsOrEmpty(q.Options), q.CorrectAnswer, q.StartTime, q.EndTime, q.CreatedAt,
	)
	return classify("insert question", err, nil)
}

func (s *QuestionStore) Get(ctx context.Context, id string) (domain.Question, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	q, err := scanQuestion(row)
	return q, classify("load question", err, domain.ErrQuestionNotFound)
}

func (s *QuestionStore) List(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY start_time, id`)
	if err != nil {
		return nil, domain.NewStorageError("list questions", err)
	}
	defer rows.Close()

	out := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan question", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list questions", err)
	}
	return out, nil
}

func (s *QuestionStore) ActiveAt(ctx context.Context, now time.Time) (domain.Question, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE start_time <= $1 AND end_time >= $1
		 ORDER BY start_time DESC, id DESC
		 LIMIT 1`, now)
	q, err := scanQuestion(row)
	return q, classify("active question", err, domain.ErrNoActiveQuestion)
}

// ForceEnd moves end_time back to at in a single statement; the row is left
// untouched when it already ended.
func (s *QuestionStore) ForceEnd(ctx context.Context, id string, at time.Time) (domain.Question, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE questions SET end_time = GREATEST($2::timestamptz, start_time)
		 WHERE id = $1 AND end_time > $2
		 RETURNING `+questionColumns, id, at)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.Get(ctx, id)
	}
	return q, classify("force end question", err, nil)
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q   domain.Question
		typ string
	)
	err := row.Scan(&q.ID, &q.Text, &typ, &q.Options, &q.CorrectAnswer, &q.StartTime, &q.EndTime, &q.CreatedAt)
	if err != nil {
		return domain.Question{}, err
	}
	q.Type = domain.QuestionType(typ)
	if len(q.Options) == 0 {
		q.Options = nil
	}
	return q, nil
}

// optionsOrEmpty keeps the NOT NULL options column satisfied for text questions.
func optionsOrEmpty(options []string) []string {
	if options == nil {
		return []string{}
	}
	return options
}
