package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"timed-quiz-service/internal/domain"
)

const submissionColumns = `id, question_id, name, normalized_name, answer, is_correct, response_time_seconds, result_viewed, submitted_at`

// SubmissionStore persists submissions; the unique index on
// (question_id, normalized_name) is what enforces one answer per participant.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

func (s *SubmissionStore) Find(ctx context.Context, questionID, participant string) (domain.Submission, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE question_id = $1 AND normalized_name = $2`,
		questionID, participant)
	sub, err := scanSubmission(row)
	return sub, classify("load submission", err, domain.ErrSubmissionNotFound)
}

func (s *SubmissionStore) Insert(ctx context.Context, sub domain.Submission) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO submissions (`+submissionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sub.ID, sub.QuestionID, sub.ParticipantName, sub.Participant, sub.Answer,
		sub.IsCorrect, sub.ResponseTimeSeconds, sub.ResultViewed, sub.SubmittedAt,
	)
	return classify("insert submission", err, nil)
}

func (s *SubmissionStore) ListByQuestion(ctx context.Context, questionID string) ([]domain.Submission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE question_id = $1 ORDER BY submitted_at, id`,
		questionID)
	if err != nil {
		return nil, domain.NewStorageError("list submissions", err)
	}
	defer rows.Close()

	out := make([]domain.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan submission", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list submissions", err)
	}
	return out, nil
}

func (s *SubmissionStore) MarkViewed(ctx context.Context, id string) (domain.Submission, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE submissions SET result_viewed = TRUE WHERE id = $1 RETURNING `+submissionColumns, id)
	sub, err := scanSubmission(row)
	return sub, classify("mark submission viewed", err, domain.ErrSubmissionNotFound)
}

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var sub domain.Submission
	err := row.Scan(
		&sub.ID, &sub.QuestionID, &sub.ParticipantName, &sub.Participant, &sub.Answer,
		&sub.IsCorrect, &sub.ResponseTimeSeconds, &sub.ResultViewed, &sub.SubmittedAt,
	)
	return sub, err
}
