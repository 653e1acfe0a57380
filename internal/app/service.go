package app

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"timed-quiz-service/internal/domain"
)

// DefaultTimerDuration is the personal answer window granted on first access.
const DefaultTimerDuration = 120 * time.Second

// QuestionRepository stores questions (in-memory, Postgres, etc).
type QuestionRepository interface {
	Create(ctx context.Context, q domain.Question) error
	Get(ctx context.Context, id string) (domain.Question, error)
	// List returns questions ordered by start time.
	List(ctx context.Context) ([]domain.Question, error)
	// ActiveAt returns the open question with the latest start time, or
	// domain.ErrNoActiveQuestion.
	ActiveAt(ctx context.Context, now time.Time) (domain.Question, error)
	// ForceEnd atomically applies domain.Question.ForceEnd and returns the
	// stored question.
	ForceEnd(ctx context.Context, id string, at time.Time) (domain.Question, error)
}

// TimerRepository stores personal timers. Insert must fail with
// domain.ErrConflict when a timer for the same (question, participant) exists.
type TimerRepository interface {
	Find(ctx context.Context, questionID, participant string) (domain.PersonalTimer, error)
	Insert(ctx context.Context, timer domain.PersonalTimer) error
}

// SubmissionRepository stores submissions. Insert must fail with
// domain.ErrConflict when a submission for the same (question, participant) exists.
type SubmissionRepository interface {
	Find(ctx context.Context, questionID, participant string) (domain.Submission, error)
	Insert(ctx context.Context, submission domain.Submission) error
	// ListByQuestion returns submissions ordered by submission time.
	ListByQuestion(ctx context.Context, questionID string) ([]domain.Submission, error)
	MarkViewed(ctx context.Context, id string) (domain.Submission, error)
}

// EventPublisher forwards committed changes to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Service contains the timed quiz use cases. It keeps no per-question state;
// every invariant is delegated to the repositories' atomic inserts.
type Service struct {
	questions     QuestionRepository
	timers        TimerRepository
	submissions   SubmissionRepository
	events        EventPublisher
	clock         clockwork.Clock
	timerDuration time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithTimerDuration overrides DefaultTimerDuration.
func WithTimerDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timerDuration = d
		}
	}
}

// WithPublisher emits events after each successful write.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

func NewService(questions QuestionRepository, timers TimerRepository, submissions SubmissionRepository, opts ...Option) *Service {
	s := &Service{
		questions:     questions,
		timers:        timers,
		submissions:   submissions,
		events:        noopPublisher{},
		clock:         clockwork.NewRealClock(),
		timerDuration: DefaultTimerDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now exposes the service clock so transports share the same notion of time.
func (s *Service) Now() time.Time {
	return s.now()
}

// now reads the clock at the precision every store keeps (Postgres
// timestamptz holds microseconds), so a value handed to a caller is the
// value later read back.
func (s *Service) now() time.Time {
	return truncate(s.clock.Now())
}

func truncate(t time.Time) time.Time {
	return t.Truncate(time.Microsecond)
}

func (s *Service) publish(ctx context.Context, typ domain.EventType, questionID string, payload any) {
	event := domain.Event{
		Type:       typ,
		QuestionID: questionID,
		Payload:    payload,
		OccurredAt: s.now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event", string(typ)).Str("question_id", questionID).Msg("publish event failed")
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.Event) error { return nil }
