package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/infra/memory"
	natspub "timed-quiz-service/internal/infra/nats"
	pgstore "timed-quiz-service/internal/infra/postgres"
	redisstore "timed-quiz-service/internal/infra/redis"
	transport "timed-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the timed quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type repositories struct {
	questions   app.QuestionRepository
	timers      app.TimerRepository
	submissions app.SubmissionRepository
	closers     []func()
}

func (r *repositories) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	repos, err := buildRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	opts := []app.Option{
		app.WithTimerDuration(config.Duration(cfg.Quiz.TimerDuration, app.DefaultTimerDuration)),
	}
	if cfg.NATS.URL != "" {
		natsCfg := natspub.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		if cfg.NATS.SubjectPrefix != "" {
			natsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
		}
		publisher, err := natspub.Connect(natsCfg)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			publisher.Close(flushCtx)
		}()
		opts = append(opts, app.WithPublisher(publisher))
		log.Info().Str("url", natsCfg.URL).Str("prefix", natsCfg.SubjectPrefix).Msg("publishing events to NATS")
	}

	service := app.NewService(repos.questions, repos.timers, repos.submissions, opts...)

	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(transport.NewRouter(service))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting timed quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildRepositories picks Postgres for durable state when configured, Redis
// for shared timers and submissions otherwise, and memory as the last resort.
// Questions are always read through a cache.
func buildRepositories(ctx context.Context, cfg config.Config) (*repositories, error) {
	repos := &repositories{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		repos.closers = append(repos.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 24*time.Hour)
	cacheTTL := config.Duration(cfg.Quiz.CacheTTL, 5*time.Second)

	var questions app.QuestionRepository
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			repos.close()
			return nil, err
		}
		repos.closers = append(repos.closers, pool.Close)
		questions = pgstore.NewQuestionStore(pool)
		repos.timers = pgstore.NewTimerStore(pool)
		repos.submissions = pgstore.NewSubmissionStore(pool)
		log.Info().Msg("using postgres storage")
	case redisClient != nil:
		questions = memory.NewQuestionStore()
		repos.timers = redisstore.NewTimerStore(redisClient, redisTTL)
		repos.submissions = redisstore.NewSubmissionStore(redisClient, redisTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis storage for timers and submissions")
		log.Warn().Msg("questions are process-local without postgres: run a single replica or set postgres.url")
	default:
		questions = memory.NewQuestionStore()
		repos.timers = memory.NewTimerStore()
		repos.submissions = memory.NewSubmissionStore()
		log.Warn().Msg("no postgres or redis configured, state is process-local")
	}

	if redisClient != nil {
		repos.questions = redisstore.NewQuestionCache(redisClient, questions, cacheTTL)
	} else {
		repos.questions = memory.NewQuestionCache(questions, cacheTTL)
	}
	return repos, nil
}
