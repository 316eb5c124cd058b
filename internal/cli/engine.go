package cli

import (
	"context"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quiz-engine/internal/app"
	"quiz-engine/internal/config"
	"quiz-engine/internal/infra/memory"
	"quiz-engine/internal/infra/postgres"
	rediscache "quiz-engine/internal/infra/redis"
)

// engine is the wired service plus the resources that must be released with it.
type engine struct {
	service *app.QuizService
	pool    *pgxpool.Pool
	redis   *redis.Client
}

func (e *engine) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	if e.pool != nil {
		e.pool.Close()
	}
}

// buildEngine picks Postgres or the in-memory demo bank, and Redis or in-process
// caches, from cfg.
func buildEngine(ctx context.Context, cfg config.Config, logger *zap.Logger) (*engine, error) {
	e := &engine{}

	var store app.Store
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		e.pool = pool
		store = postgres.NewStore(pool)
		logger.Info("using postgres store")
	} else {
		store = demoStore()
		logger.Info("using in-memory demo store")
	}

	if cfg.Redis.Addr != "" {
		e.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	opts := app.Options{Logger: logger}

	answerTTL := cfg.AnswerKeysTTL()
	switch {
	case answerTTL <= 0:
	case e.redis != nil:
		opts.AnswerKeys = rediscache.NewAnswerKeyCache(e.redis, store, answerTTL)
	default:
		opts.AnswerKeys = memory.NewAnswerKeyCache(store, answerTTL)
	}

	if ttl := cfg.LeaderboardTTL(); ttl > 0 && e.redis != nil {
		opts.LeaderboardCache = rediscache.NewLeaderboardCache(e.redis, ttl, logger.Named("leaderboard_cache"))
	}

	seed := cfg.Session.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts.Rand = rand.New(rand.NewSource(seed))

	e.service = app.NewQuizService(store, opts)
	return e, nil
}
