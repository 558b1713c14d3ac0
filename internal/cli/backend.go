package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	fsstore "trivia-quiz-service/internal/infra/firestore"
	"trivia-quiz-service/internal/infra/memory"
	pgstore "trivia-quiz-service/internal/infra/postgres"
	redisstore "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/infra/sqlite"
)

// openLeaderboardStore connects the configured backend. A nil store with a nil error
// means offline mode; the returned closer is always safe to call.
func openLeaderboardStore(ctx context.Context, cfg config.Config, log *zap.Logger) (app.LeaderboardStore, func(), error) {
	noop := func() {}

	switch cfg.Leaderboard.Backend {
	case config.BackendNone:
		return nil, noop, nil

	case config.BackendMemory:
		return memory.NewLeaderboardStore(), noop, nil

	case config.BackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, noop, errors.New("redis.addr not configured")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		return redisstore.NewLeaderboardStore(client, cfg.Redis.Prefix), func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		if cfg.Postgres.URL == "" {
			return nil, noop, errors.New("postgres.url not configured")
		}
		if err := runMigrations(ctx, cfg, log); err != nil {
			return nil, noop, fmt.Errorf("postgres migrate: %w", err)
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres connect: %w", err)
		}
		return pgstore.NewLeaderboardStore(pool), pool.Close, nil

	case config.BackendSQLite:
		if cfg.SQLite.Path == "" {
			return nil, noop, errors.New("sqlite.path not configured")
		}
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil

	case config.BackendFirestore:
		if cfg.Firestore.ProjectID == "" {
			return nil, noop, errors.New("firestore.project_id not configured")
		}
		client, err := fsstore.NewClient(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		return fsstore.NewLeaderboardStore(client, cfg.Firestore.Collection), func() { _ = client.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown leaderboard backend %q", cfg.Leaderboard.Backend)
}

// newLeaderboardService degrades to offline mode when the backend cannot be reached, so
// the quiz stays playable.
func newLeaderboardService(ctx context.Context, cfg config.Config, log *zap.Logger) (*app.LeaderboardService, func()) {
	store, closer, err := openLeaderboardStore(ctx, cfg, log)
	if err != nil {
		log.Warn("leaderboard offline", zap.String("backend", cfg.Leaderboard.Backend), zap.Error(err))
		return app.NewLeaderboardService(nil, log), closer
	}
	if store == nil {
		log.Info("leaderboard disabled")
		return app.NewLeaderboardService(nil, log), closer
	}
	log.Info("leaderboard ready", zap.String("backend", cfg.Leaderboard.Backend))
	return app.NewLeaderboardService(store, log), closer
}
