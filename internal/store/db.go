package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ankitpatil/kharcha/internal/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

const connectMaxElapsed = 30 * time.Second

// Connect opens a pgx pool and verifies connectivity. The initial ping is
// retried with exponential backoff so the server survives a database that is
// still coming up; once connected, outbound calls are not retried here.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(connectMaxElapsed),
	), ctx)

	err = backoff.RetryNotify(
		func() error { return pool.Ping(ctx) },
		policy,
		func(err error, wait time.Duration) {
			slog.Warn("database not ready, retrying", "error", err, "wait", wait)
		},
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
