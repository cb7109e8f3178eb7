package db

import (
	"context"
	"strings"

	"metals-pulse/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Pool is nil when DATABASE_URL is empty or the database is unreachable;
// callers treat that as "no price history".
var Pool *pgxpool.Pool

var (
	newPool  = pgxpool.New
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

func InitPostgres(ctx context.Context, databaseURL string) {
	dsn := strings.TrimSpace(databaseURL)
	if dsn == "" {
		logger.Warn("DATABASE_URL not set; price history disabled")
		return
	}

	pool, err := newPool(ctx, dsn)
	if err != nil {
		logger.Warn("failed to configure postgres pool", zap.Error(err))
		return
	}
	if err := pingPool(ctx, pool); err != nil {
		pool.Close()
		logger.Warn("failed to connect to postgres; price history disabled", zap.Error(err))
		return
	}

	Pool = pool
	logger.Info("connected to postgres")
}

func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
