package cache

import (
	"context"
	"strings"

	"metals-pulse/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client is nil when Redis is unreachable; quote caching is then skipped.
var Client *redis.Client

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

func InitRedis(ctx context.Context, addr string) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = "localhost:6379"
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			logger.Warn("failed to parse REDIS_URL; quote cache disabled", zap.Error(err))
			return
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		_ = client.Close()
		logger.Warn("failed to connect to redis; quote cache disabled", zap.String("addr", opts.Addr), zap.Error(err))
		return
	}
	Client = client
	logger.Info("connected to redis", zap.String("addr", opts.Addr))
}
