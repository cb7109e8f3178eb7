package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"metals-pulse/internal/app"
	"metals-pulse/internal/cache"
	"metals-pulse/internal/config"
	"metals-pulse/internal/db"
	"metals-pulse/internal/mcpserver"
	"metals-pulse/pkg/logger"
	"metals-pulse/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.0.0"

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initLoggerFunc = func(level, logFile string) error {
		return logger.InitWithConsole(level, logFile, zapcore.Lock(os.Stderr))
	}
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	runServerFunc    = mcpserver.Run
)

func main() {
	config.LoadDotEnv(loadEnvFunc)

	cfg := loadConfigFunc()
	if err := initLoggerFunc(cfg.LogLevel, cfg.LogFile); err != nil {
		logger.Warn("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)
	defer db.Close()

	tp, tracer, err := initTracerFunc(ctx, tracing.ComponentMCP)
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down tracer provider", zap.Error(err))
		}
	}()

	var backends app.Backends
	if db.Pool != nil {
		backends.Pool = db.Pool
	}
	if cache.Client != nil {
		backends.Redis = cache.Client
	}
	svc := app.Build(cfg, tracer, backends)

	server := newServer(svc)
	opts := mcpserver.Options{
		Transport: cfg.MCPTransport,
		Bind:      cfg.MCPHTTPBind,
		Port:      int(cfg.MCPHTTPPort),
	}
	if err := runServerFunc(ctx, server, opts); err != nil {
		logger.Fatal("mcp server stopped", zap.Error(err))
	}
	logger.Info("mcp server exiting")
}

func newServer(svc *app.Services) *mcp.Server {
	return mcpserver.NewServer(svc.Sentiment, svc.Prices, version)
}
