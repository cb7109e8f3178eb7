package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"metals-pulse/internal/app"
	"metals-pulse/internal/bot"
	"metals-pulse/internal/cache"
	"metals-pulse/internal/config"
	"metals-pulse/internal/db"
	"metals-pulse/internal/handler"
	"metals-pulse/internal/job"
	"metals-pulse/pkg/logger"
	"metals-pulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "metals-pulse/docs"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initLoggerFunc   = logger.Init
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	backendsFunc     = func(cfg *config.Config) app.Backends {
		var b app.Backends
		if db.Pool != nil {
			b.Pool = db.Pool
		}
		if cache.Client != nil {
			b.Redis = cache.Client
		}
		if llm := app.OpenAIClient(cfg); llm != nil {
			b.LLM = llm
		}
		return b
	}
	startPollerFunc        = func(p *job.PricePoller, ctx context.Context) { go p.Start(ctx) }
	startSentimentJobFunc  = func(j *job.SentimentJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Metals Pulse API
// @version         1.0
// @description     Precious metals sentiment index, quotes and price history.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	config.LoadDotEnv(loadEnvFunc)

	cfg := loadConfigFunc()
	if err := initLoggerFunc(cfg.LogLevel, cfg.LogFile); err != nil {
		logger.Warn("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)
	defer db.Close()

	tp, tracer, err := initTracerFunc(ctx, tracing.ComponentAPI)
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down tracer provider", zap.Error(err))
		}
	}()

	svc := app.Build(cfg, tracer, backendsFunc(cfg))
	if err := svc.Migrate(ctx); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	poller := job.NewPricePoller(tracer, svc.Prices, cfg.PricePollInterval(), cfg.HistoryRetention())
	startPollerFunc(poller, ctx)

	sentimentJob := job.NewSentimentJob(tracer, svc.Sentiment, cfg.SentimentRefreshInterval())
	startSentimentJobFunc(sentimentJob, ctx)

	startTelegramBotFunc(ctx, cfg.TelegramBotToken, bot.Services{
		Sentiment: svc.Sentiment,
		Prices:    svc.Prices,
		Brief:     svc.Briefs,
	})

	h := handler.New(tracer, svc.Sentiment, svc.Prices)
	h.SetBriefService(svc.Briefs)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("metals-pulse"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
