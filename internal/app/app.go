package app

import (
	"context"

	"metals-pulse/internal/advisor"
	"metals-pulse/internal/classifier"
	"metals-pulse/internal/config"
	"metals-pulse/internal/provider"
	"metals-pulse/internal/repository"
	"metals-pulse/internal/sentiment"
	"metals-pulse/internal/service"
	"metals-pulse/pkg/logger"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Services is the wired object graph shared by the HTTP and MCP entrypoints.
type Services struct {
	Prices    *service.PriceService
	Sentiment *service.SentimentService
	Briefs    *advisor.BriefService

	PriceRepo *repository.PriceRepository
	BriefRepo *repository.BriefRepository
}

// Backends are the optional stores. Nil fields disable the features that
// depend on them.
type Backends struct {
	Pool  repository.PgxPool
	Redis service.RedisClient
	LLM   advisor.LLMClient
}

var newOpenAIClient = advisor.NewOpenAIClient

// OpenAIClient returns nil when no API key is configured.
func OpenAIClient(cfg *config.Config) advisor.LLMClient {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	return newOpenAIClient(cfg.OpenAIAPIKey)
}

func Build(cfg *config.Config, tracer trace.Tracer, b Backends) *Services {
	timeout := cfg.SourceTimeoutDuration()
	svc := &Services{}

	var history service.PriceHistoryRepository
	var briefStore advisor.BriefStore
	if b.Pool != nil {
		svc.PriceRepo = repository.NewPriceRepository(b.Pool, tracer)
		svc.BriefRepo = repository.NewBriefRepository(b.Pool, tracer)
		history = svc.PriceRepo
		briefStore = svc.BriefRepo
	}

	var quotes service.PriceProvider
	if cfg.MetalsAPIKey != "" {
		quotes = provider.NewMetalsDevProvider(cfg.MetalsAPIKey, timeout, tracer)
	} else {
		quotes = provider.NewReferenceQuoteProvider()
	}
	svc.Prices = service.NewPriceService(tracer, quotes, history, b.Redis)

	c := classifier.Default()
	news := sentiment.NewNewsChain(
		provider.NewNewsAPIProvider(cfg.NewsAPIKey, timeout, tracer),
		provider.NewGoogleNewsProvider(timeout, tracer),
		c, tracer,
	)
	social := sentiment.NewSocialSource(
		provider.NewRedditProvider(timeout, tracer),
		cfg.Subreddits, int(cfg.RedditPostLimit), c, tracer,
	)
	aggregator := sentiment.NewAggregator(social, news, momentumSource(cfg, svc.PriceRepo), tracer)
	svc.Sentiment = service.NewSentimentService(tracer, aggregator)

	svc.Briefs = advisor.NewBriefService(tracer, b.LLM, svc.Prices, svc.Sentiment, briefStore, cfg.OpenAIModel)

	logger.Info("services wired",
		zap.Strings("news_stages", news.Stages()),
		zap.Strings("forums", social.Forums()),
		zap.String("momentum", cfg.MomentumMode),
		zap.Bool("price_history", history != nil),
		zap.Bool("brief", svc.Briefs.Enabled()),
	)
	return svc
}

// Migrate creates the tables when a database is configured.
func (s *Services) Migrate(ctx context.Context) error {
	if s.PriceRepo != nil {
		if err := s.PriceRepo.RunMigrations(ctx); err != nil {
			return err
		}
	}
	if s.BriefRepo != nil {
		if err := s.BriefRepo.RunMigrations(ctx); err != nil {
			return err
		}
	}
	return nil
}

func momentumSource(cfg *config.Config, repo *repository.PriceRepository) sentiment.MomentumSource {
	placeholder := sentiment.NewPlaceholderMomentum(nil)
	if cfg.MomentumMode != config.MomentumHistory {
		return placeholder
	}
	if repo == nil {
		logger.Warn("MOMENTUM_MODE=history needs DATABASE_URL; using placeholder momentum")
		return placeholder
	}
	return sentiment.NewPriceHistoryMomentum(repo, cfg.MomentumLookback(), placeholder)
}
