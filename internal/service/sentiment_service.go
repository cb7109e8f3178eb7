package service

import (
	"context"
	"sync"

	"metals-pulse/internal/domain"
	"metals-pulse/internal/sentiment"
	"metals-pulse/pkg/logger"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SentimentAggregator interface {
	Aggregate(ctx context.Context) sentiment.Result
}

// SentimentService runs one aggregation per call and remembers the most
// recent result for consumers that only need a recent view.
type SentimentService struct {
	tracer     trace.Tracer
	aggregator SentimentAggregator

	mu   sync.RWMutex
	last *sentiment.Result
}

func NewSentimentService(tracer trace.Tracer, aggregator SentimentAggregator) *SentimentService {
	return &SentimentService{tracer: tracer, aggregator: aggregator}
}

func (s *SentimentService) GetSentiment(ctx context.Context) sentiment.Result {
	ctx, span := s.tracer.Start(ctx, "sentiment-service.get-sentiment")
	defer span.End()

	res := s.aggregator.Aggregate(ctx)
	logger.Info("sentiment computed",
		zap.Int("score", res.Index.Score),
		zap.String("level", string(res.Index.Level)),
		zap.String("news_stage", res.NewsStage),
		zap.Int("items", len(res.Items)),
	)

	stored := cloneResult(res)
	s.mu.Lock()
	s.last = &stored
	s.mu.Unlock()
	return res
}

// Latest returns the last computed result, or runs the pipeline when nothing
// has been computed yet.
func (s *SentimentService) Latest(ctx context.Context) sentiment.Result {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()
	if last != nil {
		return cloneResult(*last)
	}
	return s.GetSentiment(ctx)
}

func cloneResult(res sentiment.Result) sentiment.Result {
	res.Items = append([]domain.ScoredItem(nil), res.Items...)
	return res
}
