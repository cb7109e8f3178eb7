package sentiment

import (
	"context"

	"metals-pulse/internal/classifier"
	"metals-pulse/internal/domain"
	"metals-pulse/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Chain tries its stages in order and returns the first non-empty result.
type Chain struct {
	stages []Source
	tracer trace.Tracer
}

func NewChain(tracer trace.Tracer, stages ...Source) *Chain {
	kept := make([]Source, 0, len(stages))
	for _, s := range stages {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Chain{stages: kept, tracer: tracer}
}

// NewNewsChain builds the newsapi, google-news, static degradation order.
func NewNewsChain(api NewsSearcher, feeds FeedSearcher, c *classifier.Classifier, tracer trace.Tracer) *Chain {
	return NewChain(tracer,
		NewNewsSource(api, c, tracer),
		NewGoogleNewsSource(feeds, c, tracer),
		NewStaticSource(),
	)
}

func (c *Chain) Stages() []string {
	names := make([]string, 0, len(c.stages))
	for _, s := range c.stages {
		names = append(names, s.Name())
	}
	return names
}

// Fetch returns the winning stage name, or "" when every stage came back empty.
func (c *Chain) Fetch(ctx context.Context) ([]domain.ScoredItem, string) {
	ctx, span := c.tracer.Start(ctx, "sentiment.chain.fetch")
	defer span.End()

	for _, stage := range c.stages {
		items, err := stage.Fetch(ctx)
		if err != nil {
			logger.Warn("news stage failed", zap.String("stage", stage.Name()), zap.Error(err))
			continue
		}
		if len(items) == 0 {
			logger.Debug("news stage empty", zap.String("stage", stage.Name()))
			continue
		}
		span.SetAttributes(attribute.String("sentiment.chain.stage", stage.Name()))
		return items, stage.Name()
	}
	return nil, ""
}
