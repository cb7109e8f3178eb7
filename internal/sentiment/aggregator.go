package sentiment

import (
	"context"
	"time"

	"metals-pulse/internal/domain"
	"metals-pulse/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MaxDisplayItems = 8

	itemVote       = 15
	newsWeight     = 0.35
	socialWeight   = 0.45
	momentumWeight = 0.2
)

// Result is one pipeline run: the index, the capped display list and the
// news stage that supplied headlines.
type Result struct {
	Index     domain.SentimentIndex
	Items     []domain.ScoredItem
	NewsStage string
}

type SocialCollector interface {
	Collect(ctx context.Context) SocialResult
}

type NewsFetcher interface {
	Fetch(ctx context.Context) ([]domain.ScoredItem, string)
}

type Aggregator struct {
	social   SocialCollector
	news     NewsFetcher
	momentum MomentumSource
	tracer   trace.Tracer
	now      func() time.Time
}

func NewAggregator(social SocialCollector, news NewsFetcher, momentum MomentumSource, tracer trace.Tracer) *Aggregator {
	if momentum == nil {
		momentum = NewPlaceholderMomentum(nil)
	}
	return &Aggregator{social: social, news: news, momentum: momentum, tracer: tracer, now: time.Now}
}

// Aggregate never fails; degraded sources contribute empty lists or zero scores.
func (a *Aggregator) Aggregate(ctx context.Context) Result {
	ctx, span := a.tracer.Start(ctx, "sentiment.aggregate")
	defer span.End()

	var (
		social    SocialResult
		newsItems []domain.ScoredItem
		stage     string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if a.social != nil {
			social = a.social.Collect(gctx)
		}
		return nil
	})
	g.Go(func() error {
		if a.news != nil {
			newsItems, stage = a.news.Fetch(gctx)
		}
		return nil
	})
	_ = g.Wait()

	merged := make([]domain.ScoredItem, 0, len(newsItems)+len(social.Items))
	merged = append(merged, newsItems...)
	merged = append(merged, social.Items...)
	if len(merged) > MaxDisplayItems {
		merged = merged[:MaxDisplayItems]
	}
	for i := range merged {
		merged[i] = repairItem(merged[i])
	}

	scores := domain.SourceScores{
		News:     newsScore(merged),
		Social:   domain.ClampScore(social.Score),
		Momentum: domain.ClampScore(a.momentum.Momentum(ctx)),
	}
	overall := weightedScore(scores)
	level := domain.LevelForScore(overall)

	span.SetAttributes(
		attribute.Int("sentiment.score", overall),
		attribute.String("sentiment.news_stage", stage),
		attribute.Int("sentiment.items", len(merged)),
	)
	logger.Debug("sentiment aggregated",
		zap.Int("score", overall),
		zap.Int("news", scores.News),
		zap.Int("social", scores.Social),
		zap.Int("momentum", scores.Momentum),
		zap.String("stage", stage),
	)

	return Result{
		Index: domain.SentimentIndex{
			Score:       overall,
			Level:       level,
			Label:       domain.LabelForLevel(level),
			Sources:     scores,
			LastUpdated: a.now().UTC(),
		},
		Items:     merged,
		NewsStage: stage,
	}
}

// weightedScore sums the unrounded weighted products and rounds once. The
// explicit float64 conversions stop the compiler from fusing a multiply into
// the following add, so results match on every architecture.
func weightedScore(s domain.SourceScores) int {
	news := float64(float64(s.News) * newsWeight)
	social := float64(float64(s.Social) * socialWeight)
	momentum := float64(float64(s.Momentum) * momentumWeight)
	return roundHalfUp(news + social + momentum)
}

func newsScore(items []domain.ScoredItem) int {
	score := 0
	for _, item := range items {
		switch item.Sentiment {
		case domain.LabelBullish:
			score += itemVote
		case domain.LabelBearish:
			score -= itemVote
		}
	}
	return domain.ClampScore(score)
}

// repairItem restores item invariants a misbehaving source may have broken.
func repairItem(item domain.ScoredItem) domain.ScoredItem {
	if len(item.RelevantMetals) == 0 {
		logger.Error("scored item has no metals", zap.String("id", item.ID))
		item.RelevantMetals = []domain.Metal{domain.MetalGold}
	}
	if clamped := domain.ClampScore(item.Score); clamped != item.Score {
		logger.Error("scored item out of range", zap.String("id", item.ID), zap.Int("score", item.Score))
		item.Score = clamped
	}
	if want := domain.LabelForScore(item.Score); item.Sentiment != want {
		logger.Error("scored item label mismatch", zap.String("id", item.ID), zap.String("label", string(item.Sentiment)))
		item.Sentiment = want
	}
	return item
}
