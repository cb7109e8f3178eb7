package sentiment

import (
	"context"

	"metals-pulse/internal/classifier"
	"metals-pulse/internal/domain"
	"metals-pulse/internal/provider"
	"metals-pulse/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	StageNewsAPI    = "newsapi"
	StageGoogleNews = "google-news"
	StageStatic     = "static"

	newsPageSize        = 10
	googleItemsPerQuery = 3
	// googleRowsPerQuery leaves room for links an earlier query already took.
	googleRowsPerQuery = 10
)

// NewsSource classifies NewsAPI articles on title plus description.
type NewsSource struct {
	api        NewsSearcher
	classifier *classifier.Classifier
	tracer     trace.Tracer
}

func NewNewsSource(api NewsSearcher, c *classifier.Classifier, tracer trace.Tracer) *NewsSource {
	return &NewsSource{api: api, classifier: c, tracer: tracer}
}

func (s *NewsSource) Name() string { return StageNewsAPI }

func (s *NewsSource) Fetch(ctx context.Context) ([]domain.ScoredItem, error) {
	ctx, span := s.tracer.Start(ctx, "sentiment.news.fetch")
	defer span.End()

	if s.api == nil || !s.api.Configured() {
		logger.Debug("newsapi not configured, skipping")
		return nil, nil
	}

	articles, err := s.api.FetchEverything(ctx, provider.NewsAPIMetalsQuery, newsPageSize)
	if err != nil {
		logger.Warn("newsapi fetch failed", zap.Error(err))
		return nil, nil
	}

	items := make([]domain.ScoredItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, scoreContent(s.classifier, itemID(a), a))
	}
	span.SetAttributes(attribute.Int("sentiment.items", len(items)))
	return items, nil
}

// GoogleNewsSource runs one RSS search per metal and keeps the first few
// unique links from each.
type GoogleNewsSource struct {
	feeds      FeedSearcher
	classifier *classifier.Classifier
	tracer     trace.Tracer
	queries    []string
}

func NewGoogleNewsSource(feeds FeedSearcher, c *classifier.Classifier, tracer trace.Tracer) *GoogleNewsSource {
	queries := make([]string, 0, len(domain.SupportedMetals))
	for _, m := range domain.SupportedMetals {
		queries = append(queries, string(m)+" price")
	}
	return &GoogleNewsSource{feeds: feeds, classifier: c, tracer: tracer, queries: queries}
}

func (s *GoogleNewsSource) Name() string { return StageGoogleNews }

func (s *GoogleNewsSource) Fetch(ctx context.Context) ([]domain.ScoredItem, error) {
	ctx, span := s.tracer.Start(ctx, "sentiment.google-news.fetch")
	defer span.End()

	if s.feeds == nil {
		return nil, nil
	}

	results := make([][]provider.ContentItem, len(s.queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range s.queries {
		g.Go(func() error {
			rows, err := s.feeds.Search(gctx, q, googleRowsPerQuery)
			if err != nil {
				logger.Warn("google news query failed", zap.String("query", q), zap.Error(err))
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	items := make([]domain.ScoredItem, 0, len(s.queries)*googleItemsPerQuery)
	for _, rows := range results {
		taken := 0
		for _, row := range rows {
			if taken >= googleItemsPerQuery {
				break
			}
			key := dedupeKey(row)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			taken++
			items = append(items, scoreContent(s.classifier, itemID(row), row))
		}
	}
	span.SetAttributes(attribute.Int("sentiment.items", len(items)))
	return items, nil
}

func dedupeKey(item provider.ContentItem) string {
	if item.URL != "" && item.URL != "#" {
		return item.URL
	}
	return "title:" + item.Title
}

// itemID is stable across runs for the same link.
func itemID(item provider.ContentItem) string {
	key := item.URL
	if key == "" || key == "#" {
		key = item.Source + ":" + item.SourceItemID + ":" + item.Title
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
