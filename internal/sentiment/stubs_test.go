package sentiment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"metals-pulse/internal/classifier"
	"metals-pulse/internal/domain"
	"metals-pulse/internal/provider"

	"go.opentelemetry.io/otel/trace"
)

var errOffline = errors.New("network unreachable")

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

type stubNewsAPI struct {
	configured bool
	items      []provider.ContentItem
	err        error
	calls      int
}

func (s *stubNewsAPI) Configured() bool { return s.configured }

func (s *stubNewsAPI) FetchEverything(ctx context.Context, query string, pageSize int) ([]provider.ContentItem, error) {
	s.calls++
	return s.items, s.err
}

type stubFeeds struct {
	mu      sync.Mutex
	byQuery map[string][]provider.ContentItem
	failing map[string]bool
	queries []string
	limits  []int
}

func (s *stubFeeds) Search(ctx context.Context, query string, maxItems int) ([]provider.ContentItem, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.limits = append(s.limits, maxItems)
	s.mu.Unlock()
	if s.failing[query] || s.failing["*"] {
		return nil, errOffline
	}
	return s.byQuery[query], nil
}

type stubForums struct {
	posts   map[string][]provider.ContentItem
	failing map[string]bool
	order   []string
}

func (s *stubForums) FetchHot(ctx context.Context, subreddit string, limit int) ([]provider.ContentItem, error) {
	s.order = append(s.order, subreddit)
	if s.failing[subreddit] || s.failing["*"] {
		return nil, errOffline
	}
	return s.posts[subreddit], nil
}

type fixedMomentum int

func (f fixedMomentum) Momentum(ctx context.Context) int { return int(f) }

type stubSource struct {
	name  string
	items []domain.ScoredItem
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) ([]domain.ScoredItem, error) {
	s.calls++
	return s.items, s.err
}

type stubPriceHistory struct {
	points map[domain.Metal][]domain.PricePoint
	err    error
}

func (s *stubPriceHistory) ListPricePoints(ctx context.Context, metal domain.Metal, since time.Time) ([]domain.PricePoint, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.points[metal], nil
}

func article(n int, title string) provider.ContentItem {
	return provider.ContentItem{
		Source:       "newsapi",
		SourceItemID: fmt.Sprintf("a-%d", n),
		Publisher:    "Reuters",
		Title:        title,
		URL:          fmt.Sprintf("https://news.example/%d", n),
		PublishedAt:  time.Date(2026, 2, 13, 10, n, 0, 0, time.UTC),
	}
}

func post(id, title, body string) provider.ContentItem {
	return provider.ContentItem{
		Source:       "reddit",
		SourceItemID: id,
		Title:        title,
		Excerpt:      body,
		URL:          "https://reddit.example/" + id,
		PublishedAt:  time.Date(2026, 2, 13, 9, 0, 0, 0, time.UTC),
	}
}

func scored(id string, score int) domain.ScoredItem {
	return domain.ScoredItem{
		ID:             id,
		Title:          id,
		SourceName:     "test",
		URL:            "#",
		Score:          score,
		Sentiment:      domain.LabelForScore(score),
		RelevantMetals: []domain.Metal{domain.MetalGold},
	}
}

func upDownClassifier() *classifier.Classifier {
	return classifier.New(classifier.Lexicon{Bullish: []string{"up"}, Bearish: []string{"down"}}, nil)
}

var (
	_ NewsSearcher     = (*stubNewsAPI)(nil)
	_ FeedSearcher     = (*stubFeeds)(nil)
	_ ForumReader      = (*stubForums)(nil)
	_ MomentumSource   = fixedMomentum(0)
	_ Source           = (*stubSource)(nil)
	_ PricePointReader = (*stubPriceHistory)(nil)
)
