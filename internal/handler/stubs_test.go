package handler

import (
	"context"
	"time"

	"metals-pulse/internal/domain"
	"metals-pulse/internal/sentiment"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

var fixedNow = time.Date(2026, 2, 13, 12, 30, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler(s SentimentProvider, p PriceQuerier) *Handler {
	h := New(trace.NewNoopTracerProvider().Tracer("handler-test"), s, p)
	h.now = func() time.Time { return fixedNow }
	return h
}

func newTestRouter(h *Handler, apiKey string) *gin.Engine {
	r := gin.New()
	h.RegisterRoutes(r, apiKey)
	return r
}

type stubSentiment struct {
	result sentiment.Result
	calls  int
}

func (s *stubSentiment) GetSentiment(ctx context.Context) sentiment.Result {
	s.calls++
	return s.result
}

type stubPrices struct {
	snapshots []*domain.PriceSnapshot
	snapshot  *domain.PriceSnapshot
	history   *domain.HistoricalData
	err       error

	lastMetal     domain.Metal
	lastTimeframe domain.Timeframe
}

func (s *stubPrices) GetCurrentPrices(ctx context.Context) ([]*domain.PriceSnapshot, error) {
	return s.snapshots, s.err
}

func (s *stubPrices) GetCurrentPrice(ctx context.Context, metal domain.Metal) (*domain.PriceSnapshot, error) {
	s.lastMetal = metal
	return s.snapshot, s.err
}

func (s *stubPrices) GetHistory(ctx context.Context, metal domain.Metal, timeframe domain.Timeframe) (*domain.HistoricalData, error) {
	s.lastMetal = metal
	s.lastTimeframe = timeframe
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

type stubBriefs struct {
	enabled   bool
	brief     *domain.MarketBrief
	briefs    []domain.MarketBrief
	err       error
	lastFocus string
	lastLimit int
}

func (s *stubBriefs) Enabled() bool { return s.enabled }

func (s *stubBriefs) Generate(ctx context.Context, focus string) (*domain.MarketBrief, error) {
	s.lastFocus = focus
	return s.brief, s.err
}

func (s *stubBriefs) Recent(ctx context.Context, limit int) ([]domain.MarketBrief, error) {
	s.lastLimit = limit
	return s.briefs, s.err
}

var (
	_ SentimentProvider = (*stubSentiment)(nil)
	_ PriceQuerier      = (*stubPrices)(nil)
	_ BriefProvider     = (*stubBriefs)(nil)
)
