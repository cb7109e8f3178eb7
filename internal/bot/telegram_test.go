package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"metals-pulse/internal/domain"
	"metals-pulse/internal/sentiment"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	StartTelegramBot(context.Background(), "", Services{})
}

func TestPriceReply(t *testing.T) {
	prices := &stubPrices{snapshot: &domain.PriceSnapshot{
		Metal: domain.MetalSilver, Price: 31.42, Change24h: -0.25, ChangePercent24h: -0.8, High24h: 31.89, Low24h: 30.95,
	}}
	h := &handlers{svc: Services{Prices: prices}}

	got := h.priceReply(context.Background(), []string{"XAG"})
	if prices.lastMetal != domain.MetalSilver {
		t.Fatalf("expected ticker to resolve to silver, got %s", prices.lastMetal)
	}
	for _, want := range []string{"Silver (XAG)", "Price: $31.42/oz", "(-0.80%)", "$30.95 - $31.89"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in reply:\n%s", want, got)
		}
	}
}

func TestPriceReplyUsageAndUnknown(t *testing.T) {
	h := &handlers{svc: Services{Prices: &stubPrices{}}}

	if got := h.priceReply(context.Background(), nil); !strings.HasPrefix(got, "Usage: /price gold") {
		t.Fatalf("unexpected usage reply: %s", got)
	}
	got := h.priceReply(context.Background(), []string{"palladium"})
	if !strings.HasPrefix(got, "Unknown metal: palladium") || !strings.Contains(got, "gold, silver, copper, platinum") {
		t.Fatalf("unexpected unknown reply: %s", got)
	}
}

func TestPriceReplyError(t *testing.T) {
	h := &handlers{svc: Services{Prices: &stubPrices{err: errors.New("down")}}}
	if got := h.priceReply(context.Background(), []string{"gold"}); got != "Error fetching price for gold" {
		t.Fatalf("unexpected reply: %s", got)
	}
}

func TestSentimentReply(t *testing.T) {
	res := sentiment.Result{
		Index: domain.SentimentIndex{
			Score: 27, Level: domain.LevelBullish, Label: "Bullish",
			Sources: domain.SourceScores{News: 60, Social: 0, Momentum: 30},
		},
		Items: []domain.ScoredItem{
			{Title: "Gold rallies", SourceName: "Reuters", Sentiment: domain.LabelBullish},
			{Title: "Silver slips", SourceName: "CNBC", Sentiment: domain.LabelBearish},
			{Title: "Copper flat", SourceName: "Kitco News", Sentiment: domain.LabelNeutral},
			{Title: "Fourth headline", SourceName: "Bloomberg", Sentiment: domain.LabelNeutral},
		},
	}
	h := &handlers{svc: Services{Sentiment: &stubSentiment{result: res}}}

	got := h.sentimentReply(context.Background())
	if !strings.HasPrefix(got, "Metals sentiment: Bullish (+27)\nNews +60 | Social +0 | Momentum +30") {
		t.Fatalf("unexpected header: %s", got)
	}
	if !strings.Contains(got, "▲ Gold rallies (Reuters)") || !strings.Contains(got, "▼ Silver slips (CNBC)") {
		t.Fatalf("missing headlines: %s", got)
	}
	if strings.Contains(got, "Fourth headline") {
		t.Fatalf("expected at most %d headlines: %s", headlinesInReply, got)
	}

	empty := &handlers{}
	if got := empty.sentimentReply(context.Background()); got != "Sentiment is not available right now." {
		t.Fatalf("unexpected reply without service: %s", got)
	}
}

func TestBriefReply(t *testing.T) {
	brief := &stubBrief{enabled: true, brief: &domain.MarketBrief{Content: "Gold leads."}}
	h := &handlers{svc: Services{Brief: brief}}

	if got := h.briefReply(context.Background(), []string{"gold", "silver"}); got != "Gold leads." {
		t.Fatalf("unexpected reply: %s", got)
	}
	if brief.lastFocus != "gold silver" {
		t.Fatalf("expected focus to be joined args, got %q", brief.lastFocus)
	}

	brief.err = errors.New("llm down")
	if got := h.briefReply(context.Background(), nil); got != "Market brief is temporarily unavailable." {
		t.Fatalf("unexpected error reply: %s", got)
	}

	disabled := &handlers{svc: Services{Brief: &stubBrief{}}}
	if got := disabled.briefReply(context.Background(), nil); got != "Market brief is not configured." {
		t.Fatalf("unexpected disabled reply: %s", got)
	}
}

type stubPrices struct {
	snapshot  *domain.PriceSnapshot
	err       error
	lastMetal domain.Metal
}

func (s *stubPrices) GetCurrentPrice(ctx context.Context, metal domain.Metal) (*domain.PriceSnapshot, error) {
	s.lastMetal = metal
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

type stubSentiment struct {
	result sentiment.Result
}

func (s *stubSentiment) Latest(ctx context.Context) sentiment.Result { return s.result }

type stubBrief struct {
	enabled   bool
	brief     *domain.MarketBrief
	err       error
	lastFocus string
}

func (s *stubBrief) Enabled() bool { return s.enabled }

func (s *stubBrief) Generate(ctx context.Context, focus string) (*domain.MarketBrief, error) {
	s.lastFocus = focus
	if s.err != nil {
		return nil, s.err
	}
	return s.brief, nil
}

var (
	_ PriceReader     = (*stubPrices)(nil)
	_ SentimentReader = (*stubSentiment)(nil)
	_ BriefWriter     = (*stubBrief)(nil)
)
