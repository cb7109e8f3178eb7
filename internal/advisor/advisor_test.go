package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"metals-pulse/internal/domain"
	"metals-pulse/internal/sentiment"

	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func completion(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func latestResult() sentiment.Result {
	return sentiment.Result{
		Index: domain.SentimentIndex{
			Score:   27,
			Level:   domain.LevelBullish,
			Label:   "Bullish",
			Sources: domain.SourceScores{News: 60, Social: 0, Momentum: 30},
		},
		Items: []domain.ScoredItem{
			{ID: "news-0", Title: "Gold rallies on safe-haven demand", SourceName: "Reuters", Score: 20, Sentiment: domain.LabelBullish},
		},
		NewsStage: sentiment.StageStatic,
	}
}

func TestGenerateHappyPath(t *testing.T) {
	llm := &stubLLMClient{response: completion("  Gold leads a bullish tape.  ")}
	store := &stubBriefStore{}
	prices := &stubPrices{price: &domain.PriceSnapshot{Metal: domain.MetalSilver, Price: 31.42}}
	reader := &stubSentiment{result: latestResult()}

	svc := NewBriefService(testTracer, llm, prices, reader, store, "gpt-4o-mini")
	fixed := time.Date(2026, 2, 13, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	brief, err := svc.Generate(context.Background(), "how is silver doing?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if brief.Content != "Gold leads a bullish tape." {
		t.Fatalf("expected trimmed content, got %q", brief.Content)
	}
	if brief.Score != 27 || brief.Level != domain.LevelBullish || brief.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected brief: %+v", brief)
	}
	if len(brief.Metals) != 1 || brief.Metals[0] != domain.MetalSilver {
		t.Fatalf("expected silver focus, got %v", brief.Metals)
	}
	if !brief.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected created_at: %v", brief.CreatedAt)
	}
	if prices.singleCalls != 1 || prices.allCalls != 0 {
		t.Fatalf("expected targeted price lookup, got single=%d all=%d", prices.singleCalls, prices.allCalls)
	}
	if len(store.briefs) != 1 {
		t.Fatalf("expected brief to be stored, got %d", len(store.briefs))
	}
	if llm.lastParams.Model != "gpt-4o-mini" || len(llm.lastParams.Messages) != 2 {
		t.Fatalf("unexpected llm params: model=%s messages=%d", llm.lastParams.Model, len(llm.lastParams.Messages))
	}
}

func TestGenerateWithoutFocusUsesAllPrices(t *testing.T) {
	llm := &stubLLMClient{response: completion("brief")}
	prices := &stubPrices{allPrices: []*domain.PriceSnapshot{{Metal: domain.MetalGold, Price: 2634.5}}}

	svc := NewBriefService(testTracer, llm, prices, &stubSentiment{result: latestResult()}, nil, "gpt-4o-mini")
	if _, err := svc.Generate(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prices.allCalls != 1 {
		t.Fatalf("expected all prices to be queried, got %d", prices.allCalls)
	}
}

func TestGenerateDisabledWithoutLLM(t *testing.T) {
	svc := NewBriefService(testTracer, nil, &stubPrices{}, &stubSentiment{}, &stubBriefStore{}, "gpt-4o-mini")
	if svc.Enabled() {
		t.Fatal("expected service to be disabled")
	}
	if _, err := svc.Generate(context.Background(), "gold"); !errors.Is(err, ErrBriefUnavailable) {
		t.Fatalf("expected ErrBriefUnavailable, got %v", err)
	}

	var nilSvc *BriefService
	if nilSvc.Enabled() {
		t.Fatal("nil service should report disabled")
	}
}

func TestGenerateLLMError(t *testing.T) {
	store := &stubBriefStore{}
	svc := NewBriefService(testTracer, &stubLLMClient{err: errors.New("api down")}, &stubPrices{}, &stubSentiment{}, store, "gpt-4o-mini")

	_, err := svc.Generate(context.Background(), "")
	if !errors.Is(err, ErrBriefUnavailable) {
		t.Fatalf("expected ErrBriefUnavailable, got %v", err)
	}
	if len(store.briefs) != 0 {
		t.Fatal("nothing should be stored on LLM failure")
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	svc := NewBriefService(testTracer, &stubLLMClient{response: &openai.ChatCompletion{}}, nil, nil, nil, "gpt-4o-mini")
	if _, err := svc.Generate(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestGenerateSurvivesPriceAndStoreFailures(t *testing.T) {
	llm := &stubLLMClient{response: completion("still works")}
	store := &stubBriefStore{appendErr: errors.New("db down")}
	prices := &stubPrices{err: errors.New("price service down")}

	svc := NewBriefService(testTracer, llm, prices, nil, store, "gpt-4o-mini")
	brief, err := svc.Generate(context.Background(), "")
	if err != nil {
		t.Fatalf("price/store failures should be non-fatal, got: %v", err)
	}
	if brief.Level != domain.LevelNeutral {
		t.Fatalf("expected neutral level without sentiment, got %s", brief.Level)
	}
}

func TestRecent(t *testing.T) {
	store := &stubBriefStore{}
	svc := NewBriefService(testTracer, nil, nil, nil, store, "gpt-4o-mini")

	briefs, err := svc.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if briefs == nil || len(briefs) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", briefs)
	}
	if store.lastLimit != 5 {
		t.Fatalf("expected limit 5, got %d", store.lastLimit)
	}

	noStore := NewBriefService(testTracer, nil, nil, nil, nil, "gpt-4o-mini")
	if _, err := noStore.Recent(context.Background(), 5); !errors.Is(err, ErrBriefUnavailable) {
		t.Fatalf("expected ErrBriefUnavailable, got %v", err)
	}
}

// --- stubs ---

type stubLLMClient struct {
	response   *openai.ChatCompletion
	err        error
	lastParams openai.ChatCompletionNewParams
}

func (s *stubLLMClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.lastParams = params
	return s.response, s.err
}

type stubBriefStore struct {
	briefs    []domain.MarketBrief
	appendErr error
	lastLimit int
}

func (s *stubBriefStore) AppendBrief(ctx context.Context, brief domain.MarketBrief) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.briefs = append(s.briefs, brief)
	return nil
}

func (s *stubBriefStore) RecentBriefs(ctx context.Context, limit int) ([]domain.MarketBrief, error) {
	s.lastLimit = limit
	return nil, nil
}

type stubPrices struct {
	price       *domain.PriceSnapshot
	allPrices   []*domain.PriceSnapshot
	err         error
	singleCalls int
	allCalls    int
}

func (s *stubPrices) GetCurrentPrice(ctx context.Context, metal domain.Metal) (*domain.PriceSnapshot, error) {
	s.singleCalls++
	if s.err != nil {
		return nil, s.err
	}
	if s.price != nil {
		return s.price, nil
	}
	return &domain.PriceSnapshot{Metal: metal}, nil
}

func (s *stubPrices) GetCurrentPrices(ctx context.Context) ([]*domain.PriceSnapshot, error) {
	s.allCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.allPrices, nil
}

type stubSentiment struct {
	result sentiment.Result
}

func (s *stubSentiment) Latest(ctx context.Context) sentiment.Result {
	return s.result
}

var (
	_ LLMClient       = (*stubLLMClient)(nil)
	_ BriefStore      = (*stubBriefStore)(nil)
	_ PriceQuerier    = (*stubPrices)(nil)
	_ SentimentReader = (*stubSentiment)(nil)
)
