package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"metals-pulse/internal/domain"
	"metals-pulse/internal/sentiment"
	"metals-pulse/pkg/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrBriefUnavailable is returned when no LLM client or brief store is
// configured.
var ErrBriefUnavailable = errors.New("market brief unavailable")

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// PriceQuerier provides current quotes for the brief's context.
type PriceQuerier interface {
	GetCurrentPrices(ctx context.Context) ([]*domain.PriceSnapshot, error)
	GetCurrentPrice(ctx context.Context, metal domain.Metal) (*domain.PriceSnapshot, error)
}

// SentimentReader provides the most recent sentiment run.
type SentimentReader interface {
	Latest(ctx context.Context) sentiment.Result
}

// BriefStore persists generated briefs.
type BriefStore interface {
	AppendBrief(ctx context.Context, brief domain.MarketBrief) error
	RecentBriefs(ctx context.Context, limit int) ([]domain.MarketBrief, error)
}

type BriefService struct {
	tracer    trace.Tracer
	llm       LLMClient
	prices    PriceQuerier
	sentiment SentimentReader
	store     BriefStore
	model     string
	now       func() time.Time
}

func NewBriefService(
	tracer trace.Tracer,
	llm LLMClient,
	prices PriceQuerier,
	sentiment SentimentReader,
	store BriefStore,
	model string,
) *BriefService {
	return &BriefService{
		tracer:    tracer,
		llm:       llm,
		prices:    prices,
		sentiment: sentiment,
		store:     store,
		model:     model,
		now:       time.Now,
	}
}

// Enabled reports whether Generate can reach an LLM.
func (s *BriefService) Enabled() bool {
	return s != nil && s.llm != nil
}

// Generate writes a short brief from the latest index, headlines and quotes.
// focus may name metals ("silver", "XAU") to narrow the price context.
func (s *BriefService) Generate(ctx context.Context, focus string) (*domain.MarketBrief, error) {
	if !s.Enabled() {
		return nil, ErrBriefUnavailable
	}
	ctx, span := s.tracer.Start(ctx, "advisor.generate-brief")
	defer span.End()

	metals := ExtractMetals(focus)
	span.SetAttributes(attribute.StringSlice("metals", domain.MetalNames(metals)))

	var res sentiment.Result
	if s.sentiment != nil {
		res = s.sentiment.Latest(ctx)
	}

	prices, err := s.gatherPrices(ctx, metals)
	if err != nil {
		logger.Warn("failed to gather prices for brief", zap.Error(err))
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(BuildSystemPrompt(FormatMarketContext(res, prices), s.now())),
		openai.UserMessage(BuildUserPrompt(metals)),
	}

	reply, err := s.callLLM(ctx, messages)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrBriefUnavailable, err)
	}

	brief := &domain.MarketBrief{
		Content:   strings.TrimSpace(reply),
		Score:     res.Index.Score,
		Level:     res.Index.Level,
		Metals:    metals,
		Model:     s.model,
		CreatedAt: s.now().UTC(),
	}
	if brief.Level == "" {
		brief.Level = domain.LevelForScore(brief.Score)
	}

	if s.store != nil {
		if err := s.store.AppendBrief(ctx, *brief); err != nil {
			logger.Warn("failed to store market brief", zap.Error(err))
		}
	}
	return brief, nil
}

// Recent lists stored briefs, newest first.
func (s *BriefService) Recent(ctx context.Context, limit int) ([]domain.MarketBrief, error) {
	if s == nil || s.store == nil {
		return nil, ErrBriefUnavailable
	}
	ctx, span := s.tracer.Start(ctx, "advisor.recent-briefs")
	defer span.End()

	briefs, err := s.store.RecentBriefs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list briefs: %w", err)
	}
	if briefs == nil {
		briefs = []domain.MarketBrief{}
	}
	return briefs, nil
}

func (s *BriefService) gatherPrices(ctx context.Context, metals []domain.Metal) ([]*domain.PriceSnapshot, error) {
	if s.prices == nil {
		return nil, nil
	}
	ctx, span := s.tracer.Start(ctx, "advisor.gather-prices")
	defer span.End()

	if len(metals) == 0 {
		return s.prices.GetCurrentPrices(ctx)
	}

	var prices []*domain.PriceSnapshot
	for _, m := range metals {
		p, err := s.prices.GetCurrentPrice(ctx, m)
		if err != nil {
			logger.Debug("price lookup failed", zap.String("metal", string(m)), zap.Error(err))
			continue
		}
		prices = append(prices, p)
	}
	return prices, nil
}

func (s *BriefService) callLLM(
	ctx context.Context,
	messages []openai.ChatCompletionMessageParamUnion,
) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.llm-call")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", s.model),
		attribute.Int("llm.message_count", len(messages)),
	)

	completion, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("empty LLM response")
	}
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
