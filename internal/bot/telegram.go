package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"metals-pulse/internal/domain"
	"metals-pulse/internal/sentiment"
	"metals-pulse/pkg/logger"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	replyTimeout     = 30 * time.Second
	headlinesInReply = 3
)

type SentimentReader interface {
	Latest(ctx context.Context) sentiment.Result
}

type PriceReader interface {
	GetCurrentPrice(ctx context.Context, metal domain.Metal) (*domain.PriceSnapshot, error)
}

type BriefWriter interface {
	Enabled() bool
	Generate(ctx context.Context, focus string) (*domain.MarketBrief, error)
}

// Services are the read paths the bot exposes. Brief may be nil.
type Services struct {
	Sentiment SentimentReader
	Prices    PriceReader
	Brief     BriefWriter
}

var newBot = tele.NewBot

// StartTelegramBot registers command handlers and polls until ctx is done.
// An empty token disables the bot.
func StartTelegramBot(ctx context.Context, token string, svc Services) {
	if strings.TrimSpace(token) == "" {
		logger.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	b, err := newBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		logger.Error("failed to create Telegram bot", zap.Error(err))
		return
	}

	h := &handlers{svc: svc}
	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/sentiment", func(c tele.Context) error {
		return c.Send(h.sentimentReply(ctx))
	})
	b.Handle("/price", func(c tele.Context) error {
		return c.Send(h.priceReply(ctx, c.Args()))
	})
	b.Handle("/brief", func(c tele.Context) error {
		return c.Send(h.briefReply(ctx, c.Args()))
	})

	logger.Info("telegram bot started")
	go b.Start()
	go func() {
		<-ctx.Done()
		b.Stop()
	}()
}

type handlers struct {
	svc Services
}

func (h *handlers) sentimentReply(ctx context.Context) string {
	if h.svc.Sentiment == nil {
		return "Sentiment is not available right now."
	}
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	return FormatSentiment(h.svc.Sentiment.Latest(ctx))
}

func (h *handlers) priceReply(ctx context.Context, args []string) string {
	supported := strings.Join(domain.MetalNames(domain.SupportedMetals), ", ")
	if len(args) == 0 {
		return fmt.Sprintf("Usage: /price gold\nSupported: %s", supported)
	}
	metal, ok := domain.ParseMetal(args[0])
	if !ok {
		return fmt.Sprintf("Unknown metal: %s\nSupported: %s", args[0], supported)
	}
	if h.svc.Prices == nil {
		return "Prices are not available right now."
	}

	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	snapshot, err := h.svc.Prices.GetCurrentPrice(ctx, metal)
	if err != nil {
		logger.Warn("telegram price lookup failed", zap.String("metal", string(metal)), zap.Error(err))
		return fmt.Sprintf("Error fetching price for %s", metal)
	}
	return FormatPrice(snapshot)
}

func (h *handlers) briefReply(ctx context.Context, args []string) string {
	if h.svc.Brief == nil || !h.svc.Brief.Enabled() {
		return "Market brief is not configured."
	}
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	brief, err := h.svc.Brief.Generate(ctx, strings.Join(args, " "))
	if err != nil {
		logger.Warn("telegram brief failed", zap.Error(err))
		return "Market brief is temporarily unavailable."
	}
	return brief.Content
}

func FormatSentiment(res sentiment.Result) string {
	idx := res.Index
	var sb strings.Builder
	fmt.Fprintf(&sb, "Metals sentiment: %s (%+d)\n", idx.Label, idx.Score)
	fmt.Fprintf(&sb, "News %+d | Social %+d | Momentum %+d\n", idx.Sources.News, idx.Sources.Social, idx.Sources.Momentum)
	for i, item := range res.Items {
		if i == headlinesInReply {
			break
		}
		fmt.Fprintf(&sb, "\n%s %s (%s)", sentimentMarker(item.Sentiment), item.Title, item.SourceName)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func FormatPrice(s *domain.PriceSnapshot) string {
	info := domain.Metals[s.Metal]
	return fmt.Sprintf(
		"%s (%s)\nPrice: $%.2f/%s\n24h Change: %+.2f (%+.2f%%)\n24h Range: $%.2f - $%.2f",
		info.Name, info.Symbol, s.Price, info.Unit,
		s.Change24h, s.ChangePercent24h, s.Low24h, s.High24h,
	)
}

func sentimentMarker(label domain.SentimentLabel) string {
	switch label {
	case domain.LabelBullish:
		return "▲"
	case domain.LabelBearish:
		return "▼"
	default:
		return "•"
	}
}
