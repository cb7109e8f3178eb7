package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"metals-pulse/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var errUnavailable = errors.New("service unavailable")

type tools struct {
	sentiment SentimentProvider
	prices    PriceQuerier
}

type SentimentInput struct{}

type SourceScores struct {
	News     int `json:"news"`
	Social   int `json:"social"`
	Momentum int `json:"momentum"`
}

type Headline struct {
	Title       string   `json:"title"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"publishedAt"`
	Score       int      `json:"score"`
	Sentiment   string   `json:"sentiment"`
	Metals      []string `json:"metals"`
}

type SentimentOutput struct {
	Score     int          `json:"score"`
	Level     string       `json:"level"`
	Label     string       `json:"label"`
	Sources   SourceScores `json:"sources"`
	NewsStage string       `json:"newsStage"`
	Headlines []Headline   `json:"headlines"`
	UpdatedAt string       `json:"updatedAt"`
}

type PricesInput struct {
	Metal string `json:"metal,omitempty" jsonschema:"metal id or ticker such as gold or XAG; omit for all metals"`
}

type Quote struct {
	Metal            string  `json:"metal"`
	Symbol           string  `json:"symbol"`
	Unit             string  `json:"unit"`
	Price            float64 `json:"price"`
	Change24h        float64 `json:"change24h"`
	ChangePercent24h float64 `json:"changePercent24h"`
	High24h          float64 `json:"high24h"`
	Low24h           float64 `json:"low24h"`
	UpdatedAt        string  `json:"updatedAt"`
}

type PricesOutput struct {
	Prices []Quote `json:"prices"`
}

func (t *tools) getSentiment(ctx context.Context, _ *mcp.CallToolRequest, _ SentimentInput) (*mcp.CallToolResult, SentimentOutput, error) {
	if t.sentiment == nil {
		return nil, SentimentOutput{}, errUnavailable
	}
	res := t.sentiment.GetSentiment(ctx)

	out := SentimentOutput{
		Score:     res.Index.Score,
		Level:     string(res.Index.Level),
		Label:     res.Index.Label,
		Sources:   SourceScores(res.Index.Sources),
		NewsStage: res.NewsStage,
		Headlines: make([]Headline, 0, len(res.Items)),
		UpdatedAt: formatTime(res.Index.LastUpdated),
	}
	for _, item := range res.Items {
		out.Headlines = append(out.Headlines, Headline{
			Title:       item.Title,
			Source:      item.SourceName,
			URL:         item.URL,
			PublishedAt: formatTime(item.PublishedAt),
			Score:       item.Score,
			Sentiment:   string(item.Sentiment),
			Metals:      domain.MetalNames(item.RelevantMetals),
		})
	}
	return nil, out, nil
}

func (t *tools) getPrices(ctx context.Context, _ *mcp.CallToolRequest, in PricesInput) (*mcp.CallToolResult, PricesOutput, error) {
	if t.prices == nil {
		return nil, PricesOutput{}, errUnavailable
	}

	var snapshots []*domain.PriceSnapshot
	if in.Metal != "" {
		metal, ok := domain.ParseMetal(in.Metal)
		if !ok {
			return nil, PricesOutput{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedMetal, in.Metal)
		}
		snap, err := t.prices.GetCurrentPrice(ctx, metal)
		if err != nil {
			return nil, PricesOutput{}, err
		}
		snapshots = append(snapshots, snap)
	} else {
		var err error
		snapshots, err = t.prices.GetCurrentPrices(ctx)
		if err != nil {
			return nil, PricesOutput{}, err
		}
	}

	out := PricesOutput{Prices: make([]Quote, 0, len(snapshots))}
	for _, s := range snapshots {
		info := domain.Metals[s.Metal]
		out.Prices = append(out.Prices, Quote{
			Metal:            string(s.Metal),
			Symbol:           info.Symbol,
			Unit:             info.Unit,
			Price:            s.Price,
			Change24h:        s.Change24h,
			ChangePercent24h: s.ChangePercent24h,
			High24h:          s.High24h,
			Low24h:           s.Low24h,
			UpdatedAt:        formatTime(s.LastUpdated),
		})
	}
	return nil, out, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
