package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"metals-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	metalsDevBaseURL = "https://api.metals.dev/v1"

	// TroyOuncesPerPound converts a per-troy-ounce quote to per-pound.
	TroyOuncesPerPound = 14.5833
)

// QuoteProvider returns the latest quote for every tracked metal it knows.
type QuoteProvider interface {
	FetchPrices(ctx context.Context) (map[domain.Metal]*domain.PriceSnapshot, error)
}

// MetalsDevProvider fetches spot quotes from metals.dev.
type MetalsDevProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewMetalsDevProvider(apiKey string, timeout time.Duration, tracer trace.Tracer) *MetalsDevProvider {
	return &MetalsDevProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: metalsDevBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		tracer:  tracer,
		limiter: NewRateLimiter(5, 12*time.Second),
	}
}

// FetchPrices requests troy-ounce quotes and reports copper per pound.
func (p *MetalsDevProvider) FetchPrices(ctx context.Context) (map[domain.Metal]*domain.PriceSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "metalsdev.fetch-prices")
	defer span.End()

	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if p.limiter != nil {
		if err := p.waitForToken(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	params := url.Values{}
	params.Set("api_key", p.apiKey)
	params.Set("currency", "USD")
	params.Set("unit", "toz")
	endpoint := strings.TrimRight(p.baseURL, "/") + "/latest?" + params.Encode()

	var payload struct {
		Status     string             `json:"status"`
		ErrorCode  int                `json:"error_code"`
		ErrorMsg   string             `json:"error_message"`
		Metals     map[string]float64 `json:"metals"`
		Timestamps struct {
			Metal *time.Time `json:"metal"`
		} `json:"timestamps"`
	}
	if err := getJSON(ctx, p.client, "metals.dev", endpoint, acceptJSON(), &payload); err != nil {
		return nil, err
	}
	if payload.Status != "success" {
		return nil, fmt.Errorf("metals.dev status %q: %d %s", payload.Status, payload.ErrorCode, payload.ErrorMsg)
	}

	updated := timeOrNow(payload.Timestamps.Metal)
	result := make(map[domain.Metal]*domain.PriceSnapshot, len(domain.SupportedMetals))
	for _, metal := range domain.SupportedMetals {
		price, ok := payload.Metals[string(metal)]
		if !ok || price <= 0 {
			continue
		}
		if domain.Metals[metal].Unit == "lb" {
			price *= TroyOuncesPerPound
		}
		result[metal] = &domain.PriceSnapshot{
			Metal:       metal,
			Price:       price,
			High24h:     price,
			Low24h:      price,
			LastUpdated: updated,
		}
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("metals.dev returned no tracked metals")
	}
	return result, nil
}

type referenceQuote struct {
	price         float64
	changePercent float64
}

var referenceQuotes = map[domain.Metal]referenceQuote{
	domain.MetalGold:     {price: 2634.50, changePercent: 1.2},
	domain.MetalSilver:   {price: 31.42, changePercent: -0.8},
	domain.MetalCopper:   {price: 4.21, changePercent: 0.3},
	domain.MetalPlatinum: {price: 982.00, changePercent: 0.5},
}

// ReferenceQuoteProvider serves fixed quotes for running without a metals.dev key.
type ReferenceQuoteProvider struct {
	now func() time.Time
}

func NewReferenceQuoteProvider() *ReferenceQuoteProvider {
	return &ReferenceQuoteProvider{now: time.Now}
}

func (p *ReferenceQuoteProvider) FetchPrices(ctx context.Context) (map[domain.Metal]*domain.PriceSnapshot, error) {
	now := p.now().UTC()
	result := make(map[domain.Metal]*domain.PriceSnapshot, len(referenceQuotes))
	for _, metal := range domain.SupportedMetals {
		q := referenceQuotes[metal]
		result[metal] = &domain.PriceSnapshot{
			Metal:            metal,
			Price:            q.price,
			Change24h:        q.price * q.changePercent / 100,
			ChangePercent24h: q.changePercent,
			High24h:          q.price * 1.015,
			Low24h:           q.price * 0.985,
			LastUpdated:      now,
		}
	}
	return result, nil
}

var (
	_ QuoteProvider = (*MetalsDevProvider)(nil)
	_ QuoteProvider = (*ReferenceQuoteProvider)(nil)
)

// waitForToken blocks for a limiter token no longer than one request may take.
func (p *MetalsDevProvider) waitForToken(ctx context.Context) error {
	if p.client.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.client.Timeout)
		defer cancel()
	}
	return p.limiter.Wait(ctx)
}
