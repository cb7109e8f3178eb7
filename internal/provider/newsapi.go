package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	newsAPIBaseURL      = "https://newsapi.org/v2"
	NewsAPIMetalsQuery  = "(gold OR silver OR platinum OR copper) AND price"
	defaultNewsPageSize = 10
)

var ErrMissingAPIKey = errors.New("api key not configured")

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		Author      string     `json:"author"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		URL         string     `json:"url"`
		PublishedAt *time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// NewsAPIProvider queries the NewsAPI /everything endpoint.
type NewsAPIProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewNewsAPIProvider(apiKey string, timeout time.Duration, tracer trace.Tracer) *NewsAPIProvider {
	return &NewsAPIProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: newsAPIBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		tracer:  tracer,
	}
}

func (p *NewsAPIProvider) Configured() bool {
	return p != nil && p.apiKey != ""
}

// FetchEverything returns the newest articles matching query, newest first.
func (p *NewsAPIProvider) FetchEverything(ctx context.Context, query string, pageSize int) ([]ContentItem, error) {
	ctx, span := p.tracer.Start(ctx, "newsapi.fetch-everything")
	defer span.End()

	if !p.Configured() {
		return nil, ErrMissingAPIKey
	}
	if pageSize <= 0 {
		pageSize = defaultNewsPageSize
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(pageSize))
	endpoint := strings.TrimRight(p.baseURL, "/") + "/everything?" + params.Encode()

	header := acceptJSON()
	header.Set("X-Api-Key", p.apiKey)

	var payload newsAPIResponse
	if err := getJSON(ctx, p.client, "newsapi", endpoint, header, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q: %s %s", payload.Status, payload.Code, payload.Message)
	}
	span.SetAttributes(attribute.Int("newsapi.articles", len(payload.Articles)))

	items := make([]ContentItem, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		title := sanitizeText(a.Title, 0)
		if title == "" {
			continue
		}
		publisher := sanitizeText(a.Source.Name, 120)
		if publisher == "" {
			publisher = "NewsAPI"
		}
		items = append(items, ContentItem{
			Source:       "newsapi",
			SourceItemID: strings.TrimSpace(a.URL),
			Publisher:    publisher,
			Title:        title,
			URL:          orPlaceholderURL(strings.TrimSpace(a.URL)),
			Excerpt:      sanitizeText(htmlStrip(a.Description), 0),
			Author:       sanitizeText(a.Author, 120),
			PublishedAt:  timeOrNow(a.PublishedAt),
		})
	}
	return items, nil
}
