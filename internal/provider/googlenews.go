package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	googleNewsBaseURL   = "https://news.google.com/rss/search"
	GoogleNewsPublisher = "Google News"
)

// GoogleNewsProvider runs keyword searches against the Google News RSS feed.
// It needs no credentials.
type GoogleNewsProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewGoogleNewsProvider(timeout time.Duration, tracer trace.Tracer) *GoogleNewsProvider {
	return &GoogleNewsProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: googleNewsBaseURL,
		tracer:  tracer,
	}
}

func (p *GoogleNewsProvider) Search(ctx context.Context, query string, maxItems int) ([]ContentItem, error) {
	ctx, span := p.tracer.Start(ctx, "googlenews.search")
	defer span.End()
	span.SetAttributes(attribute.String("googlenews.query", query))

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if maxItems <= 0 {
		maxItems = 3
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")
	u := p.baseURL + "?" + params.Encode()

	body, err := get(ctx, p.client, "google news", u, http.Header{
		"Accept": []string{"application/rss+xml, application/xml, text/xml"},
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("decode google news feed: %w", err)
	}

	items := make([]ContentItem, 0, min(maxItems, len(feed.Items)))
	for _, row := range feed.Items {
		if len(items) >= maxItems {
			break
		}
		title := sanitizeText(row.Title, 0)
		if title == "" {
			continue
		}
		link := sanitizeText(row.Link, 0)
		sourceID := sanitizeText(row.GUID, 250)
		if sourceID == "" {
			sourceID = link
		}
		items = append(items, ContentItem{
			Source:       "google-news",
			SourceItemID: sourceID,
			Publisher:    GoogleNewsPublisher,
			Title:        title,
			URL:          orPlaceholderURL(link),
			Excerpt:      sanitizeText(htmlStrip(row.Description), 0),
			PublishedAt:  timeOrNow(row.PublishedParsed),
			Metadata: map[string]any{
				"query": query,
			},
		})
	}

	return items, nil
}
