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
	redditBaseURL     = "https://www.reddit.com"
	defaultRedditUA   = "metals-pulse/1.0 (precious metals sentiment)"
	defaultRedditSize = 10
	maxRedditSize     = 100
)

// ErrRateLimited means the client-side request budget is spent.
var ErrRateLimited = errors.New("reddit request budget exhausted")

// redditListing is the subset of a /hot.json listing we read.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Author      string  `json:"author"`
	CreatedUTC  float64 `json:"created_utc"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	Score       float64 `json:"score"`
	NumComments float64 `json:"num_comments"`
	Stickied    bool    `json:"stickied"`
}

// contentItem maps a post, linking to its permalink when one is present.
// Posts without an id are dropped.
func (p redditPost) contentItem(base, forum string) (ContentItem, bool) {
	if strings.TrimSpace(p.ID) == "" {
		return ContentItem{}, false
	}
	link := strings.TrimSpace(p.URL)
	if permalink := strings.TrimSpace(p.Permalink); permalink != "" {
		link = base + permalink
	}
	var created time.Time
	if p.CreatedUTC > 0 {
		created = time.Unix(int64(p.CreatedUTC), 0)
	}
	sub := strings.TrimSpace(p.Subreddit)
	if sub == "" {
		sub = forum
	}
	return ContentItem{
		Source:       "reddit",
		SourceItemID: p.ID,
		Publisher:    "r/" + forum,
		Title:        sanitizeText(p.Title, 0),
		URL:          orPlaceholderURL(link),
		Excerpt:      sanitizeText(p.SelfText, 0),
		Author:       sanitizeText(p.Author, 120),
		PublishedAt:  timeOrNow(&created),
		Metadata: map[string]any{
			"subreddit":    sub,
			"score":        p.Score,
			"num_comments": p.NumComments,
			"stickied":     p.Stickied,
		},
	}, true
}

// RedditProvider reads public subreddit listings. Unauthenticated clients
// get roughly ten requests a minute, enforced by the limiter.
type RedditProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	tracer    trace.Tracer
	limiter   *RateLimiter
}

func NewRedditProvider(timeout time.Duration, tracer trace.Tracer) *RedditProvider {
	return &RedditProvider{
		client:    &http.Client{Timeout: timeout},
		baseURL:   redditBaseURL,
		userAgent: defaultRedditUA,
		tracer:    tracer,
		limiter:   NewRateLimiter(10, 6*time.Second),
	}
}

// FetchHot returns up to limit posts from the forum's hot listing, in
// listing order.
func (p *RedditProvider) FetchHot(ctx context.Context, subreddit string, limit int) ([]ContentItem, error) {
	ctx, span := p.tracer.Start(ctx, "reddit.fetch-hot")
	defer span.End()

	forum := strings.TrimSpace(subreddit)
	if forum == "" {
		return nil, fmt.Errorf("subreddit is required")
	}
	limit = clampLimit(limit, defaultRedditSize, maxRedditSize)
	span.SetAttributes(attribute.String("reddit.subreddit", forum), attribute.Int("reddit.limit", limit))

	// The bucket outlives a single aggregation run, so an empty bucket fails
	// the forum right away instead of holding up the social branch.
	if p.limiter != nil && !p.limiter.TryAcquire() {
		return nil, ErrRateLimited
	}

	base := strings.TrimRight(p.baseURL, "/")
	endpoint := base + "/r/" + url.PathEscape(forum) + "/hot.json?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	header := acceptJSON()
	if p.userAgent != "" {
		header.Set("User-Agent", p.userAgent)
	}

	var listing redditListing
	if err := getJSON(ctx, p.client, "reddit", endpoint, header, &listing); err != nil {
		return nil, err
	}

	items := make([]ContentItem, 0, min(limit, len(listing.Data.Children)))
	for _, child := range listing.Data.Children {
		if len(items) == limit {
			break
		}
		if item, ok := child.Data.contentItem(base, forum); ok {
			items = append(items, item)
		}
	}
	span.SetAttributes(attribute.Int("reddit.items", len(items)))
	return items, nil
}

func clampLimit(n, fallback, ceiling int) int {
	if n <= 0 {
		return fallback
	}
	return min(n, ceiling)
}
