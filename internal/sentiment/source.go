// Package sentiment turns raw headlines and forum posts into scored items and
// combines them into a single bounded sentiment index.
package sentiment

import (
	"context"
	"math"

	"metals-pulse/internal/classifier"
	"metals-pulse/internal/domain"
	"metals-pulse/internal/provider"
)

// Source produces scored items. Implementations swallow their own transport
// and credential failures and report them as an empty slice.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.ScoredItem, error)
}

type NewsSearcher interface {
	Configured() bool
	FetchEverything(ctx context.Context, query string, pageSize int) ([]provider.ContentItem, error)
}

type FeedSearcher interface {
	Search(ctx context.Context, query string, maxItems int) ([]provider.ContentItem, error)
}

type ForumReader interface {
	FetchHot(ctx context.Context, subreddit string, limit int) ([]provider.ContentItem, error)
}

// scoreContent classifies the full title and body. Only the title shown to
// clients is shortened.
func scoreContent(c *classifier.Classifier, id string, item provider.ContentItem) domain.ScoredItem {
	text := item.Text()
	res := c.Classify(text)
	return domain.ScoredItem{
		ID:             id,
		Title:          provider.Truncate(item.Title, maxTitleBytes),
		SourceName:     item.Publisher,
		URL:            item.URL,
		PublishedAt:    item.PublishedAt,
		Score:          res.Score,
		Sentiment:      res.Label,
		RelevantMetals: c.DetectMetals(text),
	}
}

const maxTitleBytes = 300

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
