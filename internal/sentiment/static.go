package sentiment

import (
	"context"
	"fmt"
	"time"

	"metals-pulse/internal/domain"
)

const (
	staticBullishScore = 20
	staticNeutralScore = 0
)

type staticHeadline struct {
	title  string
	score  int
	metals []domain.Metal
}

var staticHeadlines = []staticHeadline{
	{"Gold prices rally as investors seek safe haven amid market volatility", staticBullishScore, []domain.Metal{domain.MetalGold}},
	{"Silver demand hits record high from industrial applications", staticBullishScore, []domain.Metal{domain.MetalSilver}},
	{"Copper prices stabilize after recent correction", staticNeutralScore, []domain.Metal{domain.MetalCopper}},
	{"Platinum gains momentum on automotive sector recovery", staticBullishScore, []domain.Metal{domain.MetalPlatinum}},
	{"Central bank gold purchases continue at record pace", staticBullishScore, []domain.Metal{domain.MetalGold}},
}

var staticPublishers = []string{"Reuters", "Bloomberg", "CNBC", "MarketWatch", "Kitco News"}

// StaticSource is the last fallback stage. It never touches the network.
type StaticSource struct {
	now func() time.Time
}

func NewStaticSource() *StaticSource {
	return &StaticSource{now: time.Now}
}

func (s *StaticSource) Name() string { return StageStatic }

func (s *StaticSource) Fetch(ctx context.Context) ([]domain.ScoredItem, error) {
	now := s.now().UTC()
	items := make([]domain.ScoredItem, 0, len(staticHeadlines))
	for i, h := range staticHeadlines {
		items = append(items, domain.ScoredItem{
			ID:             fmt.Sprintf("news-%d", i),
			Title:          h.title,
			SourceName:     staticPublishers[i%len(staticPublishers)],
			URL:            "#",
			PublishedAt:    now.Add(-time.Duration(i) * time.Hour),
			Score:          h.score,
			Sentiment:      domain.LabelForScore(h.score),
			RelevantMetals: append([]domain.Metal(nil), h.metals...),
		})
	}
	return items, nil
}
