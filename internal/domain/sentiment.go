package domain

import "time"

// SentimentLabel is the directional classification of a single item.
type SentimentLabel string

const (
	LabelBullish SentimentLabel = "bullish"
	LabelNeutral SentimentLabel = "neutral"
	LabelBearish SentimentLabel = "bearish"
)

// SentimentLevel is one of five bands derived from an aggregate score.
type SentimentLevel string

const (
	LevelVeryBearish SentimentLevel = "very_bearish"
	LevelBearish     SentimentLevel = "bearish"
	LevelNeutral     SentimentLevel = "neutral"
	LevelBullish     SentimentLevel = "bullish"
	LevelVeryBullish SentimentLevel = "very_bullish"
)

const (
	MinScore = -100
	MaxScore = 100
)

// ScoredItem is one analyzed headline or post. Sentiment is always
// LabelForScore(Score).
type ScoredItem struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	SourceName     string         `json:"source"`
	URL            string         `json:"url"`
	PublishedAt    time.Time      `json:"publishedAt"`
	Score          int            `json:"score"`
	Sentiment      SentimentLabel `json:"sentiment"`
	RelevantMetals []Metal        `json:"relevantMetals"`
}

// SourceScores holds the per-source sub-scores of an index.
type SourceScores struct {
	News     int `json:"news"`
	Social   int `json:"social"`
	Momentum int `json:"momentum"`
}

// SentimentIndex is the aggregate result of one pipeline run.
type SentimentIndex struct {
	Score       int            `json:"score"`
	Level       SentimentLevel `json:"level"`
	Label       string         `json:"label"`
	Sources     SourceScores   `json:"sources"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// LabelForScore maps a classifier score to an item label.
func LabelForScore(score int) SentimentLabel {
	switch {
	case score > 10:
		return LabelBullish
	case score < -10:
		return LabelBearish
	default:
		return LabelNeutral
	}
}

// LevelForScore maps an aggregate score to a sentiment band.
func LevelForScore(score int) SentimentLevel {
	switch {
	case score <= -50:
		return LevelVeryBearish
	case score <= -20:
		return LevelBearish
	case score <= 20:
		return LevelNeutral
	case score <= 50:
		return LevelBullish
	default:
		return LevelVeryBullish
	}
}

var levelLabels = map[SentimentLevel]string{
	LevelVeryBearish: "Very Bearish",
	LevelBearish:     "Bearish",
	LevelNeutral:     "Neutral",
	LevelBullish:     "Bullish",
	LevelVeryBullish: "Very Bullish",
}

// LabelForLevel returns the display string for a level.
func LabelForLevel(level SentimentLevel) string {
	if label, ok := levelLabels[level]; ok {
		return label
	}
	return levelLabels[LevelNeutral]
}

// ClampScore bounds v to [MinScore, MaxScore].
func ClampScore(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
