package domain

import "time"

// MarketBrief is a short LLM-written summary of the current index.
type MarketBrief struct {
	ID        int64          `json:"id,omitempty"`
	Content   string         `json:"content"`
	Score     int            `json:"score"`
	Level     SentimentLevel `json:"level"`
	Metals    []Metal        `json:"metals,omitempty"`
	Model     string         `json:"model"`
	CreatedAt time.Time      `json:"createdAt"`
}
