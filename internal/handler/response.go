package handler

import "metals-pulse/internal/domain"

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Briefs    bool   `json:"briefs"`
	Timestamp string `json:"timestamp"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type SentimentResponse struct {
	Success   bool                  `json:"success"`
	Sentiment domain.SentimentIndex `json:"sentiment"`
	News      []domain.ScoredItem   `json:"news"`
	Timestamp string                `json:"timestamp"`
}

type PricesResponse struct {
	Success   bool                    `json:"success"`
	Prices    []*domain.PriceSnapshot `json:"prices"`
	Timestamp string                  `json:"timestamp"`
}

type PriceResponse struct {
	Success   bool                  `json:"success"`
	Price     *domain.PriceSnapshot `json:"price"`
	Timestamp string                `json:"timestamp"`
}

type HistoryResponse struct {
	Success   bool                   `json:"success"`
	Data      *domain.HistoricalData `json:"data"`
	Timestamp string                 `json:"timestamp"`
}

type BriefRequest struct {
	Focus string `json:"focus"`
}

type BriefResponse struct {
	Success   bool                `json:"success"`
	Brief     *domain.MarketBrief `json:"brief"`
	Timestamp string              `json:"timestamp"`
}

type BriefListResponse struct {
	Success   bool                 `json:"success"`
	Briefs    []domain.MarketBrief `json:"briefs"`
	Timestamp string               `json:"timestamp"`
}
