package domain

import (
	"errors"
	"fmt"
	"time"
)

// PriceSnapshot represents the latest quote for a metal.
type PriceSnapshot struct {
	Metal            Metal     `json:"metal"`
	Price            float64   `json:"price"`
	Change24h        float64   `json:"change24h"`
	ChangePercent24h float64   `json:"changePercent24h"`
	High24h          float64   `json:"high24h"`
	Low24h           float64   `json:"low24h"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// PricePoint is one stored observation in the price history.
type PricePoint struct {
	Metal      Metal     `json:"-"`
	ObservedAt time.Time `json:"date"`
	Timestamp  int64     `json:"timestamp"`
	Price      float64   `json:"price"`
}

// Timeframe selects a history window.
type Timeframe string

const (
	Timeframe24H Timeframe = "24h"
	Timeframe7D  Timeframe = "7d"
	Timeframe30D Timeframe = "30d"
	Timeframe1Y  Timeframe = "1y"
)

var SupportedTimeframes = []Timeframe{Timeframe24H, Timeframe7D, Timeframe30D, Timeframe1Y}

// HistoricalData is a series of price points for one metal and window.
type HistoricalData struct {
	Metal     Metal        `json:"metal"`
	Timeframe Timeframe    `json:"timeframe"`
	Data      []PricePoint `json:"data"`
}

var (
	ErrUnsupportedMetal = errors.New("unsupported metal")
	ErrInvalidTimeframe = errors.New("invalid timeframe")
)

// Window returns the lookback duration covered by the timeframe.
func (tf Timeframe) Window() (time.Duration, error) {
	switch tf {
	case Timeframe24H:
		return 24 * time.Hour, nil
	case Timeframe7D:
		return 7 * 24 * time.Hour, nil
	case Timeframe30D:
		return 30 * 24 * time.Hour, nil
	case Timeframe1Y:
		return 365 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidTimeframe, tf)
	}
}
