package sentiment

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"metals-pulse/internal/domain"
	"metals-pulse/pkg/logger"

	"go.uber.org/zap"
)

// MomentumSource yields the momentum sub-score in [-100, 100].
type MomentumSource interface {
	Momentum(ctx context.Context) int
}

// PlaceholderMomentum draws uniformly from [10, 49].
type PlaceholderMomentum struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewPlaceholderMomentum(src rand.Source) *PlaceholderMomentum {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1)
	}
	return &PlaceholderMomentum{rng: rand.New(src)}
}

func (p *PlaceholderMomentum) Momentum(ctx context.Context) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(40) + 10
}

type PricePointReader interface {
	ListPricePoints(ctx context.Context, metal domain.Metal, since time.Time) ([]domain.PricePoint, error)
}

const momentumPointsPerPercent = 20

// PriceHistoryMomentum scores the average realized return across metals over
// the lookback window.
type PriceHistoryMomentum struct {
	history  PricePointReader
	lookback time.Duration
	fallback MomentumSource
	now      func() time.Time
}

func NewPriceHistoryMomentum(history PricePointReader, lookback time.Duration, fallback MomentumSource) *PriceHistoryMomentum {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	if fallback == nil {
		fallback = NewPlaceholderMomentum(nil)
	}
	return &PriceHistoryMomentum{history: history, lookback: lookback, fallback: fallback, now: time.Now}
}

func (m *PriceHistoryMomentum) Momentum(ctx context.Context) int {
	if m.history == nil {
		return m.fallback.Momentum(ctx)
	}
	since := m.now().Add(-m.lookback)

	var sum float64
	var n int
	for _, metal := range domain.SupportedMetals {
		points, err := m.history.ListPricePoints(ctx, metal, since)
		if err != nil {
			logger.Warn("momentum history unavailable", zap.String("metal", string(metal)), zap.Error(err))
			continue
		}
		if ret, ok := realizedReturnPct(points); ok {
			sum += ret
			n++
		}
	}
	if n == 0 {
		return m.fallback.Momentum(ctx)
	}
	return domain.ClampScore(roundHalfUp(sum / float64(n) * momentumPointsPerPercent))
}

// realizedReturnPct expects points in ascending time order.
func realizedReturnPct(points []domain.PricePoint) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	first := points[0].Price
	last := points[len(points)-1].Price
	if first <= 0 {
		return 0, false
	}
	return (last - first) / first * 100, true
}
