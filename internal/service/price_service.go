package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"metals-pulse/internal/domain"
	"metals-pulse/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	priceCacheTTL    = 90 * time.Second
	priceCachePrefix = "price:"
)

var ErrHistoryUnavailable = errors.New("price history unavailable")

type PriceProvider interface {
	FetchPrices(ctx context.Context) (map[domain.Metal]*domain.PriceSnapshot, error)
}

type PriceHistoryRepository interface {
	InsertPricePoints(ctx context.Context, points []domain.PricePoint) error
	ListPricePoints(ctx context.Context, metal domain.Metal, since time.Time) ([]domain.PricePoint, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// PriceService orchestrates quote fetching, caching and price history.
type PriceService struct {
	tracer   trace.Tracer
	provider PriceProvider
	repo     PriceHistoryRepository
	redis    RedisClient
	now      func() time.Time
}

func NewPriceService(
	tracer trace.Tracer,
	provider PriceProvider,
	repo PriceHistoryRepository,
	redisClient RedisClient,
) *PriceService {
	return &PriceService{
		tracer:   tracer,
		provider: provider,
		repo:     repo,
		redis:    redisClient,
		now:      time.Now,
	}
}

// GetCurrentPrice returns the cached quote for a metal, fetching on a miss.
func (s *PriceService) GetCurrentPrice(ctx context.Context, metal domain.Metal) (*domain.PriceSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "price-service.get-current-price")
	defer span.End()
	span.SetAttributes(attribute.String("metal", string(metal)))

	if _, ok := domain.Metals[metal]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMetal, metal)
	}

	if s.redis != nil {
		cached, err := s.getPriceCache(ctx, metal)
		if err != nil {
			logger.Warn("redis cache read error", zap.String("metal", string(metal)), zap.Error(err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	prices, err := s.fetchAndCache(ctx)
	if err != nil {
		return nil, err
	}
	snap, ok := prices[metal]
	if !ok {
		return nil, fmt.Errorf("price not available for %s", metal)
	}
	return snap, nil
}

// GetCurrentPrices returns quotes for every tracked metal in canonical order.
func (s *PriceService) GetCurrentPrices(ctx context.Context) ([]*domain.PriceSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "price-service.get-current-prices")
	defer span.End()

	found := make(map[domain.Metal]*domain.PriceSnapshot, len(domain.SupportedMetals))
	missing := 0
	for _, metal := range domain.SupportedMetals {
		if s.redis != nil {
			cached, _ := s.getPriceCache(ctx, metal)
			if cached != nil {
				found[metal] = cached
				continue
			}
		}
		missing++
	}

	if missing > 0 {
		prices, err := s.fetchAndCache(ctx)
		if err != nil {
			return orderSnapshots(found), err
		}
		for metal, snap := range prices {
			if _, ok := found[metal]; !ok {
				found[metal] = snap
			}
		}
	}

	return orderSnapshots(found), nil
}

// RefreshPrices fetches the latest quotes, caches them and appends them to
// the price history.
func (s *PriceService) RefreshPrices(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "price-service.refresh-prices")
	defer span.End()

	prices, err := s.fetchAndCache(ctx)
	if err != nil {
		return err
	}

	if s.repo != nil {
		points := make([]domain.PricePoint, 0, len(prices))
		for _, snap := range orderSnapshots(prices) {
			points = append(points, domain.PricePoint{
				Metal:      snap.Metal,
				ObservedAt: snap.LastUpdated.UTC(),
				Timestamp:  snap.LastUpdated.UnixMilli(),
				Price:      snap.Price,
			})
		}
		if err := s.repo.InsertPricePoints(ctx, points); err != nil {
			return fmt.Errorf("record price history: %w", err)
		}
	}

	logger.Info("refreshed metal prices", zap.Int("metals", len(prices)))
	return nil
}

// GetHistory returns stored observations for the timeframe window.
func (s *PriceService) GetHistory(ctx context.Context, metal domain.Metal, timeframe domain.Timeframe) (*domain.HistoricalData, error) {
	ctx, span := s.tracer.Start(ctx, "price-service.get-history")
	defer span.End()
	span.SetAttributes(attribute.String("metal", string(metal)), attribute.String("timeframe", string(timeframe)))

	if _, ok := domain.Metals[metal]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMetal, metal)
	}
	window, err := timeframe.Window()
	if err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, ErrHistoryUnavailable
	}

	points, err := s.repo.ListPricePoints(ctx, metal, s.now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("list price history for %s: %w", metal, err)
	}
	if points == nil {
		points = []domain.PricePoint{}
	}
	return &domain.HistoricalData{Metal: metal, Timeframe: timeframe, Data: points}, nil
}

// PruneHistory drops observations older than retention.
func (s *PriceService) PruneHistory(ctx context.Context, retention time.Duration) (int64, error) {
	if s.repo == nil || retention <= 0 {
		return 0, nil
	}
	ctx, span := s.tracer.Start(ctx, "price-service.prune-history")
	defer span.End()
	return s.repo.DeleteOlderThan(ctx, s.now().Add(-retention))
}

func (s *PriceService) fetchAndCache(ctx context.Context) (map[domain.Metal]*domain.PriceSnapshot, error) {
	prices, err := s.provider.FetchPrices(ctx)
	if err != nil {
		return nil, err
	}
	for _, snap := range prices {
		s.enrichFromHistory(ctx, snap)
		if s.redis != nil {
			if err := s.setPriceCache(ctx, snap); err != nil {
				logger.Warn("redis cache write error", zap.String("metal", string(snap.Metal)), zap.Error(err))
			}
		}
	}
	return prices, nil
}

// enrichFromHistory fills 24h change and range for providers that only
// report a spot price.
func (s *PriceService) enrichFromHistory(ctx context.Context, snap *domain.PriceSnapshot) {
	if s.repo == nil || snap.ChangePercent24h != 0 || snap.Change24h != 0 {
		return
	}
	points, err := s.repo.ListPricePoints(ctx, snap.Metal, s.now().Add(-24*time.Hour))
	if err != nil || len(points) == 0 {
		return
	}
	first := points[0].Price
	if first > 0 {
		snap.Change24h = snap.Price - first
		snap.ChangePercent24h = snap.Change24h / first * 100
	}
	snap.High24h, snap.Low24h = snap.Price, snap.Price
	for _, p := range points {
		snap.High24h = max(snap.High24h, p.Price)
		snap.Low24h = min(snap.Low24h, p.Price)
	}
}

func orderSnapshots(byMetal map[domain.Metal]*domain.PriceSnapshot) []*domain.PriceSnapshot {
	out := make([]*domain.PriceSnapshot, 0, len(byMetal))
	for _, metal := range domain.SupportedMetals {
		if snap, ok := byMetal[metal]; ok {
			out = append(out, snap)
		}
	}
	return out
}

func (s *PriceService) setPriceCache(ctx context.Context, snapshot *domain.PriceSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, priceCachePrefix+string(snapshot.Metal), data, priceCacheTTL).Err()
}

func (s *PriceService) getPriceCache(ctx context.Context, metal domain.Metal) (*domain.PriceSnapshot, error) {
	data, err := s.redis.Get(ctx, priceCachePrefix+string(metal)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot domain.PriceSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
