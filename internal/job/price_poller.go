package job

import (
	"context"
	"time"

	"metals-pulse/pkg/logger"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const pruneInterval = 24 * time.Hour

// PricePoller runs background goroutines that refresh quotes and trim the
// stored price history.
type PricePoller struct {
	tracer       trace.Tracer
	priceService PriceDataRefresher
	pollInterval time.Duration
	retention    time.Duration
}

type PriceDataRefresher interface {
	RefreshPrices(ctx context.Context) error
	PruneHistory(ctx context.Context, retention time.Duration) (int64, error)
}

func NewPricePoller(tracer trace.Tracer, priceService PriceDataRefresher, pollInterval, retention time.Duration) *PricePoller {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Minute
	}
	return &PricePoller{
		tracer:       tracer,
		priceService: priceService,
		pollInterval: pollInterval,
		retention:    retention,
	}
}

// Start launches background polling goroutines. Blocks until ctx is cancelled.
func (p *PricePoller) Start(ctx context.Context) {
	logger.Info("price poller starting", zap.Duration("interval", p.pollInterval))

	go p.pollLoop(ctx, "current-prices", p.pollInterval, func(ctx context.Context) error {
		return p.priceService.RefreshPrices(ctx)
	})

	if p.retention > 0 {
		go p.pollLoop(ctx, "prune-history", pruneInterval, p.pruneOnce)
	}

	<-ctx.Done()
	logger.Info("price poller stopped")
}

func (p *PricePoller) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	p.runOnce(ctx, name, fn)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx, name, fn)
		}
	}
}

func (p *PricePoller) runOnce(ctx context.Context, name string, fn func(context.Context) error) {
	ctx, span := p.tracer.Start(ctx, "price-poller."+name)
	defer span.End()

	if err := fn(ctx); err != nil {
		logger.Warn("poller run failed", zap.String("poller", name), zap.Error(err))
	}
}

func (p *PricePoller) pruneOnce(ctx context.Context) error {
	removed, err := p.priceService.PruneHistory(ctx, p.retention)
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Info("pruned price history", zap.Int64("rows", removed))
	}
	return nil
}
