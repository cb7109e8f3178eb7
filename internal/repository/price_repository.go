package repository

import (
	"context"
	"time"

	"metals-pulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const createMetalPricesTable = `
CREATE TABLE IF NOT EXISTS metal_prices (
    metal       TEXT        NOT NULL,
    observed_at TIMESTAMPTZ NOT NULL,
    price       NUMERIC     NOT NULL,
    PRIMARY KEY (metal, observed_at)
);

CREATE INDEX IF NOT EXISTS idx_metal_prices_metal_time
    ON metal_prices (metal, observed_at DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PriceRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPriceRepository(pool PgxPool, tracer trace.Tracer) *PriceRepository {
	return &PriceRepository{pool: pool, tracer: tracer}
}

func (r *PriceRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "price-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createMetalPricesTable)
	return err
}

// InsertPricePoints stores observations, replacing any existing price at the
// same metal and timestamp.
func (r *PriceRepository) InsertPricePoints(ctx context.Context, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "price-repo.insert-price-points")
	defer span.End()
	span.SetAttributes(attribute.Int("price_repo.points", len(points)))

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(
			`INSERT INTO metal_prices (metal, observed_at, price)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (metal, observed_at) DO UPDATE SET price = EXCLUDED.price`,
			string(p.Metal), p.ObservedAt.UTC(), p.Price,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range points {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ListPricePoints returns observations at or after since, oldest first.
func (r *PriceRepository) ListPricePoints(ctx context.Context, metal domain.Metal, since time.Time) ([]domain.PricePoint, error) {
	_, span := r.tracer.Start(ctx, "price-repo.list-price-points")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT observed_at, price
		 FROM metal_prices
		 WHERE metal = $1 AND observed_at >= $2
		 ORDER BY observed_at ASC`,
		string(metal), since.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		p := domain.PricePoint{Metal: metal}
		if err := rows.Scan(&p.ObservedAt, &p.Price); err != nil {
			return nil, err
		}
		p.ObservedAt = p.ObservedAt.UTC()
		p.Timestamp = p.ObservedAt.UnixMilli()
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *PriceRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	_, span := r.tracer.Start(ctx, "price-repo.delete-older-than")
	defer span.End()

	tag, err := r.pool.Exec(ctx, `DELETE FROM metal_prices WHERE observed_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
