package repository

import (
	"context"
	"time"

	"metals-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const createMarketBriefsTable = `
CREATE TABLE IF NOT EXISTS market_briefs (
    id          BIGSERIAL   PRIMARY KEY,
    content     TEXT        NOT NULL,
    score       INTEGER     NOT NULL,
    level       TEXT        NOT NULL,
    metals      TEXT[]      NOT NULL DEFAULT '{}',
    model       TEXT        NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_market_briefs_created
    ON market_briefs (created_at DESC);
`

type BriefRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewBriefRepository(pool PgxPool, tracer trace.Tracer) *BriefRepository {
	return &BriefRepository{pool: pool, tracer: tracer}
}

func (r *BriefRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "brief-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createMarketBriefsTable)
	return err
}

func (r *BriefRepository) AppendBrief(ctx context.Context, brief domain.MarketBrief) error {
	_, span := r.tracer.Start(ctx, "brief-repo.append-brief")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO market_briefs (content, score, level, metals, model, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		brief.Content, brief.Score, string(brief.Level), domain.MetalNames(brief.Metals), brief.Model, brief.CreatedAt.UTC(),
	)
	return err
}

// RecentBriefs returns up to limit briefs, newest first.
func (r *BriefRepository) RecentBriefs(ctx context.Context, limit int) ([]domain.MarketBrief, error) {
	_, span := r.tracer.Start(ctx, "brief-repo.recent-briefs")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, content, score, level, metals, model, created_at
		 FROM market_briefs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var briefs []domain.MarketBrief
	for rows.Next() {
		var (
			b      domain.MarketBrief
			level  string
			metals []string
			ts     time.Time
		)
		if err := rows.Scan(&b.ID, &b.Content, &b.Score, &level, &metals, &b.Model, &ts); err != nil {
			return nil, err
		}
		b.Level = domain.SentimentLevel(level)
		for _, m := range metals {
			b.Metals = append(b.Metals, domain.Metal(m))
		}
		b.CreatedAt = ts.UTC()
		briefs = append(briefs, b)
	}
	return briefs, rows.Err()
}
