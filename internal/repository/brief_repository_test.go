package repository

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"metals-pulse/internal/domain"
)

func TestBriefRepository_AppendBrief(t *testing.T) {
	pool := &fakePool{}
	repo := NewBriefRepository(pool, testTracer)
	created := time.Date(2026, 2, 13, 9, 30, 0, 0, time.UTC)

	err := repo.AppendBrief(context.Background(), domain.MarketBrief{
		Content:   "Gold firm on safe-haven demand.",
		Score:     27,
		Level:     domain.LevelBullish,
		Metals:    []domain.Metal{domain.MetalGold, domain.MetalSilver},
		Model:     "gpt-4o-mini",
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execs) != 1 || !strings.Contains(pool.execs[0].sql, "INSERT INTO market_briefs") {
		t.Fatalf("unexpected exec: %+v", pool.execs)
	}
	args := pool.execs[0].args
	if args[2] != "bullish" || !reflect.DeepEqual(args[3], []string{"gold", "silver"}) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBriefRepository_RecentBriefs(t *testing.T) {
	ts := time.Date(2026, 2, 13, 9, 30, 0, 0, time.UTC)
	pool := &fakePool{rows: [][]any{
		{int64(2), "Silver lags.", 5, "neutral", []string{"silver"}, "gpt-4o-mini", ts},
	}}
	repo := NewBriefRepository(pool, testTracer)

	briefs, err := repo.RecentBriefs(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.queryArgs[0] != 10 {
		t.Fatalf("expected default limit 10, got %v", pool.queryArgs[0])
	}
	if len(briefs) != 1 {
		t.Fatalf("expected 1 brief, got %d", len(briefs))
	}
	b := briefs[0]
	if b.ID != 2 || b.Level != domain.LevelNeutral || len(b.Metals) != 1 || b.Metals[0] != domain.MetalSilver {
		t.Fatalf("unexpected brief: %+v", b)
	}
	if !b.CreatedAt.Equal(ts) {
		t.Fatalf("unexpected created_at: %v", b.CreatedAt)
	}
}
