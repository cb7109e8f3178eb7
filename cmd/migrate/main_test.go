package main

import (
	"testing"
	"testing/fstest"
	"time"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("unexpected error loading embedded migrations: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "metal_prices" {
		t.Fatalf("unexpected first migration: %d %s", migrations[0].Version, migrations[0].Name)
	}
	if migrations[1].Version != 2 || migrations[1].Name != "market_briefs" {
		t.Fatalf("unexpected second migration: %d %s", migrations[1].Version, migrations[1].Name)
	}
	for _, m := range migrations {
		if m.UpSQL == "" || m.DownSQL == "" {
			t.Fatalf("version %d has empty sql", m.Version)
		}
	}
}

func TestLoadMigrationsRejects(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"missing down": {
			"migrations/0001_metal_prices.up.sql": {Data: []byte("CREATE TABLE x (id INT);")},
		},
		"bad filename": {
			"migrations/metal_prices.sql": {Data: []byte("SELECT 1;")},
		},
		"empty file": {
			"migrations/0001_a.up.sql":   {Data: []byte("  ")},
			"migrations/0001_a.down.sql": {Data: []byte("DROP TABLE a;")},
		},
		"conflicting names": {
			"migrations/0001_a.up.sql":   {Data: []byte("CREATE TABLE a (id INT);")},
			"migrations/0001_b.down.sql": {Data: []byte("DROP TABLE a;")},
		},
		"no files": {},
	}
	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := loadMigrations(fsys); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func sampleMigrations() []migration {
	return []migration{
		{Version: 1, Name: "metal_prices", UpSQL: "up1", DownSQL: "down1"},
		{Version: 2, Name: "market_briefs", UpSQL: "up2", DownSQL: "down2"},
		{Version: 3, Name: "extra", UpSQL: "up3", DownSQL: "down3"},
	}
}

func TestPendingUp(t *testing.T) {
	pending := pendingUp(sampleMigrations(), []appliedVersion{{Version: 1}, {Version: 3}})
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Fatalf("expected only version 2 pending, got %+v", pending)
	}
	if got := pendingUp(sampleMigrations(), nil); len(got) != 3 {
		t.Fatalf("expected all pending on fresh database, got %d", len(got))
	}
}

func TestPlanDown(t *testing.T) {
	applied := []appliedVersion{{Version: 1}, {Version: 2}, {Version: 3}}

	plan, err := planDown(sampleMigrations(), applied, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != 2 || plan[0].Version != 3 || plan[1].Version != 2 {
		t.Fatalf("expected newest first [3 2], got %+v", plan)
	}

	plan, err = planDown(sampleMigrations(), applied[:1], 5)
	if err != nil || len(plan) != 1 {
		t.Fatalf("expected steps capped by applied count, got %+v %v", plan, err)
	}

	if _, err := planDown(sampleMigrations(), []appliedVersion{{Version: 9}}, 1); err == nil {
		t.Fatal("expected error for applied version without source")
	}
	if _, err := planDown(sampleMigrations(), applied, 0); err == nil {
		t.Fatal("expected error for zero steps")
	}
}

func TestMigrationStatus(t *testing.T) {
	at := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	lines := migrationStatus(sampleMigrations(), []appliedVersion{{Version: 2, AppliedAt: at}})
	if len(lines) != 3 {
		t.Fatalf("expected a line per migration, got %d", len(lines))
	}
	if lines[0].Applied || !lines[1].Applied || lines[2].Applied {
		t.Fatalf("unexpected applied flags: %+v", lines)
	}
	if !lines[1].AppliedAt.Equal(at) || lines[1].Name != "market_briefs" {
		t.Fatalf("unexpected applied line: %+v", lines[1])
	}
}

func TestParseSteps(t *testing.T) {
	if n, err := parseSteps(nil); err != nil || n != 1 {
		t.Fatalf("expected default of 1, got %d %v", n, err)
	}
	if n, err := parseSteps([]string{"3"}); err != nil || n != 3 {
		t.Fatalf("expected 3, got %d %v", n, err)
	}
	for _, bad := range []string{"0", "-2", "two"} {
		if _, err := parseSteps([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
