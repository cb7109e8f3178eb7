package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// migrationDB is the part of *pgxpool.Pool the runner needs.
type migrationDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

const createMigrationTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version     BIGINT PRIMARY KEY,
    name        TEXT NOT NULL,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type runner struct {
	db migrationDB
}

func (r *runner) ensureTable(ctx context.Context) error {
	_, err := r.db.Exec(ctx, createMigrationTable)
	return err
}

func (r *runner) applied(ctx context.Context) ([]appliedVersion, error) {
	rows, err := r.db.Query(ctx, `SELECT version, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[appliedVersion])
}

// up applies each migration in its own transaction and stops at the first
// failure, returning how many were committed.
func (r *runner) up(ctx context.Context, pending []migration) (int, error) {
	for i, m := range pending {
		err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name)
			return err
		})
		if err != nil {
			return i, fmt.Errorf("version %d up: %w", m.Version, err)
		}
	}
	return len(pending), nil
}

func (r *runner) down(ctx context.Context, plan []migration) (int, error) {
	for i, m := range plan {
		err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.DownSQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, m.Version)
			return err
		})
		if err != nil {
			return i, fmt.Errorf("version %d down: %w", m.Version, err)
		}
	}
	return len(plan), nil
}
