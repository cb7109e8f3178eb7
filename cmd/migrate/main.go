package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	"metals-pulse/internal/config"
	"metals-pulse/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const usage = "usage: go run ./cmd/migrate [up|down [steps]|status]"

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	openPool       = pgxpool.New
)

func main() {
	config.LoadDotEnv(loadEnvFunc)
	cfg := loadConfigFunc()
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		logger.Warn("logger init failed", zap.Error(err))
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		logger.Fatal(usage)
	}
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := openPool(ctx, dsn)
	if err != nil {
		logger.Fatal("connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := run(ctx, &runner{db: pool}, os.Args[1], os.Args[2:]); err != nil {
		logger.Fatal("migrate failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func run(ctx context.Context, r *runner, command string, args []string) error {
	all, err := loadMigrations(migrationsFS)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	if err := r.ensureTable(ctx); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	applied, err := r.applied(ctx)
	if err != nil {
		return fmt.Errorf("read applied versions: %w", err)
	}

	switch command {
	case "up":
		n, err := r.up(ctx, pendingUp(all, applied))
		if err != nil {
			return err
		}
		logger.Info("migrations up complete", zap.Int("applied", n))
	case "down":
		steps, err := parseSteps(args)
		if err != nil {
			return err
		}
		plan, err := planDown(all, applied, steps)
		if err != nil {
			return err
		}
		n, err := r.down(ctx, plan)
		if err != nil {
			return err
		}
		logger.Info("migrations down complete", zap.Int("rolled_back", n))
	case "status":
		for _, s := range migrationStatus(all, applied) {
			fields := []zap.Field{zap.Int64("version", s.Version), zap.String("name", s.Name)}
			if s.Applied {
				logger.Info("applied", append(fields, zap.String("at", s.AppliedAt.UTC().Format(time.RFC3339)))...)
			} else {
				logger.Info("pending", fields...)
			}
		}
	default:
		return fmt.Errorf("unknown command %q; %s", command, usage)
	}
	return nil
}
