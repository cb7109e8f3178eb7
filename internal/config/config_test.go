package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_ADDR", "API_KEY", "TELEGRAM_BOT_TOKEN", "DATABASE_URL", "REDIS_URL",
		"NEWS_API_KEY", "SOURCE_TIMEOUT", "SUBREDDITS", "REDDIT_POST_LIMIT",
		"METALS_API_KEY", "PRICE_POLL_SECS", "HISTORY_RETENTION_DAYS", "SENTIMENT_REFRESH_MINS", "MOMENTUM_MODE", "MOMENTUM_LOOKBACK_HOURS",
		"MCP_TRANSPORT", "MCP_HTTP_BIND", "MCP_HTTP_PORT", "OPENAI_API_KEY", "OPENAI_MODEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.PricePollSecs != 300 {
		t.Fatalf("expected default poll secs 300, got %d", cfg.PricePollSecs)
	}
	if cfg.HistoryRetention() != 400*24*time.Hour || cfg.SentimentRefreshInterval() != 15*time.Minute {
		t.Fatalf("unexpected retention/refresh defaults: %v %v", cfg.HistoryRetention(), cfg.SentimentRefreshInterval())
	}
	if cfg.SourceTimeoutDuration() != 5*time.Second {
		t.Fatalf("expected 5s source timeout, got %v", cfg.SourceTimeoutDuration())
	}
	want := []string{"Gold", "Silverbugs", "WallStreetSilver", "Platinum"}
	if len(cfg.Subreddits) != len(want) {
		t.Fatalf("expected default subreddits, got %v", cfg.Subreddits)
	}
	for i := range want {
		if cfg.Subreddits[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cfg.Subreddits)
		}
	}
	if cfg.MomentumMode != MomentumPlaceholder || cfg.MCPTransport != "stdio" {
		t.Fatalf("unexpected modes: %+v", cfg)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" || cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("PRICE_POLL_SECS", "120")
	t.Setenv("SOURCE_TIMEOUT", "2s")
	t.Setenv("SUBREDDITS", "Gold, ,Silverbugs")
	t.Setenv("MOMENTUM_MODE", "HISTORY")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.PricePollInterval() != 120*time.Second {
		t.Fatalf("expected poll interval 120s, got %v", cfg.PricePollInterval())
	}
	if cfg.SourceTimeoutDuration() != 2*time.Second {
		t.Fatalf("expected 2s, got %v", cfg.SourceTimeoutDuration())
	}
	if len(cfg.Subreddits) != 2 || cfg.Subreddits[1] != "Silverbugs" {
		t.Fatalf("expected blank forums dropped, got %v", cfg.Subreddits)
	}
	if cfg.MomentumMode != MomentumHistory {
		t.Fatalf("expected history momentum, got %s", cfg.MomentumMode)
	}

	t.Setenv("PRICE_POLL_SECS", "bad")
	t.Setenv("SOURCE_TIMEOUT", "-1s")
	cfg = Load()
	if cfg.PricePollSecs != 300 {
		t.Fatalf("invalid poll secs should fall back to default, got %d", cfg.PricePollSecs)
	}
	if cfg.SourceTimeoutDuration() != 5*time.Second {
		t.Fatalf("invalid timeout should fall back to default, got %v", cfg.SourceTimeoutDuration())
	}
}

func TestLoadRejectsUnknownModes(t *testing.T) {
	clearEnv(t)
	t.Setenv("MCP_TRANSPORT", "grpc")
	t.Setenv("MOMENTUM_MODE", "vibes")

	cfg := Load()
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("expected stdio fallback, got %s", cfg.MCPTransport)
	}
	if cfg.MomentumMode != MomentumPlaceholder {
		t.Fatalf("expected placeholder fallback, got %s", cfg.MomentumMode)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	called := false
	LoadDotEnv(func(...string) error { called = true; return nil })
	if called {
		t.Fatal("loader should not run without a .env file")
	}

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("X=1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	LoadDotEnv(func(...string) error { called = true; return errors.New("boom") })
	if !called {
		t.Fatal("expected loader to run")
	}
}
