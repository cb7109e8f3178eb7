package main

import (
	"context"
	"testing"
	"time"

	"metals-pulse/internal/config"
	"metals-pulse/internal/mcpserver"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainRunsConfiguredTransport(t *testing.T) {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitLogger := initLoggerFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origRun := runServerFunc
	t.Cleanup(func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initLoggerFunc = origInitLogger
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		runServerFunc = origRun
	})

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			SourceTimeout: config.PositiveDuration(time.Second),
			MomentumMode:  config.MomentumPlaceholder,
			MCPTransport:  "http",
			MCPHTTPBind:   "127.0.0.1",
			MCPHTTPPort:   8090,
		}
	}
	initLoggerFunc = func(string, string) error { return nil }
	initPostgresFunc = func(context.Context, string) {}
	initRedisFunc = func(context.Context, string) {}
	initTracerFunc = func(ctx context.Context, component string) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}

	var gotOpts mcpserver.Options
	var gotServer *mcp.Server
	runServerFunc = func(ctx context.Context, server *mcp.Server, opts mcpserver.Options) error {
		gotServer = server
		gotOpts = opts
		return nil
	}

	main()

	if gotServer == nil {
		t.Fatal("expected server to be run")
	}
	if gotOpts.Transport != "http" || gotOpts.Bind != "127.0.0.1" || gotOpts.Port != 8090 {
		t.Fatalf("unexpected options: %+v", gotOpts)
	}
}
