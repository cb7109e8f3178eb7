package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"metals-pulse/internal/domain"
	"metals-pulse/internal/sentiment"
	"metals-pulse/pkg/logger"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const (
	serverName = "metals-pulse"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type SentimentProvider interface {
	GetSentiment(ctx context.Context) sentiment.Result
}

type PriceQuerier interface {
	GetCurrentPrices(ctx context.Context) ([]*domain.PriceSnapshot, error)
	GetCurrentPrice(ctx context.Context, metal domain.Metal) (*domain.PriceSnapshot, error)
}

type Options struct {
	Transport string
	Bind      string
	Port      int
}

// NewServer registers the metals tools on a fresh MCP server.
func NewServer(sent SentimentProvider, prices PriceQuerier, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	t := &tools{sentiment: sent, prices: prices}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_sentiment",
		Description: "Compute the precious metals sentiment index (-100..100) from news, social and momentum, with the top scored headlines.",
	}, t.getSentiment)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_prices",
		Description: "Current USD quotes for gold, silver, copper and platinum, or one metal when 'metal' is given.",
	}, t.getPrices)

	return server
}

// Run serves until ctx is cancelled, over stdio or streamable HTTP.
func Run(ctx context.Context, server *mcp.Server, opts Options) error {
	switch opts.Transport {
	case "", TransportStdio:
		logger.Info("mcp server listening on stdio")
		return server.Run(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return runHTTP(ctx, server, opts)
	default:
		return fmt.Errorf("unsupported MCP transport %q", opts.Transport)
	}
}

func runHTTP(ctx context.Context, server *mcp.Server, opts Options) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	srv := &http.Server{
		Addr:              net.JoinHostPort(opts.Bind, strconv.Itoa(opts.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mcp server listening on http", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
