package handler

import (
	"context"
	"time"

	"metals-pulse/internal/domain"
	"metals-pulse/internal/sentiment"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// isoMillis matches the millisecond ISO-8601 timestamps dashboard clients expect.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type SentimentProvider interface {
	GetSentiment(ctx context.Context) sentiment.Result
}

type PriceQuerier interface {
	GetCurrentPrices(ctx context.Context) ([]*domain.PriceSnapshot, error)
	GetCurrentPrice(ctx context.Context, metal domain.Metal) (*domain.PriceSnapshot, error)
	GetHistory(ctx context.Context, metal domain.Metal, timeframe domain.Timeframe) (*domain.HistoricalData, error)
}

type BriefProvider interface {
	Enabled() bool
	Generate(ctx context.Context, focus string) (*domain.MarketBrief, error)
	Recent(ctx context.Context, limit int) ([]domain.MarketBrief, error)
}

type Handler struct {
	tracer    trace.Tracer
	sentiment SentimentProvider
	prices    PriceQuerier
	briefs    BriefProvider
	now       func() time.Time
}

func New(tracer trace.Tracer, sentiment SentimentProvider, prices PriceQuerier) *Handler {
	return &Handler{
		tracer:    tracer,
		sentiment: sentiment,
		prices:    prices,
		now:       time.Now,
	}
}

// SetBriefService enables the brief endpoints.
func (h *Handler) SetBriefService(briefs BriefProvider) {
	h.briefs = briefs
}

// RegisterRoutes mounts /health publicly and everything under /api behind
// the optional API key.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/sentiment", h.GetSentiment)
	api.POST("/sentiment/brief", h.CreateBrief)
	api.GET("/sentiment/briefs", h.ListBriefs)
	api.GET("/prices", h.GetAllPrices)
	api.GET("/prices/:metal", h.GetPrice)
	api.GET("/history", h.GetHistory)
}

func (h *Handler) timestamp() string {
	return h.now().UTC().Format(isoMillis)
}

func (h *Handler) fail(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Success: false, Error: msg})
}
