package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"metals-pulse/internal/advisor"
	"metals-pulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultBriefLimit = 10
	maxBriefLimit     = 50
)

// GetSentiment godoc
// @Summary      Get the metals sentiment index
// @Description  Runs one aggregation over news, social and momentum and returns the index with up to 8 scored headlines
// @Tags         sentiment
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  SentimentResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /api/sentiment [get]
func (h *Handler) GetSentiment(c *gin.Context) {
	if h.sentiment == nil {
		h.fail(c, http.StatusServiceUnavailable, "sentiment service unavailable")
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sentiment")
	defer span.End()

	res := h.sentiment.GetSentiment(ctx)
	span.SetAttributes(
		attribute.Int("sentiment.score", res.Index.Score),
		attribute.String("sentiment.news_stage", res.NewsStage),
	)

	news := res.Items
	if news == nil {
		news = []domain.ScoredItem{}
	}
	c.JSON(http.StatusOK, SentimentResponse{
		Success:   true,
		Sentiment: res.Index,
		News:      news,
		Timestamp: h.timestamp(),
	})
}

// CreateBrief godoc
// @Summary      Generate a market brief
// @Description  Asks the configured LLM for a short brief from the latest index, headlines and quotes
// @Tags         sentiment
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request  body      BriefRequest  false  "Optional metals to focus on"
// @Success      200      {object}  BriefResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /api/sentiment/brief [post]
func (h *Handler) CreateBrief(c *gin.Context) {
	if h.briefs == nil || !h.briefs.Enabled() {
		h.fail(c, http.StatusServiceUnavailable, "market brief unavailable")
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.create-brief")
	defer span.End()

	var req BriefRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			h.fail(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	brief, err := h.briefs.Generate(ctx, req.Focus)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, advisor.ErrBriefUnavailable) {
			h.fail(c, http.StatusServiceUnavailable, "market brief unavailable")
			return
		}
		h.fail(c, http.StatusInternalServerError, "failed to generate market brief")
		return
	}

	c.JSON(http.StatusOK, BriefResponse{Success: true, Brief: brief, Timestamp: h.timestamp()})
}

// ListBriefs godoc
// @Summary      List recent market briefs
// @Description  Returns stored briefs, newest first
// @Tags         sentiment
// @Produce      json
// @Security     ApiKeyAuth
// @Param        limit  query     int  false  "Number of briefs (default 10, max 50)"  default(10)
// @Success      200    {object}  BriefListResponse
// @Failure      503    {object}  ErrorResponse
// @Router       /api/sentiment/briefs [get]
func (h *Handler) ListBriefs(c *gin.Context) {
	if h.briefs == nil {
		h.fail(c, http.StatusServiceUnavailable, "market brief unavailable")
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-briefs")
	defer span.End()

	limit := defaultBriefLimit
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxBriefLimit {
			limit = n
		}
	}

	briefs, err := h.briefs.Recent(ctx, limit)
	if err != nil {
		if errors.Is(err, advisor.ErrBriefUnavailable) {
			h.fail(c, http.StatusServiceUnavailable, "market brief unavailable")
			return
		}
		h.fail(c, http.StatusInternalServerError, "failed to list market briefs")
		return
	}

	c.JSON(http.StatusOK, BriefListResponse{Success: true, Briefs: briefs, Timestamp: h.timestamp()})
}
