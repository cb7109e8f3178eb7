package handler

import (
	"errors"
	"net/http"

	"metals-pulse/internal/domain"
	"metals-pulse/internal/service"
	"metals-pulse/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GetAllPrices godoc
// @Summary      Get current prices for all tracked metals
// @Description  Returns the latest quotes for gold, silver, copper and platinum in canonical order
// @Tags         prices
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  PricesResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/prices [get]
func (h *Handler) GetAllPrices(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-all-prices")
	defer span.End()

	snapshots, err := h.prices.GetCurrentPrices(ctx)
	if err != nil {
		logger.Error("failed to fetch prices", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "Failed to fetch prices")
		return
	}

	c.JSON(http.StatusOK, PricesResponse{Success: true, Prices: snapshots, Timestamp: h.timestamp()})
}

// GetPrice godoc
// @Summary      Get the current price for one metal
// @Description  Accepts a metal id (gold) or ticker (XAU)
// @Tags         prices
// @Produce      json
// @Security     ApiKeyAuth
// @Param        metal  path      string  true  "Metal id or ticker (e.g., gold, XAG)"
// @Success      200    {object}  PriceResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /api/prices/{metal} [get]
func (h *Handler) GetPrice(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price")
	defer span.End()

	metal, ok := domain.ParseMetal(c.Param("metal"))
	if !ok {
		h.fail(c, http.StatusBadRequest, "Invalid metal")
		return
	}
	span.SetAttributes(attribute.String("metal", string(metal)))

	snapshot, err := h.prices.GetCurrentPrice(ctx, metal)
	if err != nil {
		logger.Error("failed to fetch price", zap.String("metal", string(metal)), zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "Failed to fetch price")
		return
	}

	c.JSON(http.StatusOK, PriceResponse{Success: true, Price: snapshot, Timestamp: h.timestamp()})
}

// GetHistory godoc
// @Summary      Get stored price history
// @Description  Returns recorded quotes for a metal within the timeframe window
// @Tags         prices
// @Produce      json
// @Security     ApiKeyAuth
// @Param        metal      query     string  false  "Metal (gold, silver, copper, platinum)"  default(gold)
// @Param        timeframe  query     string  false  "Window (24h, 7d, 30d, 1y)"                default(7d)
// @Success      200        {object}  HistoryResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      503        {object}  ErrorResponse
// @Failure      500        {object}  ErrorResponse
// @Router       /api/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	metal := domain.Metal(c.DefaultQuery("metal", string(domain.MetalGold)))
	if _, ok := domain.Metals[metal]; !ok {
		h.fail(c, http.StatusBadRequest, "Invalid metal")
		return
	}
	timeframe := domain.Timeframe(c.DefaultQuery("timeframe", string(domain.Timeframe7D)))
	if _, err := timeframe.Window(); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid timeframe")
		return
	}
	span.SetAttributes(attribute.String("metal", string(metal)), attribute.String("timeframe", string(timeframe)))

	data, err := h.prices.GetHistory(ctx, metal, timeframe)
	if err != nil {
		if errors.Is(err, service.ErrHistoryUnavailable) {
			h.fail(c, http.StatusServiceUnavailable, "Price history unavailable")
			return
		}
		logger.Error("failed to fetch history", zap.String("metal", string(metal)), zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "Failed to fetch historical data")
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{Success: true, Data: data, Timestamp: h.timestamp()})
}
