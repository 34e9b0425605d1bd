package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/epeers/holdings/internal/market"
	"github.com/epeers/holdings/internal/models"
	"github.com/gin-gonic/gin"
)

// MarketHandler serves reference market index lookups
type MarketHandler struct {
	hub *market.Hub
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(hub *market.Hub) *MarketHandler {
	return &MarketHandler{
		hub: hub,
	}
}

// Lookup handles GET /markets/lookup
// @Summary Look up a holding in the reference market index
// @Description Find the authoritative record of a holding by name and/or ticker. Segments are searched in priority order and the first match wins.
// @Tags markets
// @Produce json
// @Param name query string false "Holding name"
// @Param ticker query string false "Ticker symbol"
// @Success 200 {object} models.LookupResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /markets/lookup [get]
func (h *MarketHandler) Lookup(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	ticker := strings.TrimSpace(c.Query("ticker"))
	if name == "" && ticker == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "name or ticker is required",
		})
		return
	}

	ref, ok := h.hub.Lookup(models.NewHolding(name, models.WithTicker(ticker)))
	if !ok {
		c.JSON(http.StatusOK, models.LookupResponse{Found: false})
		return
	}
	c.JSON(http.StatusOK, models.LookupResponse{Found: true, Holding: &ref})
}

// Segments handles GET /markets/segments
// @Summary List reference market segments
// @Description Segments in lookup order. Tickers skipped during the last refresh are reported as W2001 warnings.
// @Tags markets
// @Produce json
// @Success 200 {object} models.SegmentsResponse
// @Router /markets/segments [get]
func (h *MarketHandler) Segments(c *gin.Context) {
	resp := models.SegmentsResponse{Segments: h.hub.Segments()}
	missed := h.hub.Missed()
	for _, name := range resp.Segments {
		if n := missed[name]; n > 0 {
			resp.Warnings = append(resp.Warnings, models.Warning{
				Code:    models.WarnMarketTickerMissed,
				Message: fmt.Sprintf("market %s: %d tickers could not be fetched", name, n),
			})
		}
	}
	c.JSON(http.StatusOK, resp)
}
