package handlers

import (
	"net/http"

	"github.com/epeers/holdings/internal/export"
	"github.com/epeers/holdings/internal/models"
	"github.com/epeers/holdings/internal/services"
	"github.com/gin-gonic/gin"
)

// AggregateHandler handles portfolio aggregation
type AggregateHandler struct {
	portfolioSvc *services.PortfolioService
}

// NewAggregateHandler creates a new AggregateHandler
func NewAggregateHandler(portfolioSvc *services.PortfolioService) *AggregateHandler {
	return &AggregateHandler{
		portfolioSvc: portfolioSvc,
	}
}

// Aggregate handles POST /portfolios/aggregate
// @Summary Aggregate instruments into one portfolio
// @Description Combine weighted instruments (inline holdings, single assets or fund tickers) into a single weighted portfolio with country and sector breakdowns. With flatten=true nested funds are expanded to their leaf holdings.
// @Tags portfolios
// @Accept json
// @Produce json
// @Produce text/csv
// @Param request body models.AggregateRequest true "Instruments and weights"
// @Param format query string false "Response format: json (default) or csv"
// @Success 200 {object} models.AggregateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /portfolios/aggregate [post]
func (h *AggregateHandler) Aggregate(c *gin.Context) {
	var req models.AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "csv" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "format must be 'json' or 'csv'",
		})
		return
	}

	warnCtx, wc := services.NewWarningContext(c.Request.Context())
	aggregated, err := h.portfolioSvc.Aggregate(warnCtx, req)
	if err != nil {
		writeError(c, err)
		return
	}

	if format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="`+aggregated.Name()+`.csv"`)
		c.Status(http.StatusOK)
		if err := export.WriteCSV(c.Writer, aggregated); err != nil {
			c.Error(err)
		}
		return
	}

	resp, err := h.portfolioSvc.Report(aggregated)
	if err != nil {
		writeError(c, err)
		return
	}
	resp.Warnings = wc.GetWarnings()

	c.JSON(http.StatusOK, resp)
}
