package handlers

import (
	"net/http"
	"strings"

	"github.com/epeers/holdings/internal/ingest"
	"github.com/epeers/holdings/internal/models"
	"github.com/epeers/holdings/internal/services"
	"github.com/gin-gonic/gin"
)

// FundHandler registers and inspects fund constituents
type FundHandler struct {
	registry *services.RegistryResolver
	resolver services.FundResolver
	enricher models.Enricher
}

// NewFundHandler creates a new FundHandler. Uploaded funds go to registry;
// Get resolves through resolver.
func NewFundHandler(registry *services.RegistryResolver, resolver services.FundResolver, enricher models.Enricher) *FundHandler {
	return &FundHandler{
		registry: registry,
		resolver: resolver,
		enricher: enricher,
	}
}

// Register handles POST /funds/:ticker
// @Summary Upload fund constituents
// @Description Parse a provider holdings export and register it as the constituents of a fund. Registered funds are used when aggregating and flattening.
// @Tags funds
// @Accept multipart/form-data
// @Produce json
// @Param ticker path string true "Fund ticker"
// @Param format formData string true "Export format: ishares, vanguard, spdr, custom, sheet or generic"
// @Param holdings formData file true "Holdings CSV"
// @Success 201 {object} models.RegisterFundResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /funds/{ticker} [post]
func (h *FundHandler) Register(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	format := c.PostForm("format")
	if format == "" {
		format = ingest.FormatGeneric
	}

	fileHeader, err := c.FormFile("holdings")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "holdings file is required",
		})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}
	defer file.Close()

	warnCtx, wc := services.NewWarningContext(c.Request.Context())
	inst, err := ingest.Parse(warnCtx, format, ticker, file, h.enricher)
	if err != nil {
		writeError(c, err)
		return
	}

	h.registry.Register(ticker, inst)

	c.JSON(http.StatusCreated, models.RegisterFundResponse{
		Ticker:      ticker,
		Holdings:    inst.Len(),
		TotalWeight: inst.TotalWeight(),
		Warnings:    wc.GetWarnings(),
	})
}

// Get handles GET /funds/:ticker
// @Summary Get fund constituents
// @Description Resolve the constituents of a fund from uploaded funds, the fund cache or AlphaVantage
// @Tags funds
// @Produce json
// @Param ticker path string true "Fund ticker"
// @Success 200 {object} models.FundHoldingsResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /funds/{ticker} [get]
func (h *FundHandler) Get(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))

	warnCtx, wc := services.NewWarningContext(c.Request.Context())
	fund := models.NewHolding(ticker, models.WithTicker(ticker), models.WithType(models.HoldingTypeETF))
	inst, err := h.resolver.Resolve(warnCtx, fund)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.FundHoldingsResponse{
		Ticker:   ticker,
		Holdings: models.Rows(inst),
		Warnings: wc.GetWarnings(),
	})
}
