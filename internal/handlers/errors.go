package handlers

import (
	"errors"
	"net/http"

	"github.com/epeers/holdings/internal/alphavantage"
	"github.com/epeers/holdings/internal/ingest"
	"github.com/epeers/holdings/internal/models"
	"github.com/epeers/holdings/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// writeError maps domain errors onto HTTP status codes
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInstrument),
		errors.Is(err, ingest.ErrUnknownFormat):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
	case errors.Is(err, models.ErrFundNotFound) && !errors.Is(err, models.ErrUnresolvedFund):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, models.ErrWeightOutOfRange),
		errors.Is(err, models.ErrSummedWeight),
		errors.Is(err, models.ErrStatisticsTotal),
		errors.Is(err, models.ErrUnresolvedFund),
		errors.Is(err, models.ErrFundCycle):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "unprocessable",
			Message: err.Error(),
		})
	case errors.Is(err, alphavantage.ErrThrottled):
		c.Header("Retry-After", "60")
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "upstream_throttled",
			Message: err.Error(),
		})
	default:
		log.Errorf("%s %s: %s", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}
