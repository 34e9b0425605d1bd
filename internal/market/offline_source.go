package market

import (
	"context"
	"errors"

	"github.com/epeers/holdings/internal/models"
)

// ErrSourceUnavailable is returned by OfflineSource
var ErrSourceUnavailable = errors.New("no reference data source configured")

// OfflineSource is the TickerSource of a segment that can only be served
// from its cache. A fresh cache loads as usual; a stale or missing one fails
// the refresh with ErrSourceUnavailable.
type OfflineSource struct{}

func (OfflineSource) Tickers(ctx context.Context, segment string) ([]string, error) {
	return nil, ErrSourceUnavailable
}

func (OfflineSource) Lookup(ctx context.Context, ticker string) (*models.Holding, error) {
	return nil, ErrSourceUnavailable
}
