package market

import (
	"context"
	"errors"
	"sync"

	"github.com/epeers/holdings/internal/alphavantage"
	"github.com/epeers/holdings/internal/models"
)

// AlphaVantageSource lists exchange tickers with LISTING_STATUS and looks up
// each ticker's reference record with OVERVIEW. The listing is downloaded
// once and shared by every exchange segment.
type AlphaVantageSource struct {
	client *alphavantage.Client

	mu       sync.Mutex
	listings []alphavantage.ListingStatusEntry
}

// NewAlphaVantageSource creates a TickerSource backed by AlphaVantage
func NewAlphaVantageSource(client *alphavantage.Client) *AlphaVantageSource {
	return &AlphaVantageSource{client: client}
}

func (s *AlphaVantageSource) Tickers(ctx context.Context, segment string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listings == nil {
		listings, err := s.client.GetListingStatus(ctx, "active")
		if err != nil {
			return nil, err
		}
		s.listings = listings
	}

	entries := alphavantage.FilterByExchange(s.listings, segment)
	tickers := make([]string, 0, len(entries))
	for _, e := range entries {
		tickers = append(tickers, e.Symbol)
	}
	return tickers, nil
}

func (s *AlphaVantageSource) Lookup(ctx context.Context, ticker string) (*models.Holding, error) {
	ov, err := s.client.GetCompanyOverview(ctx, ticker)
	if errors.Is(err, alphavantage.ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	h := models.NewHolding(ov.Name,
		models.WithTicker(ticker),
		models.WithCountry(ov.Country),
		models.WithSector(ov.Sector),
		models.WithIndustry(ov.Industry),
		models.WithCurrency(ov.Currency),
		models.WithExchange(ov.Exchange),
		models.WithType(models.ParseHoldingType(ov.AssetType)),
	)
	if h.NormalizedName == "" {
		return nil, nil
	}
	return &h, nil
}
