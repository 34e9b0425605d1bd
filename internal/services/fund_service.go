package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epeers/holdings/internal/alphavantage"
	"github.com/epeers/holdings/internal/models"
	"github.com/epeers/holdings/internal/repository"
	log "github.com/sirupsen/logrus"
)

// DefaultFundRefreshInterval is how long persisted fund constituents are served
const DefaultFundRefreshInterval = 30 * 24 * time.Hour

// FundStore persists fund constituents between runs
type FundStore interface {
	GetPullRange(ctx context.Context, fund string) (*repository.FundPullRange, error)
	GetHoldings(ctx context.Context, fund string) ([]models.WeightedHolding, error)
	UpsertHoldings(ctx context.Context, fund string, holdings []models.WeightedHolding, nextUpdate time.Time) error
}

// FundFetcher fetches raw fund constituents from a remote source
type FundFetcher interface {
	GetETFHoldings(ctx context.Context, symbol string) ([]alphavantage.ParsedETFHolding, error)
}

// FundService resolves funds by ticker: persisted constituents first, then
// the remote source. Fresh fetches are cleaned up and persisted.
type FundService struct {
	store           FundStore
	fetcher         FundFetcher
	enricher        models.Enricher
	refreshInterval time.Duration
	now             func() time.Time
}

// NewFundService creates a new FundService. store and fetcher may be nil.
func NewFundService(store FundStore, fetcher FundFetcher, enricher models.Enricher) *FundService {
	return &FundService{
		store:           store,
		fetcher:         fetcher,
		enricher:        enricher,
		refreshInterval: DefaultFundRefreshInterval,
		now:             time.Now,
	}
}

// Resolve implements FundResolver
func (s *FundService) Resolve(ctx context.Context, fund models.Holding) (models.Instrument, error) {
	ticker := fund.TickerKey()
	if ticker == "" {
		return nil, fmt.Errorf("%s: no ticker: %w", fund, models.ErrFundNotFound)
	}

	holdings, err := s.GetFundHoldings(ctx, ticker)
	if err != nil {
		return nil, err
	}

	inst := models.NewMultiAsset(ticker, s.enricher)
	for _, wh := range holdings {
		if err := inst.AddWeight(wh.Holding, wh.Weight); err != nil {
			return nil, err
		}
	}
	inst.SortByWeightDescending()
	if err := inst.AssertSummedWeight(); err != nil {
		return nil, err
	}
	return inst, nil
}

// GetFundHoldings returns the constituents of a fund, served from the store
// while fresh and fetched from the remote source otherwise.
func (s *FundService) GetFundHoldings(ctx context.Context, ticker string) ([]models.WeightedHolding, error) {
	defer TrackTime("GetFundHoldings", time.Now())
	ticker = strings.ToUpper(ticker)

	if s.store != nil {
		pullRange, err := s.store.GetPullRange(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if pullRange != nil && s.now().Before(pullRange.NextUpdate) {
			holdings, err := s.store.GetHoldings(ctx, ticker)
			if err != nil {
				return nil, err
			}
			if len(holdings) > 0 {
				log.Debugf("GetFundHoldings: %s served from store", ticker)
				return holdings, nil
			}
		}
	}

	if s.fetcher == nil {
		return nil, fmt.Errorf("%s: %w", ticker, models.ErrFundNotFound)
	}

	raw, err := s.fetcher.GetETFHoldings(ctx, ticker)
	if errors.Is(err, alphavantage.ErrNoData) {
		return nil, fmt.Errorf("%s: %w", ticker, models.ErrFundNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fund %s: %w", ticker, err)
	}

	holdings := s.clean(ctx, ticker, raw)

	if s.store != nil {
		if err := s.store.UpsertHoldings(ctx, ticker, holdings, s.now().Add(s.refreshInterval)); err != nil {
			log.Errorf("Issue in saving fund holdings for %s: %s", ticker, err)
		}
	}
	return holdings, nil
}

// clean runs the constituent resolver chain over raw fund data
func (s *FundService) clean(ctx context.Context, ticker string, raw []alphavantage.ParsedETFHolding) []models.WeightedHolding {
	CheckSourceSum(ctx, raw, ticker)

	resolved, unresolved := ResolveSwapHoldings(raw)
	cash, unresolved := ResolveSpecialSymbols(unresolved)
	resolved = append(resolved, cash...)

	for _, h := range unresolved {
		Warn(ctx, models.WarnUnresolvedFundRow, "fund %s: dropped constituent %q (weight %.4f)", ticker, h.Name, h.Percentage)
	}

	resolved = ResolveSymbolVariants(resolved, s.enricher)
	resolved = NormalizeHoldings(ctx, resolved, ticker)
	return ToWeightedHoldings(resolved)
}
