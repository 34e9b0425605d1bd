package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epeers/holdings/internal/models"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidInstrument = errors.New("invalid instrument")

// DefaultPortfolioName names aggregates submitted without a name
const DefaultPortfolioName = "Portfolio"

// PortfolioService builds aggregate portfolios from API requests
type PortfolioService struct {
	enricher models.Enricher
	resolver FundResolver
}

// NewPortfolioService creates a new PortfolioService. resolver may be nil,
// in which case fund instruments and flattening fail with ErrUnresolvedFund.
func NewPortfolioService(enricher models.Enricher, resolver FundResolver) *PortfolioService {
	return &PortfolioService{
		enricher: enricher,
		resolver: resolver,
	}
}

// BuildInstrument validates one instrument request and builds it.
// Exactly one of Holdings, Single or Fund must be set.
func (s *PortfolioService) BuildInstrument(ctx context.Context, req models.InstrumentRequest) (models.Instrument, error) {
	set := 0
	if len(req.Holdings) > 0 {
		set++
	}
	if req.Single {
		set++
	}
	if req.Fund != "" {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: %q must specify exactly one of holdings, single or fund", ErrInvalidInstrument, req.Name)
	}

	switch {
	case req.Single:
		if strings.TrimSpace(req.Name) == "" {
			return nil, fmt.Errorf("%w: single asset needs a name", ErrInvalidInstrument)
		}
		return models.NewSingleAsset(req.Name, models.WithType(models.ParseHoldingType(req.Type))), nil

	case req.Fund != "":
		if s.resolver == nil {
			return nil, fmt.Errorf("%s: no fund resolver: %w", req.Fund, models.ErrUnresolvedFund)
		}
		fund := models.NewHolding(req.Name, models.WithTicker(req.Fund), models.WithType(models.HoldingTypeETF))
		inst, err := s.resolver.Resolve(ctx, fund)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", req.Fund, models.ErrUnresolvedFund, err)
		}
		return inst, nil
	}

	name := req.Name
	if name == "" {
		name = "Instrument"
	}
	inst := models.NewMultiAsset(name, s.enricher)
	for _, hr := range req.Holdings {
		h := models.NewHolding(hr.Name,
			models.WithTicker(hr.Ticker),
			models.WithCountry(hr.Country),
			models.WithSector(hr.Sector),
			models.WithIndustry(hr.Industry),
			models.WithCurrency(hr.Currency),
			models.WithExchange(hr.Exchange),
			models.WithType(models.ParseHoldingType(hr.Type)),
		)
		if err := inst.AddWeight(h, hr.Weight); err != nil {
			return nil, err
		}
	}
	inst.SortByWeightDescending()
	if err := inst.AssertSummedWeight(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Aggregate builds every requested instrument, combines them and, when
// asked, flattens nested funds into their leaf holdings
func (s *PortfolioService) Aggregate(ctx context.Context, req models.AggregateRequest) (*models.MultiAsset, error) {
	defer TrackTime("PortfolioService.Aggregate", time.Now())

	name := req.Name
	if name == "" {
		name = DefaultPortfolioName
	}

	weighted := make([]models.WeightedInstrument, 0, len(req.Instruments))
	for i, ir := range req.Instruments {
		inst, err := s.BuildInstrument(ctx, ir)
		if err != nil {
			return nil, fmt.Errorf("instrument[%d]: %w", i, err)
		}
		weighted = append(weighted, models.WeightedInstrument{Weight: ir.Weight, Instrument: inst})
	}

	aggregated, err := Aggregate(name, weighted, s.enricher)
	if err != nil {
		return nil, err
	}
	if !req.Flatten {
		return aggregated, nil
	}
	return Flatten(ctx, aggregated, s.resolver, s.enricher)
}

// Report summarizes an aggregate as export rows plus country and sector
// breakdowns
func (s *PortfolioService) Report(inst *models.MultiAsset) (*models.AggregateResponse, error) {
	countries, err := StatisticsBy(inst, "country")
	if err != nil {
		return nil, err
	}
	sectors, err := StatisticsBy(inst, "sector")
	if err != nil {
		return nil, err
	}
	if log.IsLevelEnabled(log.DebugLevel) {
		LogStatistics(inst.Name(), "country", countries)
		LogStatistics(inst.Name(), "sector", sectors)
	}

	return &models.AggregateResponse{
		Name:        inst.Name(),
		TotalWeight: inst.TotalWeight(),
		Holdings:    models.Rows(inst),
		Countries:   countries,
		Sectors:     sectors,
	}, nil
}
