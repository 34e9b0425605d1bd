package services

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/holdings/internal/models"
	log "github.com/sirupsen/logrus"
)

// MaxFlattenDepth bounds fund-of-fund nesting during flattening
const MaxFlattenDepth = 16

// Aggregate combines weighted instruments into one. Each inner weight is
// scaled by its instrument's weight. Input order matters: attributes of the
// holdings seen first win when equal holdings are merged.
func Aggregate(name string, instruments []models.WeightedInstrument, enricher models.Enricher) (*models.MultiAsset, error) {
	defer TrackTime("Aggregate", time.Now())

	var sum float64
	for _, wi := range instruments {
		sum += wi.Weight
	}
	if !models.WithinTolerance(sum) {
		return nil, fmt.Errorf("%s: instrument weights sum to %.4f: %w", name, sum, models.ErrSummedWeight)
	}

	aggregated := models.NewMultiAsset(name, enricher)
	for _, wi := range instruments {
		for _, wh := range wi.Instrument.Holdings() {
			if err := aggregated.AddWeight(wh.Holding, wi.Weight*wh.Weight); err != nil {
				return nil, err
			}
		}
	}

	aggregated.SortByWeightDescending()
	if err := aggregated.AssertSummedWeight(); err != nil {
		return nil, err
	}

	log.Debugf("Aggregate: %s combined %d instruments into %d holdings", name, len(instruments), aggregated.Len())
	return aggregated, nil
}

// Flatten replaces every fund holding with the weighted union of the fund's
// own leaf holdings, recursively. A fund the resolver cannot expand stops
// the whole flattening: dropping it would misstate the portfolio.
func Flatten(ctx context.Context, inst models.Instrument, resolver FundResolver, enricher models.Enricher) (*models.MultiAsset, error) {
	defer TrackTime("Flatten", time.Now())

	f := &flattener{
		resolver: resolver,
		enricher: enricher,
		visiting: make(map[string]bool),
	}
	return f.flatten(ctx, inst, 0)
}

type flattener struct {
	resolver FundResolver
	enricher models.Enricher
	// visiting holds the fund identities on the current expansion path
	visiting map[string]bool
}

func (f *flattener) flatten(ctx context.Context, inst models.Instrument, depth int) (*models.MultiAsset, error) {
	if depth > MaxFlattenDepth {
		return nil, fmt.Errorf("%s: nesting deeper than %d: %w", inst.Name(), MaxFlattenDepth, models.ErrFundCycle)
	}

	leaves := models.NewMultiAsset(inst.Name(), f.enricher)
	for _, wh := range inst.Holdings() {
		if wh.Holding.IsLeaf() {
			if err := leaves.AddWeight(wh.Holding, wh.Weight); err != nil {
				return nil, err
			}
			continue
		}

		reduced, err := f.reduce(ctx, wh.Holding, depth)
		if err != nil {
			return nil, err
		}
		for _, inner := range reduced.Holdings() {
			if err := leaves.AddWeight(inner.Holding, wh.Weight*inner.Weight); err != nil {
				return nil, err
			}
		}
	}

	leaves.SortByWeightDescending()
	if err := leaves.AssertSummedWeight(); err != nil {
		return nil, err
	}
	return leaves, nil
}

// reduce resolves one fund holding and flattens its constituents
func (f *flattener) reduce(ctx context.Context, fund models.Holding, depth int) (*models.MultiAsset, error) {
	id := fundIdentity(fund)
	if f.visiting[id] {
		return nil, fmt.Errorf("%s: %w", fund, models.ErrFundCycle)
	}
	f.visiting[id] = true
	defer delete(f.visiting, id)

	if f.resolver == nil {
		return nil, fmt.Errorf("%s: no fund resolver: %w", fund, models.ErrUnresolvedFund)
	}
	constituents, err := f.resolver.Resolve(ctx, fund)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", fund, models.ErrUnresolvedFund, err)
	}
	if constituents == nil {
		return nil, fmt.Errorf("%s: %w", fund, models.ErrUnresolvedFund)
	}

	log.Debugf("Flatten: expanding %s (%d constituents)", fund, len(constituents.Holdings()))
	return f.flatten(ctx, constituents, depth+1)
}

// fundIdentity keys a fund for cycle detection
func fundIdentity(h models.Holding) string {
	if t := h.TickerKey(); t != "" {
		return "ticker:" + t
	}
	return "name:" + h.NormalizedName
}
