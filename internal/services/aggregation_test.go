package services_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/epeers/holdings/internal/models"
	"github.com/epeers/holdings/internal/services"
)

func assertClose(t *testing.T, name string, got, want, epsilon float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s: got %.6f, want %.6f (epsilon %.6f)", name, got, want, epsilon)
	}
}

type weighted struct {
	holding models.Holding
	weight  float64
}

func newMultiAsset(t *testing.T, name string, holdings ...weighted) *models.MultiAsset {
	t.Helper()
	m := models.NewMultiAsset(name, nil)
	for _, wh := range holdings {
		if err := m.AddWeight(wh.holding, wh.weight); err != nil {
			t.Fatalf("AddWeight(%s): %v", wh.holding, err)
		}
	}
	return m
}

func stock(name, ticker, country, sector string) models.Holding {
	return models.NewHolding(name,
		models.WithTicker(ticker),
		models.WithCountry(country),
		models.WithSector(sector),
		models.WithType(models.HoldingTypeStock),
	)
}

func fund(name, ticker string) models.Holding {
	return models.NewHolding(name, models.WithTicker(ticker), models.WithType(models.HoldingTypeETF))
}

func TestAggregate_OverlappingHolding(t *testing.T) {
	first := newMultiAsset(t, "first",
		weighted{stock("Apple Inc", "AAPL", "US", "Technology"), 0.5},
		weighted{stock("Microsoft Corp", "MSFT", "US", "Technology"), 0.5},
	)
	second := newMultiAsset(t, "second",
		weighted{stock("Apple Computer", "AAPL", "US", "Technology"), 0.3},
		weighted{stock("Nestle SA", "NESN", "Switzerland", "Consumer Staples"), 0.7},
	)

	agg, err := services.Aggregate("combined", []models.WeightedInstrument{
		{Weight: 0.4, Instrument: first},
		{Weight: 0.6, Instrument: second},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertClose(t, "AAPL", agg.Weight(models.NewHolding("", models.WithTicker("AAPL"))), 0.38, 1e-9)
	assertClose(t, "MSFT", agg.Weight(models.NewHolding("", models.WithTicker("MSFT"))), 0.2, 1e-9)
	assertClose(t, "NESN", agg.Weight(models.NewHolding("", models.WithTicker("NESN"))), 0.42, 1e-9)
	assertClose(t, "total", agg.TotalWeight(), 1.0, 1e-9)

	if agg.Len() != 3 {
		t.Errorf("expected 3 holdings, got %d", agg.Len())
	}

	// sorted by weight, first-seen name kept
	holdings := agg.Holdings()
	if holdings[0].Holding.Ticker != "NESN" || holdings[1].Holding.Name != "Apple Inc" {
		t.Errorf("unexpected order: %v, %v", holdings[0].Holding, holdings[1].Holding)
	}
}

func TestAggregate_WeightConservation(t *testing.T) {
	a := newMultiAsset(t, "a",
		weighted{stock("Apple Inc", "AAPL", "US", "Technology"), 0.333},
		weighted{stock("Tesla Inc", "TSLA", "US", "Consumer Discretionary"), 0.333},
		weighted{stock("Nvidia Corp", "NVDA", "US", "Technology"), 0.334},
	)
	b := newMultiAsset(t, "b",
		weighted{stock("Toyota Motor Corp", "TM", "Japan", "Consumer Discretionary"), 0.6},
		weighted{stock("Tesla Inc", "TSLA", "US", "Consumer Discretionary"), 0.4},
	)
	gold := models.NewSingleAsset("Gold", models.WithType(models.HoldingTypeCommodity))

	agg, err := services.Aggregate("mix", []models.WeightedInstrument{
		{Weight: 0.5, Instrument: a},
		{Weight: 0.3, Instrument: b},
		{Weight: 0.2, Instrument: gold},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !models.WithinTolerance(agg.TotalWeight()) {
		t.Errorf("aggregated weight %.6f outside tolerance", agg.TotalWeight())
	}
	assertClose(t, "Gold", agg.WeightByName("Gold"), 0.2, 1e-9)
	assertClose(t, "TSLA", agg.WeightByName("Tesla Inc"), 0.5*0.333+0.3*0.4, 1e-9)
}

func TestAggregate_InputWeightsMustSumToOne(t *testing.T) {
	gold := models.NewSingleAsset("Gold")
	silver := models.NewSingleAsset("Silver")

	_, err := services.Aggregate("bad", []models.WeightedInstrument{
		{Weight: 0.5, Instrument: gold},
		{Weight: 0.3, Instrument: silver},
	}, nil)
	if !errors.Is(err, models.ErrSummedWeight) {
		t.Fatalf("expected ErrSummedWeight, got %v", err)
	}
}

func TestAggregate_EnrichesFromIndex(t *testing.T) {
	index := mapEnricher{stock("Apple Inc", "AAPL", "US", "Technology")}
	inst := models.NewSingleAsset("APPLE INC.")

	agg, err := services.Aggregate("enriched", []models.WeightedInstrument{{Weight: 1, Instrument: inst}}, index)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := agg.Holdings()[0].Holding
	if got.Ticker != "AAPL" || got.Sector != "Technology" {
		t.Errorf("expected enriched holding, got %+v", got)
	}
}

func TestFlatten_LeafFixedPoint(t *testing.T) {
	inst := newMultiAsset(t, "leaves",
		weighted{stock("Apple Inc", "AAPL", "US", "Technology"), 0.6},
		weighted{stock("Nestle SA", "NESN", "Switzerland", "Consumer Staples"), 0.4},
	)

	flat, err := services.Flatten(context.Background(), inst, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := inst.Holdings()
	got := flat.Holdings()
	if len(got) != len(want) {
		t.Fatalf("expected %d holdings, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Holding != want[i].Holding {
			t.Errorf("holding %d: got %+v, want %+v", i, got[i].Holding, want[i].Holding)
		}
		assertClose(t, want[i].Holding.Ticker, got[i].Weight, want[i].Weight, 1e-12)
	}
}

func TestFlatten_ExpandsNestedFunds(t *testing.T) {
	registry := services.NewRegistryResolver()
	registry.Register("VTI", newMultiAsset(t, "VTI",
		weighted{stock("Apple Inc", "AAPL", "US", "Technology"), 0.5},
		weighted{stock("Microsoft Corp", "MSFT", "US", "Technology"), 0.5},
	))
	registry.Register("WORLD", newMultiAsset(t, "WORLD",
		weighted{fund("Vanguard Total Stock Market", "VTI"), 0.5},
		weighted{stock("Nestle SA", "NESN", "Switzerland", "Consumer Staples"), 0.5},
	))

	portfolio := newMultiAsset(t, "portfolio",
		weighted{fund("World Fund", "WORLD"), 0.8},
		weighted{stock("Apple Inc", "AAPL", "US", "Technology"), 0.2},
	)

	flat, err := services.Flatten(context.Background(), portfolio, registry, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, wh := range flat.Holdings() {
		if !wh.Holding.IsLeaf() {
			t.Errorf("fund %s left after flattening", wh.Holding)
		}
	}
	assertClose(t, "AAPL", flat.Weight(models.NewHolding("", models.WithTicker("AAPL"))), 0.8*0.5*0.5+0.2, 1e-9)
	assertClose(t, "MSFT", flat.Weight(models.NewHolding("", models.WithTicker("MSFT"))), 0.2, 1e-9)
	assertClose(t, "NESN", flat.Weight(models.NewHolding("", models.WithTicker("NESN"))), 0.4, 1e-9)
	assertClose(t, "total", flat.TotalWeight(), 1.0, 1e-9)
}

func TestFlatten_UnresolvedFundFails(t *testing.T) {
	portfolio := newMultiAsset(t, "portfolio",
		weighted{fund("Mystery Fund", "MYST"), 0.5},
		weighted{stock("Apple Inc", "AAPL", "US", "Technology"), 0.5},
	)

	_, err := services.Flatten(context.Background(), portfolio, services.NewRegistryResolver(), nil)
	if !errors.Is(err, models.ErrUnresolvedFund) {
		t.Fatalf("expected ErrUnresolvedFund, got %v", err)
	}
	if !errors.Is(err, models.ErrFundNotFound) {
		t.Errorf("expected the resolver's not-found cause to be kept, got %v", err)
	}

	_, err = services.Flatten(context.Background(), portfolio, nil, nil)
	if !errors.Is(err, models.ErrUnresolvedFund) {
		t.Fatalf("expected ErrUnresolvedFund without resolver, got %v", err)
	}
}

func TestFlatten_DetectsCycles(t *testing.T) {
	registry := services.NewRegistryResolver()
	registry.Register("AAA", newMultiAsset(t, "AAA",
		weighted{fund("Fund B", "BBB"), 1},
	))
	registry.Register("BBB", newMultiAsset(t, "BBB",
		weighted{fund("Fund A", "AAA"), 0.5},
		weighted{stock("Apple Inc", "AAPL", "US", "Technology"), 0.5},
	))

	portfolio := newMultiAsset(t, "portfolio", weighted{fund("Fund A", "AAA"), 1})
	_, err := services.Flatten(context.Background(), portfolio, registry, nil)
	if !errors.Is(err, models.ErrFundCycle) {
		t.Fatalf("expected ErrFundCycle, got %v", err)
	}
}

func TestFlatten_SameFundTwiceIsNotACycle(t *testing.T) {
	registry := services.NewRegistryResolver()
	registry.Register("VTI", newMultiAsset(t, "VTI",
		weighted{stock("Apple Inc", "AAPL", "US", "Technology"), 1},
	))
	registry.Register("MIX", newMultiAsset(t, "MIX",
		weighted{fund("Vanguard Total Stock Market", "VTI"), 0.5},
		weighted{stock("Nestle SA", "NESN", "Switzerland", "Consumer Staples"), 0.5},
	))

	portfolio := newMultiAsset(t, "portfolio",
		weighted{fund("Vanguard Total Stock Market", "VTI"), 0.5},
		weighted{fund("Mix Fund", "MIX"), 0.5},
	)
	flat, err := services.Flatten(context.Background(), portfolio, registry, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "AAPL", flat.WeightByName("Apple Inc"), 0.75, 1e-9)
}

func TestFlatten_UntypedHoldingStaysLeafAfterEnrichment(t *testing.T) {
	enricher := mapEnricher{
		models.NewHolding("SPDR Gold Trust", models.WithTicker("GLD"), models.WithType(models.HoldingTypeETF)),
	}
	inst := models.NewMultiAsset("gold", enricher)
	if err := inst.AddWeight(models.NewHolding("SPDR Gold Trust"), 1); err != nil {
		t.Fatalf("AddWeight: %v", err)
	}

	flat, err := services.Flatten(context.Background(), inst, services.NewRegistryResolver(), enricher)
	if err != nil {
		t.Fatalf("expected the untyped holding to flatten as a leaf, got %v", err)
	}
	assertClose(t, "GLD", flat.WeightByName("SPDR Gold Trust"), 1, 1e-9)
}

// mapEnricher finds reference records by holding equality
type mapEnricher []models.Holding

func (m mapEnricher) Lookup(h models.Holding) (models.Holding, bool) {
	for _, ref := range m {
		if models.Equal(ref, h) {
			return ref, true
		}
	}
	return models.Holding{}, false
}
