package services_test

import (
	"context"
	"testing"

	"github.com/epeers/holdings/internal/alphavantage"
	"github.com/epeers/holdings/internal/models"
	"github.com/epeers/holdings/internal/services"
)

// magsHoldings is MAGS-like fund data as ETF_PROFILE reports it
func magsHoldings() []alphavantage.ParsedETFHolding {
	return []alphavantage.ParsedETFHolding{
		{Symbol: "n/a", Name: "NVIDIA CORP SWAP", Percentage: 0.0886},
		{Symbol: "FGXXX", Name: "FIRST AMERICAN GOVERNMENT OBLIGS X", Percentage: 0.0721},
		{Symbol: "n/a", Name: "ALPHABET INC SWAP GS", Percentage: 0.0589},
		{Symbol: "n/a", Name: "AMAZON.COM INC SWAP", Percentage: 0.0576},
		{Symbol: "AMZN", Name: "AMAZON.COM INC", Percentage: 0.0562},
		{Symbol: "n/a", Name: "ALPHABET INC-CL A SWAP", Percentage: 0.0534},
		{Symbol: "NVDA", Name: "NVIDIA CORP", Percentage: 0.0533},
		{Symbol: "n/a", Name: "MICROSOFT CORP SWAP", Percentage: 0.0532},
		{Symbol: "MSFT", Name: "MICROSOFT CORP", Percentage: 0.0526},
		{Symbol: "TSLA", Name: "TESLA INC", Percentage: 0.0522},
		{Symbol: "META", Name: "META PLATFORMS INC CLASS A", Percentage: 0.0513},
		{Symbol: "n/a", Name: "META PLATFORMS INC-CLASS A SWAP", Percentage: 0.0512},
		{Symbol: "AAPL", Name: "APPLE INC", Percentage: 0.0503},
		{Symbol: "n/a", Name: "TESLA INC SWAP", Percentage: 0.0445},
		{Symbol: "n/a", Name: "APPLE INC SWAP", Percentage: 0.0442},
		{Symbol: "n/a", Name: "TESLA INC SWAP GS", Percentage: 0.0423},
		{Symbol: "GOOGL", Name: "ALPHABET INC CLASS A", Percentage: 0.0415},
		{Symbol: "n/a", Name: "APPLE INC SWAP GS", Percentage: 0.0409},
		{Symbol: "n/a", Name: "AMAZON INC SWAP GS", Percentage: 0.0358},
		{Symbol: "n/a", Name: "MICROSOFT CORP SWAP GS", Percentage: 0.0344},
		{Symbol: "n/a", Name: "META PLATFORMS INC SWAP GS", Percentage: 0.0342},
		{Symbol: "n/a", Name: "US DOLLARS", Percentage: 0.0053},
		{Symbol: "n/a", Name: "OTHER ASSETS AND LIABILITIES", Percentage: -0.0257},
		{Symbol: "n/a", Name: "CASH OFFSET", Percentage: -0.5705},
	}
}

func TestResolveSwapHoldings_MAGSData(t *testing.T) {
	resolved, unresolved := services.ResolveSwapHoldings(magsHoldings())

	// 7 equities + FGXXX
	if len(resolved) != 8 {
		t.Fatalf("expected 8 resolved holdings, got %d", len(resolved))
	}

	bySymbol := make(map[string]float64)
	for _, h := range resolved {
		bySymbol[h.Symbol] = h.Percentage
	}
	assertClose(t, "NVDA", bySymbol["NVDA"], 0.1419, 0.0001)
	assertClose(t, "AMZN", bySymbol["AMZN"], 0.1496, 0.0001)
	assertClose(t, "MSFT", bySymbol["MSFT"], 0.1402, 0.0001)
	assertClose(t, "TSLA", bySymbol["TSLA"], 0.1390, 0.0001)
	assertClose(t, "META", bySymbol["META"], 0.1367, 0.0001)
	assertClose(t, "AAPL", bySymbol["AAPL"], 0.1354, 0.0001)
	assertClose(t, "GOOGL", bySymbol["GOOGL"], 0.1538, 0.0001)
	assertClose(t, "FGXXX", bySymbol["FGXXX"], 0.0721, 0.0001)

	names := make(map[string]bool)
	for _, h := range unresolved {
		names[h.Name] = true
	}
	for _, want := range []string{"US DOLLARS", "OTHER ASSETS AND LIABILITIES", "CASH OFFSET"} {
		if !names[want] {
			t.Errorf("expected %s in unresolved", want)
		}
	}
	if len(unresolved) != 3 {
		t.Errorf("expected 3 unresolved, got %d", len(unresolved))
	}
}

func TestResolveSwapHoldings_AllSwapsNoEquities(t *testing.T) {
	holdings := []alphavantage.ParsedETFHolding{
		{Symbol: "n/a", Name: "NVIDIA CORP SWAP", Percentage: 0.50},
		{Symbol: "n/a", Name: "APPLE INC SWAP GS", Percentage: 0.30},
	}

	resolved, unresolved := services.ResolveSwapHoldings(holdings)
	if len(resolved) != 0 || len(unresolved) != 2 {
		t.Fatalf("expected 0 resolved and 2 unresolved, got %d and %d", len(resolved), len(unresolved))
	}
}

func TestResolveSpecialSymbols(t *testing.T) {
	holdings := []alphavantage.ParsedETFHolding{
		{Symbol: "n/a", Name: "US DOLLARS", Percentage: 0.004},
		{Symbol: "n/a", Name: "CASH COLLATERAL USD GSCUS", Percentage: 0.006},
		{Symbol: "n/a", Name: "CASH OFFSET", Percentage: -0.5},
	}

	cash, rest := services.ResolveSpecialSymbols(holdings)
	if len(cash) != 1 {
		t.Fatalf("expected 1 cash line, got %d", len(cash))
	}
	assertClose(t, "cash", cash[0].Percentage, 0.01, 1e-9)
	if len(rest) != 1 || rest[0].Name != "CASH OFFSET" {
		t.Errorf("expected only CASH OFFSET left, got %+v", rest)
	}
}

func TestCheckSourceSum(t *testing.T) {
	ctx, wc := services.NewWarningContext(context.Background())
	services.CheckSourceSum(ctx, []alphavantage.ParsedETFHolding{
		{Symbol: "AAPL", Percentage: 0.0783},
		{Symbol: "MSFT", Percentage: 0.9217},
	}, "FULL")
	if len(wc.GetWarnings()) != 0 {
		t.Errorf("expected no warning for a complete fund, got %v", wc.GetWarnings())
	}

	services.CheckSourceSum(ctx, []alphavantage.ParsedETFHolding{{Symbol: "AAPL", Percentage: 0.9}}, "PART")
	warnings := wc.GetWarnings()
	if len(warnings) != 1 || warnings[0].Code != models.WarnFundSourceIncomplete {
		t.Errorf("expected one W1003 warning, got %v", warnings)
	}
}

func TestNormalizeHoldings_ScalesUp(t *testing.T) {
	ctx, wc := services.NewWarningContext(context.Background())

	result := services.NormalizeHoldings(ctx, []alphavantage.ParsedETFHolding{
		{Symbol: "AAPL", Name: "APPLE INC", Percentage: 0.25},
		{Symbol: "MSFT", Name: "MICROSOFT CORP", Percentage: 0.25},
	}, "TEST")

	assertClose(t, "AAPL", result[0].Percentage, 0.5, 0.0001)
	assertClose(t, "MSFT", result[1].Percentage, 0.5, 0.0001)

	warnings := wc.GetWarnings()
	if len(warnings) != 1 || warnings[0].Code != models.WarnFundRescaled {
		t.Errorf("expected one W1004 warning, got %v", warnings)
	}
}

func TestNormalizeHoldings_AlreadyNormalized(t *testing.T) {
	ctx, wc := services.NewWarningContext(context.Background())

	result := services.NormalizeHoldings(ctx, []alphavantage.ParsedETFHolding{
		{Symbol: "AAPL", Percentage: 0.6},
		{Symbol: "MSFT", Percentage: 0.4},
	}, "TEST")

	assertClose(t, "AAPL", result[0].Percentage, 0.6, 1e-12)
	if len(wc.GetWarnings()) != 0 {
		t.Errorf("expected no warnings, got %d", len(wc.GetWarnings()))
	}
	if services.NormalizeHoldings(ctx, nil, "TEST") != nil {
		t.Error("expected nil for no holdings")
	}
}

func TestResolveSymbolVariants(t *testing.T) {
	tests := []struct {
		name   string
		known  []string
		symbol string
		want   string
	}{
		{"dot to dash", []string{"BRK-B", "AAPL"}, "BRK.B", "BRK-B"},
		{"dash to dot", []string{"BRK.B"}, "BRK-B", "BRK.B"},
		{"stripped", []string{"BRKB"}, "BRK.B", "BRKB"},
		{"dash preferred over stripped", []string{"BRK-B", "BRKB"}, "BRK.B", "BRK-B"},
		{"no punctuation", []string{"AAPL"}, "UNKN", "UNKN"},
		{"no match", []string{"AAPL"}, "BRK.X", "BRK.X"},
		{"already known", []string{"BF.B", "BF-B"}, "BF.B", "BF.B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var index mapEnricher
			for _, s := range tt.known {
				index = append(index, models.NewHolding("Listed "+s, models.WithTicker(s)))
			}
			result := services.ResolveSymbolVariants([]alphavantage.ParsedETFHolding{
				{Symbol: tt.symbol, Name: "Berkshire Hathaway", Percentage: 1},
			}, index)
			if result[0].Symbol != tt.want {
				t.Errorf("got %q, want %q", result[0].Symbol, tt.want)
			}
		})
	}
}

func TestToWeightedHoldings(t *testing.T) {
	out := services.ToWeightedHoldings([]alphavantage.ParsedETFHolding{
		{Symbol: "AAPL", Name: "APPLE INC", Percentage: 0.6},
		{Symbol: "USD CASH", Name: "Cash", Percentage: 0.4},
		{Symbol: "n/a", Name: "CASH OFFSET", Percentage: -0.1},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(out))
	}
	if out[0].Holding.Ticker != "AAPL" || out[0].Holding.NormalizedName != "Apple Inc" {
		t.Errorf("unexpected holding %+v", out[0].Holding)
	}
	if out[1].Holding.Type != models.HoldingTypeCash || out[1].Holding.Ticker != "" {
		t.Errorf("expected a ticker-less cash holding, got %+v", out[1].Holding)
	}
}
