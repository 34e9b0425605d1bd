package services

import (
	"context"
	"math"
	"strings"

	"github.com/epeers/holdings/internal/alphavantage"
	"github.com/epeers/holdings/internal/models"
	log "github.com/sirupsen/logrus"
)

// noSymbol is what ETF_PROFILE reports for constituents without a listing
const noSymbol = "n/a"

// cashSymbol marks the synthetic constituent that collects USD cash lines
const cashSymbol = "USD CASH"

// ResolveSwapHoldings folds total return swaps into the equity they track.
// A fund like MAGS lists "NVIDIA CORP" under NVDA and also "NVIDIA CORP SWAP GS"
// under n/a; the swap weight is added to the NVDA line.
//
// resolved holds the listed constituents (swap weights included), unresolved
// the n/a lines that matched no listed constituent.
func ResolveSwapHoldings(holdings []alphavantage.ParsedETFHolding) (resolved, unresolved []alphavantage.ParsedETFHolding) {
	var unlisted []alphavantage.ParsedETFHolding
	for _, h := range holdings {
		if strings.EqualFold(h.Symbol, noSymbol) || h.Symbol == "" {
			unlisted = append(unlisted, h)
		} else {
			resolved = append(resolved, h)
		}
	}

	byName := make(map[string]int, len(resolved))
	for i, h := range resolved {
		byName[companyKey(h.Name)] = i
	}

	for _, h := range unlisted {
		if h.Percentage < 0 {
			unresolved = append(unresolved, h)
			continue
		}
		base := swapBaseName(h.Name)
		if base == "" {
			unresolved = append(unresolved, h)
			continue
		}
		if i, ok := byName[base]; ok {
			resolved[i].Percentage += h.Percentage
		} else {
			log.Warnf("ResolveSwapHoldings: swap %q has no listed constituent %q", h.Name, base)
			unresolved = append(unresolved, h)
		}
	}
	return resolved, unresolved
}

// swapBaseName returns the company key of a swap description, or "" when
// the description is not a swap.
//
//	"NVIDIA CORP SWAP GS"    → "NVIDIA CORP"
//	"ALPHABET INC-CL A SWAP" → "ALPHABET INC"
func swapBaseName(description string) string {
	upper := strings.ToUpper(strings.TrimSpace(description))
	idx := strings.Index(upper, " SWAP")
	if idx < 0 {
		return ""
	}
	return companyKey(upper[:idx])
}

var shareClassSuffixes = []string{
	"-CLASS A", "-CLASS B", "-CLASS C",
	"-CL A", "-CL B", "-CL C",
	" CLASS A", " CLASS B", " CLASS C",
	" CL A", " CL B", " CL C",
}

// companyKey strips share classes and domain suffixes so that
// "ALPHABET INC-CL A" and "Alphabet Inc" compare equal.
func companyKey(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, ds := range []string{".COM", ".NET", ".ORG", ".CO"} {
		upper = strings.ReplaceAll(upper, ds, "")
	}
	for _, p := range shareClassSuffixes {
		if strings.HasSuffix(upper, p) {
			upper = upper[:len(upper)-len(p)]
			break
		}
	}
	return strings.TrimSpace(upper)
}

// ResolveSpecialSymbols collects USD cash and cash collateral lines into a
// single cash constituent.
func ResolveSpecialSymbols(holdings []alphavantage.ParsedETFHolding) (resolved, unresolved []alphavantage.ParsedETFHolding) {
	var cash float64
	found := false
	for _, h := range holdings {
		upper := strings.ToUpper(strings.TrimSpace(h.Name))
		if h.Percentage >= 0 && (upper == "USD CASH" || upper == "US DOLLAR" || upper == "US DOLLARS" || strings.HasPrefix(upper, "CASH COLLATERAL USD")) {
			cash += h.Percentage
			found = true
			continue
		}
		unresolved = append(unresolved, h)
	}
	if found {
		resolved = append(resolved, alphavantage.ParsedETFHolding{
			Symbol:     cashSymbol,
			Name:       "Cash",
			Percentage: cash,
		})
	}
	return resolved, unresolved
}

// ResolveSymbolVariants rewrites tickers the reference index does not know
// by trying punctuation variants (BRK.B, BRK-B, BRKB). The first variant the
// enricher recognizes wins; unknown tickers are kept as reported.
func ResolveSymbolVariants(holdings []alphavantage.ParsedETFHolding, enricher models.Enricher) []alphavantage.ParsedETFHolding {
	if enricher == nil {
		return holdings
	}
	known := func(symbol string) bool {
		_, ok := enricher.Lookup(models.NewHolding("", models.WithTicker(symbol)))
		return ok
	}

	result := make([]alphavantage.ParsedETFHolding, len(holdings))
	for i, h := range holdings {
		result[i] = h
		if h.Symbol == cashSymbol || !strings.ContainsAny(h.Symbol, ".-") || known(h.Symbol) {
			continue
		}
		for _, candidate := range []string{
			strings.ReplaceAll(h.Symbol, ".", "-"),
			strings.ReplaceAll(h.Symbol, "-", "."),
			strings.NewReplacer(".", "", "-", "").Replace(h.Symbol),
		} {
			if candidate != h.Symbol && known(candidate) {
				log.Debugf("ResolveSymbolVariants: %q → %q", h.Symbol, candidate)
				result[i].Symbol = candidate
				break
			}
		}
	}
	return result
}

// CheckSourceSum warns with W1003 when the raw fund data does not add up to
// 100%. Percentages are summed as integer basis points (7.83% → 783) so
// float drift cannot trigger it.
func CheckSourceSum(ctx context.Context, holdings []alphavantage.ParsedETFHolding, fund string) {
	var sum int64
	for _, h := range holdings {
		sum += int64(math.Round(h.Percentage * 10000))
	}
	if sum != 10000 {
		Warn(ctx, models.WarnFundSourceIncomplete, "fund %s: source data sums to %.2f%%, expected 100%%", fund, float64(sum)/100.0)
	}
}

// NormalizeHoldings rescales positive weights to sum to 1.0 when they are
// off by more than a basis point, warning with W1004.
func NormalizeHoldings(ctx context.Context, holdings []alphavantage.ParsedETFHolding, fund string) []alphavantage.ParsedETFHolding {
	var sum float64
	for _, h := range holdings {
		if h.Percentage > 0 {
			sum += h.Percentage
		}
	}
	if sum <= 0 || math.Abs(sum-1.0) <= 0.001 {
		return holdings
	}

	Warn(ctx, models.WarnFundRescaled, "fund %s: constituents summed to %.1f%%, scaled to 100%%", fund, sum*100)

	scale := 1.0 / sum
	result := make([]alphavantage.ParsedETFHolding, len(holdings))
	for i, h := range holdings {
		result[i] = h
		if h.Percentage > 0 {
			result[i].Percentage = h.Percentage * scale
		}
	}
	return result
}

// ToWeightedHoldings converts cleaned fund constituents into holdings.
// Non-positive lines are dropped.
func ToWeightedHoldings(holdings []alphavantage.ParsedETFHolding) []models.WeightedHolding {
	out := make([]models.WeightedHolding, 0, len(holdings))
	for _, h := range holdings {
		if h.Percentage <= 0 {
			continue
		}
		var h2 models.Holding
		if h.Symbol == cashSymbol {
			h2 = models.NewHolding(h.Name, models.WithSector("Cash"), models.WithType(models.HoldingTypeCash))
		} else {
			h2 = models.NewHolding(h.Name, models.WithTicker(h.Symbol))
		}
		out = append(out, models.WeightedHolding{Holding: h2, Weight: h.Percentage})
	}
	return out
}
