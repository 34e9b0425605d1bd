// Package ingest turns provider holdings exports into instruments.
// Each provider format is a column mapping over a CSV body; weights are
// read as percentages and rows without a positive weight are skipped.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/epeers/holdings/internal/models"
	"github.com/epeers/holdings/internal/services"
	log "github.com/sirupsen/logrus"
)

// Supported formats
const (
	FormatIShares  = "ishares"
	FormatVanguard = "vanguard"
	FormatSPDR     = "spdr"
	FormatCustom   = "custom"
	FormatSheet    = "sheet"
	FormatGeneric  = "generic"
)

// ErrUnknownFormat is returned for a format name with no adapter
var ErrUnknownFormat = errors.New("unknown ingestion format")

// Columns maps holding attributes to provider column headers.
// Empty entries are not read.
type Columns struct {
	Name     string
	Ticker   string
	Weight   string
	Country  string
	Sector   string
	Industry string
	Currency string
	Exchange string
	Type     string
}

// Format describes one provider export layout
type Format struct {
	// SkipLines is the number of preamble lines above the header row
	SkipLines int
	Columns   Columns
	// Unwrap strips spreadsheet formula quoting (="AAPL") from cells
	Unwrap bool
	// SkipTotals drops summary rows that contain a Total cell
	SkipTotals bool
}

var formats = map[string]Format{
	FormatIShares: {
		SkipLines: 2,
		Columns: Columns{
			Name:     "Name",
			Ticker:   "Issuer Ticker",
			Weight:   "Weight (%)",
			Country:  "Location",
			Sector:   "Sector",
			Currency: "Market Currency",
			Exchange: "Exchange",
		},
	},
	FormatVanguard: {
		SkipLines: 6,
		Columns: Columns{
			Name:   "Holding name",
			Ticker: "Ticker",
			Weight: "% of funds",
			Sector: "Sector",
		},
		Unwrap: true,
	},
	FormatSPDR: {
		SkipLines: 5,
		Columns: Columns{
			Name:     "Security Name",
			Weight:   "Percent Of Fund",
			Country:  "Trade Country Name",
			Sector:   "Sector Classification",
			Industry: "Industry Classification",
			Currency: "Currency",
		},
	},
	FormatCustom: {
		Columns: Columns{
			Name:    "Company",
			Ticker:  "Ticker",
			Weight:  "Actual Percentage (%)",
			Country: "Region",
			Sector:  "Domain",
		},
	},
	FormatSheet: {
		Columns: Columns{
			Name:   "Name",
			Ticker: "Ticker",
			Weight: "Percentage",
			Type:   "Type",
		},
		SkipTotals: true,
	},
	FormatGeneric: {
		Columns: Columns{
			Name:     "Name",
			Ticker:   "Ticker",
			Weight:   "Weight",
			Country:  "Country",
			Sector:   "Sector",
			Industry: "Industry",
			Currency: "Currency",
			Exchange: "Exchange",
			Type:     "Type",
		},
	},
}

// Formats returns the supported format names
func Formats() []string {
	return []string{FormatIShares, FormatVanguard, FormatSPDR, FormatCustom, FormatSheet, FormatGeneric}
}

// Parse reads r in the named format into an instrument called name.
// Skipped rows are reported as W1001 warnings on ctx.
func Parse(ctx context.Context, format, name string, r io.Reader, enricher models.Enricher) (*models.MultiAsset, error) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	return f.Parse(ctx, name, r, enricher)
}

// ParseISharesCSV reads an iShares holdings export
func ParseISharesCSV(ctx context.Context, name string, r io.Reader, enricher models.Enricher) (*models.MultiAsset, error) {
	return formats[FormatIShares].Parse(ctx, name, r, enricher)
}

// ParseVanguardCSV reads a Vanguard holdings export
func ParseVanguardCSV(ctx context.Context, name string, r io.Reader, enricher models.Enricher) (*models.MultiAsset, error) {
	return formats[FormatVanguard].Parse(ctx, name, r, enricher)
}

// ParseSPDRCSV reads an SPDR holdings export saved as CSV
func ParseSPDRCSV(ctx context.Context, name string, r io.Reader, enricher models.Enricher) (*models.MultiAsset, error) {
	return formats[FormatSPDR].Parse(ctx, name, r, enricher)
}

// ParseCustomCSV reads a hand-maintained Company/Ticker/Region/Domain sheet
func ParseCustomCSV(ctx context.Context, name string, r io.Reader, enricher models.Enricher) (*models.MultiAsset, error) {
	return formats[FormatCustom].Parse(ctx, name, r, enricher)
}

// ParseSheetCSV reads a portfolio sheet (Name, Ticker, Percentage, Type).
// Rows typed ETF become fund holdings that Flatten expands.
func ParseSheetCSV(ctx context.Context, name string, r io.Reader, enricher models.Enricher) (*models.MultiAsset, error) {
	return formats[FormatSheet].Parse(ctx, name, r, enricher)
}

// ParseGenericCSV reads a CSV whose headers are the holding attribute names
func ParseGenericCSV(ctx context.Context, name string, r io.Reader, enricher models.Enricher) (*models.MultiAsset, error) {
	return formats[FormatGeneric].Parse(ctx, name, r, enricher)
}

// NewOneItemInstrument creates an instrument that is a single asset, such as
// a stock or a cash position, held at weight 1.0
func NewOneItemInstrument(name string, typ models.HoldingType, opts ...models.HoldingOption) *models.SingleAsset {
	return models.NewSingleAsset(name, append(opts, models.WithType(typ))...)
}

// Parse reads r into an instrument. The summed weight of the kept rows must
// be within tolerance of 100%.
func (f Format) Parse(ctx context.Context, name string, r io.Reader, enricher models.Enricher) (*models.MultiAsset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	for i := 0; i < f.SkipLines; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("failed to skip preamble line %d: %w", i+1, err)
		}
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIdx := make(map[string]int)
	for i, col := range header {
		colIdx[headerKey(f.unwrap(col))] = i
	}
	for _, col := range []string{f.Columns.Name, f.Columns.Weight} {
		if _, ok := colIdx[headerKey(col)]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	cell := func(record []string, col string) string {
		if col == "" {
			return ""
		}
		idx, ok := colIdx[headerKey(col)]
		if !ok || idx >= len(record) {
			return ""
		}
		return f.unwrap(record[idx])
	}

	inst := models.NewMultiAsset(name, enricher)
	rowNum := f.SkipLines + 1
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to read CSV record: %w", rowNum+1, err)
		}
		rowNum++

		if f.SkipTotals && isTotalRow(record) {
			continue
		}

		holdingName := cell(record, f.Columns.Name)
		if holdingName == "" {
			continue
		}

		weightStr := cell(record, f.Columns.Weight)
		weight, err := parsePercentage(weightStr)
		if err != nil || math.IsNaN(weight) || weight <= 0 {
			skipped++
			services.Warn(ctx, models.WarnSkippedRow, "%s: row %d: skipped %q with weight %q", name, rowNum, holdingName, weightStr)
			continue
		}

		h := models.NewHolding(holdingName,
			models.WithTicker(cell(record, f.Columns.Ticker)),
			models.WithCountry(cell(record, f.Columns.Country)),
			models.WithSector(cell(record, f.Columns.Sector)),
			models.WithIndustry(cell(record, f.Columns.Industry)),
			models.WithCurrency(cell(record, f.Columns.Currency)),
			models.WithExchange(cell(record, f.Columns.Exchange)),
			models.WithType(models.ParseHoldingType(cell(record, f.Columns.Type))),
		)
		if err := inst.AddWeight(h, weight/100); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
	}

	if skipped > 0 {
		log.Warnf("%s: skipped %d rows without a positive weight", name, skipped)
	}

	inst.SortByWeightDescending()
	if err := inst.AssertSummedWeight(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (f Format) unwrap(s string) string {
	s = strings.TrimSpace(s)
	if f.Unwrap && strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

func headerKey(col string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
}

func isTotalRow(record []string) bool {
	for _, c := range record {
		if c == "Total" || c == "TOTAL" {
			return true
		}
	}
	return false
}

// parsePercentage accepts "7.83", "7.83%" and "1,234.5"
func parsePercentage(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}
