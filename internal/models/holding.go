package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// HoldingType tags the asset class of a holding
type HoldingType string

const (
	HoldingTypeUnset      HoldingType = ""
	HoldingTypeCash       HoldingType = "CASH"
	HoldingTypeETF        HoldingType = "ETF"
	HoldingTypeStock      HoldingType = "STOCK"
	HoldingTypeMutualFund HoldingType = "MUTUAL FUND"
	HoldingTypeBond       HoldingType = "BOND"
	HoldingTypeCommodity  HoldingType = "COMMODITY"
)

// NameIoUThreshold is the token-set Intersection-over-Union a pair of
// ticker-less names must strictly exceed to be considered the same security.
const NameIoUThreshold = 0.6

// fundTypes are the holding types that represent another instrument and
// must be expanded by flattening.
var fundTypes = map[HoldingType]bool{
	HoldingTypeETF: true,
}

// ParseHoldingType maps a free-text type label onto a HoldingType.
// Unknown labels yield HoldingTypeUnset.
func ParseHoldingType(s string) HoldingType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CASH", "CURRENCY", "MONEY MARKET":
		return HoldingTypeCash
	case "ETF", "FUND", "ETC":
		return HoldingTypeETF
	case "STOCK", "EQUITY", "COMMON STOCK", "PREFERRED STOCK":
		return HoldingTypeStock
	case "MUTUAL FUND", "MUTUALFUND":
		return HoldingTypeMutualFund
	case "BOND", "BONDS", "FIXED INCOME":
		return HoldingTypeBond
	case "COMMODITY", "COMMODITIES":
		return HoldingTypeCommodity
	}
	return HoldingTypeUnset
}

// IsFund reports whether the type stands for a basket that can be flattened.
func (t HoldingType) IsFund() bool {
	return fundTypes[t]
}

// Holding represents one real-world security or asset class.
// NormalizedName is derived from Name by NewHolding and must not be edited.
type Holding struct {
	Name           string      `json:"name"`
	NormalizedName string      `json:"normalized_name"`
	Ticker         string      `json:"ticker,omitempty"`
	Country        string      `json:"country,omitempty"`
	Sector         string      `json:"sector,omitempty"`
	Industry       string      `json:"industry,omitempty"`
	Currency       string      `json:"currency,omitempty"`
	Exchange       string      `json:"exchange,omitempty"`
	Type           HoldingType `json:"type,omitempty"`
}

// HoldingOption sets an optional attribute on a new Holding
type HoldingOption func(*Holding)

func WithTicker(ticker string) HoldingOption {
	return func(h *Holding) { h.Ticker = strings.TrimSpace(ticker) }
}

func WithCountry(country string) HoldingOption {
	return func(h *Holding) { h.Country = NormalizeCountry(country) }
}

func WithSector(sector string) HoldingOption {
	return func(h *Holding) { h.Sector = strings.TrimSpace(sector) }
}

func WithIndustry(industry string) HoldingOption {
	return func(h *Holding) { h.Industry = strings.TrimSpace(industry) }
}

func WithCurrency(currency string) HoldingOption {
	return func(h *Holding) { h.Currency = strings.TrimSpace(currency) }
}

func WithExchange(exchange string) HoldingOption {
	return func(h *Holding) { h.Exchange = strings.TrimSpace(exchange) }
}

func WithType(t HoldingType) HoldingOption {
	return func(h *Holding) { h.Type = t }
}

// NewHolding builds a Holding and derives its normalized name
func NewHolding(name string, opts ...HoldingOption) Holding {
	h := Holding{
		Name:           name,
		NormalizedName: NormalizeName(name),
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// nameSeparators are replaced by a space before tokenizing
var nameSeparators = strings.NewReplacer(
	".", " ",
	"-", " ",
	"&", " ",
	"(", " ",
	")", " ",
)

// NormalizeName canonicalizes a free-text security name so that the same
// issuer reported by different providers compares token by token.
// Everything after the first comma is dropped ("Apple Inc., Class A" →
// "Apple Inc"). An empty result means the name is unknown.
func NormalizeName(raw string) string {
	if i := strings.IndexByte(raw, ','); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)
	raw = nameSeparators.Replace(raw)

	tokens := strings.Fields(raw)
	for i, tok := range tokens {
		tokens[i] = titleToken(strings.ToUpper(tok))
	}
	return strings.Join(tokens, " ")
}

// titleToken capitalizes the first rune and lower-cases the rest
func titleToken(tok string) string {
	r, size := utf8.DecodeRuneInString(tok)
	if r == utf8.RuneError {
		return tok
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(tok[size:])
}

// NormalizeCountry folds the common spellings of the same country
func NormalizeCountry(country string) string {
	country = strings.TrimSpace(country)
	switch country {
	case "United States", "U.S.", "USA", "United States of America":
		return "US"
	}
	return country
}

// BucketKey returns the first token of the normalized name. Any two holdings
// that can be equal by name share a bucket key.
func (h Holding) BucketKey() string {
	if i := strings.IndexByte(h.NormalizedName, ' '); i >= 0 {
		return h.NormalizedName[:i]
	}
	return h.NormalizedName
}

// TickerKey returns the upper-cased ticker, or "" if the holding has none
func (h Holding) TickerKey() string {
	return strings.ToUpper(h.Ticker)
}

// IsLeaf reports whether the holding is a terminal security rather than a fund
func (h Holding) IsLeaf() bool {
	return !h.Type.IsFund()
}

func (h Holding) String() string {
	if h.Ticker != "" {
		return h.Ticker + ": " + h.NormalizedName
	}
	return h.NormalizedName
}

// Equal reports whether a and b refer to the same security.
//
// Tickers decide when both sides carry one. Otherwise the first name token
// must match and the token-set IoU of the normalized names must exceed
// NameIoUThreshold. The relation is not transitive: A≈B and B≈C does not
// imply A≈C.
func Equal(a, b Holding) bool {
	if a.Ticker != "" && b.Ticker != "" {
		return strings.EqualFold(a.Ticker, b.Ticker)
	}

	if a.BucketKey() != b.BucketKey() {
		return false
	}

	return NameIoU(a.NormalizedName, b.NormalizedName) > NameIoUThreshold
}

// NameIoU computes the Intersection-over-Union of the token sets of two
// normalized names. Two empty names have an IoU of 0.
func NameIoU(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	var inter int
	for tok := range setA {
		if setB[tok] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(name string) map[string]bool {
	tokens := strings.Fields(name)
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}

// Merge back-fills a's empty ticker, country, sector, industry, currency and
// exchange from b. The name and type of a are kept: the type decides whether
// a holding is a fund, so only the source that listed it may set it.
// Neither argument is modified.
func Merge(a, b Holding) Holding {
	merged := a
	merged.Ticker = firstNonEmpty(a.Ticker, b.Ticker)
	merged.Country = firstNonEmpty(a.Country, b.Country)
	merged.Sector = firstNonEmpty(a.Sector, b.Sector)
	merged.Industry = firstNonEmpty(a.Industry, b.Industry)
	merged.Currency = firstNonEmpty(a.Currency, b.Currency)
	merged.Exchange = firstNonEmpty(a.Exchange, b.Exchange)
	return merged
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// Attribute returns the value of a named attribute used for grouping.
// Supported keys: country, sector, industry, currency, exchange, type.
func (h Holding) Attribute(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "country":
		return h.Country, true
	case "sector":
		return h.Sector, true
	case "industry":
		return h.Industry, true
	case "currency":
		return h.Currency, true
	case "exchange":
		return h.Exchange, true
	case "type":
		return string(h.Type), true
	}
	return "", false
}
