package models

// AggregateRequest represents the request body for aggregating a portfolio
type AggregateRequest struct {
	Name        string              `json:"name"`
	Flatten     bool                `json:"flatten"`
	Instruments []InstrumentRequest `json:"instruments" binding:"required,min=1,dive"`
}

// InstrumentRequest is one weighted component of an aggregate request.
// Exactly one of Holdings, Single or Fund should be set: inline holdings
// build a multi-asset instrument, Single a one-item instrument, and Fund
// names a fund ticker to expand through the fund resolvers.
type InstrumentRequest struct {
	Name     string           `json:"name"`
	Weight   float64          `json:"weight" binding:"required,gt=0,lte=1"`
	Type     string           `json:"type"`
	Single   bool             `json:"single"`
	Fund     string           `json:"fund"`
	Holdings []HoldingRequest `json:"holdings" binding:"dive"`
}

// HoldingRequest is one inline holding. Weight is a fraction of its instrument.
type HoldingRequest struct {
	Name     string  `json:"name" binding:"required"`
	Ticker   string  `json:"ticker"`
	Weight   float64 `json:"weight" binding:"gte=0,lte=1"`
	Country  string  `json:"country"`
	Sector   string  `json:"sector"`
	Industry string  `json:"industry"`
	Currency string  `json:"currency"`
	Exchange string  `json:"exchange"`
	Type     string  `json:"type"`
}

// HoldingRow is one exported holding: the tabular export contract
// {Name, Ticker, Weight%, Country, Sector}.
type HoldingRow struct {
	Name    string  `json:"name"`
	Ticker  string  `json:"ticker"`
	Weight  float64 `json:"weight"`
	Country string  `json:"country"`
	Sector  string  `json:"sector"`
}

// AggregateResponse represents an aggregated (and optionally flattened) portfolio
type AggregateResponse struct {
	Name        string       `json:"name"`
	TotalWeight float64      `json:"total_weight"`
	Holdings    []HoldingRow `json:"holdings"`
	Countries   []StatBucket `json:"countries"`
	Sectors     []StatBucket `json:"sectors"`
	Warnings    []Warning    `json:"warnings,omitempty"`
}

// LookupResponse represents a reference market index hit
type LookupResponse struct {
	Found   bool     `json:"found"`
	Holding *Holding `json:"holding,omitempty"`
}

// SegmentsResponse lists the reference market segments in lookup order
type SegmentsResponse struct {
	Segments []string  `json:"segments"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// RegisterFundResponse summarizes uploaded fund constituents
type RegisterFundResponse struct {
	Ticker      string    `json:"ticker"`
	Holdings    int       `json:"holdings"`
	TotalWeight float64   `json:"total_weight"`
	Warnings    []Warning `json:"warnings,omitempty"`
}

// FundHoldingsResponse lists the resolved constituents of a fund
type FundHoldingsResponse struct {
	Ticker   string       `json:"ticker"`
	Holdings []HoldingRow `json:"holdings"`
	Warnings []Warning    `json:"warnings,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
