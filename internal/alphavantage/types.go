package alphavantage

// ETFProfileResponse represents the AlphaVantage ETF_PROFILE response
type ETFProfileResponse struct {
	Holdings []ETFHolding `json:"holdings"`
}

// ETFHolding represents a single ETF holding
type ETFHolding struct {
	Symbol string `json:"symbol"`
	Name   string `json:"description"`
	Weight string `json:"weight"`
}

// CompanyOverview represents the AlphaVantage OVERVIEW response.
// Only the reference fields are decoded.
type CompanyOverview struct {
	Symbol    string `json:"Symbol"`
	AssetType string `json:"AssetType"`
	Name      string `json:"Name"`
	Exchange  string `json:"Exchange"`
	Currency  string `json:"Currency"`
	Country   string `json:"Country"`
	Sector    string `json:"Sector"`
	Industry  string `json:"Industry"`
}

// ParsedETFHolding represents a parsed ETF holding.
// Percentage is a fraction (0.0783 = 7.83%).
type ParsedETFHolding struct {
	Symbol     string
	Name       string
	Percentage float64
}
