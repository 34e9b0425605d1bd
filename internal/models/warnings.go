package models

// WarningCode categorizes warnings by subsystem.
// W1xxx = ingestion/fund resolution, W2xxx = reference market index.
type WarningCode string

const (
	WarnSkippedRow           WarningCode = "W1001" // ingestion row dropped (unparseable or non-positive weight)
	WarnUnresolvedFundRow    WarningCode = "W1002" // fund constituent dropped (negative weight, liabilities)
	WarnFundSourceIncomplete WarningCode = "W1003" // source fund data does not add up to 100%
	WarnFundRescaled         WarningCode = "W1004" // fund constituents rescaled to 100% after dropping lines
	WarnMarketTickerMissed   WarningCode = "W2001" // per-ticker reference lookups failed during refresh
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
