package models

// WeightedInstrument is one input to aggregation: an instrument and its
// fraction of the aggregate.
type WeightedInstrument struct {
	Weight     float64
	Instrument Instrument
}

// StatBucket is the summed weight of every holding sharing an attribute value
type StatBucket struct {
	Key        string  `json:"key"`
	Weight     float64 `json:"weight"`
	Percentage float64 `json:"percentage"`
}

// UnknownAttribute labels holdings whose grouping attribute is empty
const UnknownAttribute = "Unknown"

// Rows converts an instrument into export rows in its current order.
// Weights are expressed as percentages.
func Rows(inst Instrument) []HoldingRow {
	holdings := inst.Holdings()
	rows := make([]HoldingRow, 0, len(holdings))
	for _, wh := range holdings {
		rows = append(rows, HoldingRow{
			Name:    wh.Holding.NormalizedName,
			Ticker:  wh.Holding.Ticker,
			Weight:  wh.Weight * 100,
			Country: wh.Holding.Country,
			Sector:  wh.Holding.Sector,
		})
	}
	return rows
}
