// Package export writes instruments to flat tabular files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/epeers/holdings/internal/models"
)

// Header is the column order of every export
var Header = []string{"Name", "Ticker", "Weight", "Country", "Sector"}

// WriteCSV writes inst's holdings in their current order. Weight is a
// percentage.
func WriteCSV(w io.Writer, inst models.Instrument) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range models.Rows(inst) {
		record := []string{
			row.Name,
			row.Ticker,
			strconv.FormatFloat(row.Weight, 'f', -1, 64),
			row.Country,
			row.Sector,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
