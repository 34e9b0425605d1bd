package alphavantage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ListingStatusEntry is one row of the LISTING_STATUS ticker universe.
type ListingStatusEntry struct {
	Symbol    string
	Name      string
	Exchange  string
	AssetType string
	Status    string
}

// Active reports whether the listing is still trading. Rows without a status
// count as active.
func (e ListingStatusEntry) Active() bool {
	return e.Status == "" || strings.EqualFold(e.Status, "Active")
}

var listingColumns = []string{"symbol", "name", "exchange", "assettype", "status"}

// GetListingStatus downloads the ticker universe for state ("active" or
// "delisted").
func (c *Client) GetListingStatus(ctx context.Context, state string) ([]ListingStatusEntry, error) {
	defer log.Debugf("GetListingStatus(%s) done", state)

	params := url.Values{}
	params.Set("function", "LISTING_STATUS")
	params.Set("apikey", c.apiKey)
	params.Set("state", state)

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing status: %w", err)
	}
	return ParseListingStatusCSV(bytes.NewReader(body))
}

// ParseListingStatusCSV reads LISTING_STATUS rows. Header names match
// case-insensitively and extra columns such as ipoDate are ignored.
func ParseListingStatusCSV(r io.Reader) ([]ListingStatusEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read listing header: %w", err)
	}
	pos := make(map[string]int, len(header))
	for i, col := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	idx := make([]int, len(listingColumns))
	for i, col := range listingColumns {
		p, ok := pos[col]
		if !ok {
			return nil, fmt.Errorf("listing status: missing column %q", col)
		}
		idx[i] = p
	}

	field := func(record []string, i int) string {
		if idx[i] >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx[i]])
	}

	var entries []ListingStatusEntry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read listing row: %w", err)
		}
		entry := ListingStatusEntry{
			Symbol:    field(record, 0),
			Name:      field(record, 1),
			Exchange:  field(record, 2),
			AssetType: field(record, 3),
			Status:    field(record, 4),
		}
		if entry.Symbol == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FilterByExchange keeps the active listings of one exchange (case-insensitive).
func FilterByExchange(entries []ListingStatusEntry, exchange string) []ListingStatusEntry {
	var out []ListingStatusEntry
	for _, e := range entries {
		if strings.EqualFold(e.Exchange, exchange) && e.Active() {
			out = append(out, e)
		}
	}
	return out
}
