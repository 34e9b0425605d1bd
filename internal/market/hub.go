package market

import (
	"strings"

	"github.com/epeers/holdings/internal/models"
)

// Hub queries segments in a fixed priority order. The first hit wins;
// records are never merged across segments.
type Hub struct {
	segments []Segment
}

// NewHub creates a Hub over segments in lookup order
func NewHub(segments ...Segment) *Hub {
	return &Hub{segments: segments}
}

// Lookup returns the first segment record equal to h
func (h *Hub) Lookup(holding models.Holding) (models.Holding, bool) {
	for _, s := range h.segments {
		if ref, ok := s.Lookup(holding); ok {
			return ref, true
		}
	}
	return models.Holding{}, false
}

// Segments returns the segment names in lookup order
func (h *Hub) Segments() []string {
	names := make([]string, len(h.segments))
	for i, s := range h.segments {
		names[i] = s.Name()
	}
	return names
}

// Missed returns, per refreshed segment, how many tickers failed to load
func (h *Hub) Missed() map[string]int {
	out := make(map[string]int)
	for _, s := range h.segments {
		if r, ok := s.(interface{ Missed() int }); ok && r.Missed() > 0 {
			out[s.Name()] = r.Missed()
		}
	}
	return out
}

// Order groups
const (
	OrderStatic    = "static"
	OrderExchanges = "exchanges"
)

// Ordered concatenates the static and exchange segments following order,
// a list of OrderStatic / OrderExchanges. Groups missing from order are
// appended in the default order (static first).
func Ordered(order []string, static, exchanges []Segment) []Segment {
	groups := map[string][]Segment{
		OrderStatic:    static,
		OrderExchanges: exchanges,
	}

	var out []Segment
	used := make(map[string]bool)
	for _, g := range append(order, OrderStatic, OrderExchanges) {
		g = strings.ToLower(strings.TrimSpace(g))
		if used[g] {
			continue
		}
		segs, ok := groups[g]
		if !ok {
			continue
		}
		used[g] = true
		out = append(out, segs...)
	}
	return out
}
