package models

import (
	"fmt"
	"math"
	"sort"
)

// SummedWeightThreshold is the lowest acceptable sum of an instrument's
// weights. The band is symmetric around 1.0; it absorbs float drift and rows
// dropped by ingestion for unparseable percentages.
const SummedWeightThreshold = 0.985

// WeightTolerance is the half-width of the accepted band around 1.0
const WeightTolerance = 1 - SummedWeightThreshold

// WeightedHolding pairs a holding with its fraction of the owning instrument
type WeightedHolding struct {
	Holding Holding `json:"holding"`
	Weight  float64 `json:"weight"`
}

// Enricher looks up an authoritative record for a holding.
// The reference market index implements it.
type Enricher interface {
	Lookup(h Holding) (Holding, bool)
}

// Instrument is a named, weighted collection of holdings
type Instrument interface {
	Name() string
	// Holdings returns the holdings in their current order
	Holdings() []WeightedHolding
	// Weight returns the weight of the holding equal to h, or 0
	Weight(h Holding) float64
	// CanAggregate reports whether the instrument accepts weight additions
	CanAggregate() bool
}

// WithinTolerance reports whether sum lies in the accepted band around 1.0
func WithinTolerance(sum float64) bool {
	return sum > SummedWeightThreshold && sum < 1+WeightTolerance
}

// SingleAsset is an instrument holding exactly one asset at weight 1.0
type SingleAsset struct {
	name    string
	holding Holding
}

// NewSingleAsset creates a one-item instrument whose holding is named after it
func NewSingleAsset(name string, opts ...HoldingOption) *SingleAsset {
	return &SingleAsset{
		name:    name,
		holding: NewHolding(name, opts...),
	}
}

func (s *SingleAsset) Name() string { return s.name }

// Holding returns the single holding
func (s *SingleAsset) Holding() Holding { return s.holding }

func (s *SingleAsset) Holdings() []WeightedHolding {
	return []WeightedHolding{{Holding: s.holding, Weight: 1}}
}

func (s *SingleAsset) Weight(h Holding) float64 {
	if Equal(s.holding, h) {
		return 1
	}
	return 0
}

func (s *SingleAsset) CanAggregate() bool { return false }

// MultiAsset maps holdings to weights. Weights are fractions of this
// instrument's own total. It is built by one owner and is not safe for
// concurrent mutation.
type MultiAsset struct {
	name     string
	index    *HoldingIndex
	enricher Enricher
}

// NewMultiAsset creates an empty instrument. enricher may be nil.
func NewMultiAsset(name string, enricher Enricher) *MultiAsset {
	return &MultiAsset{
		name:     name,
		index:    NewHoldingIndex(),
		enricher: enricher,
	}
}

func (m *MultiAsset) Name() string { return m.name }

func (m *MultiAsset) CanAggregate() bool { return true }

// AddWeight accumulates weight onto the entry equal to h.
// Calling it twice with the same arguments doubles the weight.
//
// The stored record is the existing one back-filled from h, then from the
// enricher, so the first-seen attributes win.
func (m *MultiAsset) AddWeight(h Holding, weight float64) error {
	if weight > 1 {
		return fmt.Errorf("%s: adding %s with weight %.6f: %w", m.name, h, weight, ErrWeightOutOfRange)
	}

	existing, oldWeight, found := m.index.Get(h)
	merged := h
	if found {
		merged = Merge(existing, h)
	}
	if m.enricher != nil {
		if ref, ok := m.enricher.Lookup(merged); ok {
			merged = Merge(merged, ref)
		}
	}

	m.index.Put(h, merged, oldWeight+weight)
	return nil
}

// Lookup returns the stored record equal to h
func (m *MultiAsset) Lookup(h Holding) (Holding, bool) {
	v, _, ok := m.index.Get(h)
	return v, ok
}

func (m *MultiAsset) Weight(h Holding) float64 {
	_, w, _ := m.index.Get(h)
	return w
}

// WeightByName returns the weight of the holding matching a bare name
func (m *MultiAsset) WeightByName(name string) float64 {
	return m.Weight(NewHolding(name))
}

func (m *MultiAsset) Holdings() []WeightedHolding {
	return m.index.Values()
}

// Len returns the number of distinct holdings
func (m *MultiAsset) Len() int {
	return m.index.Len()
}

// TotalWeight sums every holding weight
func (m *MultiAsset) TotalWeight() float64 {
	var sum float64
	for _, e := range m.index.entries {
		sum += e.weight
	}
	return sum
}

// AssertSummedWeight fails when the weights do not add up to ~1, which
// means rows were silently dropped or double counted upstream.
func (m *MultiAsset) AssertSummedWeight() error {
	sum := m.TotalWeight()
	if !WithinTolerance(sum) || math.IsNaN(sum) {
		return fmt.Errorf("%s: holdings sum to %.4f: %w", m.name, sum, ErrSummedWeight)
	}
	return nil
}

// SortByWeightDescending orders holdings by weight; ties keep insertion order
func (m *MultiAsset) SortByWeightDescending() {
	entries := make([]*indexEntry, len(m.index.entries))
	copy(entries, m.index.entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].weight > entries[j].weight
	})
	m.index.reorder(entries)
}
