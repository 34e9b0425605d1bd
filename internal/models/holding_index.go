package models

// HoldingIndex is an insertion-ordered map keyed by Holding equality.
//
// Equality is fuzzy, so entries are bucketed by BucketKey and resolved with
// a linear scan inside the bucket; the first equal entry in insertion order
// wins. A secondary ticker index makes ticker equality hold even when two
// listings of the same ticker carry unrelated names. Matching is against the
// stored (merged) record, so a ticker back-filled by enrichment takes part in
// later comparisons. Merge keeps the name, so an entry never changes bucket.
type HoldingIndex struct {
	entries []*indexEntry
	buckets map[string][]*indexEntry
	tickers map[string]*indexEntry
}

type indexEntry struct {
	value  Holding
	weight float64
}

// NewHoldingIndex creates an empty HoldingIndex
func NewHoldingIndex() *HoldingIndex {
	return &HoldingIndex{
		buckets: make(map[string][]*indexEntry),
		tickers: make(map[string]*indexEntry),
	}
}

// find returns the entry equal to h, or nil
func (idx *HoldingIndex) find(h Holding) *indexEntry {
	if t := h.TickerKey(); t != "" {
		if e, ok := idx.tickers[t]; ok {
			return e
		}
	}
	for _, e := range idx.buckets[h.BucketKey()] {
		if Equal(e.value, h) {
			return e
		}
	}
	return nil
}

// Get returns the stored value and weight of the entry equal to h
func (idx *HoldingIndex) Get(h Holding) (Holding, float64, bool) {
	e := idx.find(h)
	if e == nil {
		return Holding{}, 0, false
	}
	return e.value, e.weight, true
}

// Put stores value and weight under the entry equal to key, creating it if
// absent. The new entry is bucketed by the name of value.
func (idx *HoldingIndex) Put(key, value Holding, weight float64) {
	e := idx.find(key)
	if e == nil {
		e = &indexEntry{}
		idx.entries = append(idx.entries, e)
		bk := value.BucketKey()
		idx.buckets[bk] = append(idx.buckets[bk], e)
	}
	e.value = value
	e.weight = weight
	idx.indexTicker(e, key)
	idx.indexTicker(e, value)
}

func (idx *HoldingIndex) indexTicker(e *indexEntry, h Holding) {
	t := h.TickerKey()
	if t == "" {
		return
	}
	if _, taken := idx.tickers[t]; !taken {
		idx.tickers[t] = e
	}
}

// Len returns the number of distinct entries
func (idx *HoldingIndex) Len() int {
	return len(idx.entries)
}

// Values returns the stored holdings with their weights in index order
func (idx *HoldingIndex) Values() []WeightedHolding {
	out := make([]WeightedHolding, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = WeightedHolding{Holding: e.value, Weight: e.weight}
	}
	return out
}

// reorder replaces the iteration order. Buckets keep insertion order so the
// entry that wins an ambiguous match does not depend on sorting.
func (idx *HoldingIndex) reorder(entries []*indexEntry) {
	idx.entries = entries
}
