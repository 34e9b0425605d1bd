// Package market implements the reference market index: per-segment
// registries of authoritative holding records used to enrich sparse
// holdings with country, sector, currency and exchange.
package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/epeers/holdings/internal/models"
	"github.com/epeers/holdings/internal/util"
	log "github.com/sirupsen/logrus"
)

// DefaultTTL is how long a cached segment is served before a refresh
const DefaultTTL = 31 * 24 * time.Hour

// DefaultWorkers bounds concurrent per-ticker requests during a refresh
const DefaultWorkers = 8

// State is the lifecycle state of an exchange segment
type State int

const (
	StateNeedsRefresh State = iota
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateNeedsRefresh:
		return "needs_refresh"
	case StatePopulated:
		return "populated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Segment is one registry of reference holdings
type Segment interface {
	Name() string
	Lookup(h models.Holding) (models.Holding, bool)
}

// TickerSource supplies the ticker universe of a segment and the reference
// record of each ticker. Lookup returns nil, nil for tickers it has no
// record for.
type TickerSource interface {
	Tickers(ctx context.Context, segment string) ([]string, error)
	Lookup(ctx context.Context, ticker string) (*models.Holding, error)
}

// SegmentConfig tunes an exchange segment
type SegmentConfig struct {
	TTL     time.Duration
	Workers int
}

// ExchangeSegment is the reference registry of one exchange, refreshed from
// a TickerSource when its cached copy is older than the TTL.
// Lookups are safe while a reload runs; a reload swaps the whole index.
type ExchangeSegment struct {
	name    string
	ttl     time.Duration
	workers int
	source  TickerSource
	store   Store
	now     func() time.Time

	// loadMu serializes Load; mu guards the fields below it
	loadMu sync.Mutex
	mu     sync.RWMutex
	state  State
	index  *models.HoldingIndex
	missed int
}

// NewExchangeSegment creates an unloaded segment
func NewExchangeSegment(name string, source TickerSource, store Store, cfg SegmentConfig) *ExchangeSegment {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &ExchangeSegment{
		name:    name,
		ttl:     cfg.TTL,
		workers: cfg.Workers,
		source:  source,
		store:   store,
		now:     time.Now,
		state:   StateNeedsRefresh,
		index:   models.NewHoldingIndex(),
	}
}

func (s *ExchangeSegment) Name() string { return s.name }

// State returns the current lifecycle state
func (s *ExchangeSegment) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Missed returns how many tickers failed during the last refresh
func (s *ExchangeSegment) Missed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.missed
}

// Len returns the number of reference holdings
func (s *ExchangeSegment) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Len()
}

// Load populates the segment from the store, refreshing from the source
// first when the cached copy is missing or stale. A failed reload keeps the
// previously loaded index.
func (s *ExchangeSegment) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	last, err := s.store.LastRefresh(ctx, s.name)
	if err != nil {
		log.Warnf("Market %s: reading refresh time failed, refreshing: %v", s.name, err)
		last = time.Time{}
	}

	var holdings []models.Holding
	if !util.RefreshDue(last, s.ttl, s.now()) {
		holdings, err = s.store.Load(ctx, s.name)
		if err != nil {
			log.Warnf("Market %s: loading cache failed, refreshing: %v", s.name, err)
		} else {
			log.Infof("Market %s: loaded %d holdings from cache", s.name, len(holdings))
		}
	}

	if holdings == nil {
		holdings, err = s.refresh(ctx)
		if err != nil {
			return err
		}
	}

	s.populate(holdings)
	return nil
}

func (s *ExchangeSegment) refresh(ctx context.Context) ([]models.Holding, error) {
	start := time.Now()
	holdings, missed, err := fetchAll(ctx, s.source, s.name, s.workers)
	if err != nil {
		return nil, fmt.Errorf("market %s: refresh failed: %w", s.name, err)
	}
	s.mu.Lock()
	s.missed = missed
	s.mu.Unlock()
	log.Infof("Market %s: refreshed %d holdings in %d ms", s.name, len(holdings), time.Since(start).Milliseconds())
	if missed > 0 {
		log.Warnf("Market %s: %d tickers could not be fetched and were skipped", s.name, missed)
	}

	if err := s.store.Save(ctx, s.name, holdings, s.now()); err != nil {
		// The in-memory index is still usable; the next start refreshes again.
		log.Errorf("Market %s: saving cache failed: %v", s.name, err)
	}
	return holdings, nil
}

// populate indexes holdings; the first record of a duplicated security wins
func (s *ExchangeSegment) populate(holdings []models.Holding) {
	index := models.NewHoldingIndex()
	for _, h := range holdings {
		if _, _, exists := index.Get(h); exists {
			continue
		}
		index.Put(h, h, 0)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = index
	s.state = StatePopulated
}

// Lookup returns the reference record equal to h. An unloaded segment
// matches nothing.
func (s *ExchangeSegment) Lookup(h models.Holding) (models.Holding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StatePopulated {
		return models.Holding{}, false
	}
	ref, _, ok := s.index.Get(h)
	return ref, ok
}
