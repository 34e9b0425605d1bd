package market

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// DefaultRefreshSchedule checks the exchange segments once a day. A segment
// only refetches when its cached copy has outlived the TTL.
const DefaultRefreshSchedule = "@daily"

// Refresher reloads exchange segments on a cron schedule while the server
// runs, so a long-lived process picks up refreshed reference data.
type Refresher struct {
	cron     *cron.Cron
	segments []*ExchangeSegment
	timeout  time.Duration
}

// NewRefresher registers a reload of segments on schedule (standard cron
// syntax or descriptors such as "@daily" and "@every 6h").
func NewRefresher(schedule string, segments ...*ExchangeSegment) (*Refresher, error) {
	logger := cron.PrintfLogger(log.StandardLogger())
	r := &Refresher{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(logger))),
		segments: segments,
		timeout:  time.Hour,
	}

	if _, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.RunNow(ctx)
	}); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}

	log.Infof("Market refresh scheduled %q for %d segments", schedule, len(segments))
	return r, nil
}

// Start runs the schedule in the background
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running reload to finish
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// RunNow reloads every segment in turn. A segment that fails keeps serving
// its previous index.
func (r *Refresher) RunNow(ctx context.Context) {
	for _, seg := range r.segments {
		if err := seg.Load(ctx); err != nil {
			log.Errorf("Market %s: scheduled reload failed: %v", seg.Name(), err)
		}
	}
}
