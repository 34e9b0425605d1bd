package market

import (
	"context"
	"fmt"
	"sync"

	"github.com/epeers/holdings/internal/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// fetchAll downloads the reference record of every ticker of a segment with
// at most workers requests in flight. A failed ticker is counted and skipped;
// only a failure to list the tickers or a cancelled ctx aborts the refresh.
func fetchAll(ctx context.Context, source TickerSource, segment string, workers int) ([]models.Holding, int, error) {
	tickers, err := source.Tickers(ctx, segment)
	if err != nil {
		return nil, 0, fmt.Errorf("listing tickers: %w", err)
	}
	log.Infof("Market %s: fetching %d tickers with %d workers", segment, len(tickers), workers)

	var (
		mu     sync.Mutex
		found  = make([]*models.Holding, len(tickers))
		missed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, ticker := range tickers {
		g.Go(func() error {
			h, err := source.Lookup(gctx, ticker)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Debugf("Market %s: lookup %s failed: %v", segment, ticker, err)
				mu.Lock()
				missed++
				mu.Unlock()
				return nil
			}
			// each worker owns its slot
			found[i] = h
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, missed, err
	}

	// keep listing order so duplicate resolution is deterministic
	holdings := make([]models.Holding, 0, len(tickers))
	for _, h := range found {
		if h != nil {
			holdings = append(holdings, *h)
		}
	}
	return holdings, missed, nil
}
