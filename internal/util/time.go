package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// RefreshDue reports whether data last refreshed at lastRefresh must be
// refreshed at now. A zero lastRefresh means the data was never fetched.
// A lastRefresh in the future is treated as due, since the clock that wrote
// it cannot be trusted.
func RefreshDue(lastRefresh time.Time, ttl time.Duration, now time.Time) bool {
	if lastRefresh.IsZero() {
		return true
	}
	if lastRefresh.After(now) {
		log.Warnf("Refresh time %s is in the future, forcing refresh", lastRefresh.Format(time.RFC3339))
		return true
	}
	return now.Sub(lastRefresh) > ttl
}
