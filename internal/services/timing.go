package services

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// TrackTime logs how long op took at debug level. Call it deferred:
//
//	defer TrackTime("Flatten", time.Now())
func TrackTime(op string, start time.Time) {
	log.WithFields(log.Fields{
		"op":         op,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Debug("timing")
}
