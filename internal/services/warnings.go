package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/epeers/holdings/internal/models"
	log "github.com/sirupsen/logrus"
)

type warningContextKey struct{}

// WarningCollector gathers the non-fatal issues of one aggregation or fund
// upload so they can be returned alongside the result.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []models.Warning
}

// NewWarningContext attaches an empty collector to ctx.
func NewWarningContext(ctx context.Context) (context.Context, *WarningCollector) {
	wc := &WarningCollector{}
	return context.WithValue(ctx, warningContextKey{}, wc), wc
}

// AddWarning records w on the collector in ctx, if there is one.
func AddWarning(ctx context.Context, w models.Warning) {
	wc, ok := ctx.Value(warningContextKey{}).(*WarningCollector)
	if !ok || wc == nil {
		return
	}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.warnings = append(wc.warnings, w)
}

// Warn logs a formatted warning and records it on the collector in ctx.
func Warn(ctx context.Context, code models.WarningCode, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.WithField("code", code).Warn(msg)
	AddWarning(ctx, models.Warning{Code: code, Message: msg})
}

// GetWarnings returns a copy of the warnings in the order they were added.
func (wc *WarningCollector) GetWarnings() []models.Warning {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return slices.Clone(wc.warnings)
}

// Count reports how many warnings carry code.
func (wc *WarningCollector) Count(code models.WarningCode) int {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	n := 0
	for _, w := range wc.warnings {
		if w.Code == code {
			n++
		}
	}
	return n
}
