package util_test

import (
	"testing"
	"time"

	"github.com/epeers/holdings/internal/util"
)

func TestRefreshDue(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	ttl := 31 * 24 * time.Hour

	tests := []struct {
		name string
		last time.Time
		want bool
	}{
		{"never refreshed", time.Time{}, true},
		{"fresh", now.Add(-24 * time.Hour), false},
		{"exactly at ttl", now.Add(-ttl), false},
		{"stale", now.Add(-ttl - time.Second), true},
		{"future timestamp", now.Add(time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := util.RefreshDue(tt.last, ttl, now); got != tt.want {
				t.Errorf("RefreshDue(%s) = %v, want %v", tt.last, got, tt.want)
			}
		})
	}
}
