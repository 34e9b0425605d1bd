package cache_test

import (
	"testing"
	"time"

	"github.com/epeers/holdings/internal/cache"
	"github.com/epeers/holdings/internal/models"
)

func TestFundCache_GetSet(t *testing.T) {
	c := cache.NewFundCache(time.Hour)

	if _, ok := c.Get("ticker:VT"); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	inst := models.NewSingleAsset("Cash", models.WithType(models.HoldingTypeCash))
	c.Set("ticker:VT", inst)

	got, ok := c.Get("ticker:VT")
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if got.Name() != "Cash" {
		t.Errorf("expected the cached instrument, got %q", got.Name())
	}
	if _, ok := c.Get("ticker:VXUS"); ok {
		t.Error("expected other keys to miss")
	}
}

func TestFundCache_Expired(t *testing.T) {
	// A negative TTL expires every entry immediately.
	c := cache.NewFundCache(-time.Second)
	c.Set("ticker:VT", models.NewSingleAsset("Cash"))

	if _, ok := c.Get("ticker:VT"); ok {
		t.Error("expected an expired entry to miss")
	}
}

func TestFundCache_ExpiredEntriesAreRemoved(t *testing.T) {
	c := cache.NewFundCache(-time.Second)
	c.Set("ticker:VT", models.NewSingleAsset("Cash"))
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry after Set, got %d", c.Len())
	}

	if _, ok := c.Get("ticker:VT"); ok {
		t.Fatal("expected an expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected Get to remove the expired entry, got %d entries", c.Len())
	}

	// Set sweeps entries that were never read again.
	c.Set("ticker:VXUS", models.NewSingleAsset("Cash"))
	c.Set("ticker:BND", models.NewSingleAsset("Cash"))
	if c.Len() != 1 {
		t.Errorf("expected only the latest entry to survive the sweep, got %d", c.Len())
	}
}
