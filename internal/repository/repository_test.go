package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/epeers/holdings/internal/database"
	"github.com/epeers/holdings/internal/models"
	"github.com/epeers/holdings/internal/repository"
)

// getTestDB connects to PG_URL, skipping the test when it is not set
func getTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		t.Skip("PG_URL environment variable not set, skipping integration test")
	}

	db, err := database.New(context.Background(), pgURL)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestMarketCacheRepository_SaveLoad(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	repo := repository.NewMarketCacheRepository(db.Pool)

	const segment = "TEST_SEGMENT"
	t.Cleanup(func() {
		db.Pool.Exec(context.Background(), `DELETE FROM market_segment WHERE name = $1`, segment)
	})

	last, err := repo.LastRefresh(ctx, segment)
	if err != nil {
		t.Fatalf("LastRefresh failed: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("expected zero time for an unsaved segment, got %s", last)
	}

	holdings := []models.Holding{
		models.NewHolding("Coca-Cola Co", models.WithTicker("KO"), models.WithCountry("US"), models.WithSector("Consumer Staples"),
			models.WithIndustry("Beverages"), models.WithCurrency("USD"), models.WithExchange("NYSE"), models.WithType(models.HoldingTypeStock)),
		models.NewHolding("Berkshire Hathaway Inc., Class B", models.WithTicker("BRK.B")),
	}
	refreshedAt := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	if err := repo.Save(ctx, segment, holdings, refreshedAt); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	last, err = repo.LastRefresh(ctx, segment)
	if err != nil {
		t.Fatalf("LastRefresh failed: %v", err)
	}
	if !last.Equal(refreshedAt) {
		t.Errorf("expected %s, got %s", refreshedAt, last)
	}

	loaded, err := repo.Load(ctx, segment)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 || loaded[0] != holdings[0] || loaded[1] != holdings[1] {
		t.Errorf("expected %+v, got %+v", holdings, loaded)
	}

	// A second save replaces the segment.
	if err := repo.Save(ctx, segment, holdings[1:], refreshedAt.Add(time.Hour)); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	loaded, err = repo.Load(ctx, segment)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Ticker != "BRK.B" {
		t.Errorf("expected only BRK.B after replace, got %+v", loaded)
	}
}

func TestFundRepository_UpsertHoldings(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	repo := repository.NewFundRepository(db.Pool)

	const fund = "TSTFND"
	t.Cleanup(func() {
		db.Pool.Exec(context.Background(), `DELETE FROM fund_pull WHERE fund = $1`, fund)
	})

	pr, err := repo.GetPullRange(ctx, fund)
	if err != nil {
		t.Fatalf("GetPullRange failed: %v", err)
	}
	if pr != nil {
		t.Fatalf("expected no pull range for an unknown fund, got %+v", pr)
	}

	holdings := []models.WeightedHolding{
		{Holding: models.NewHolding("NVIDIA Corp", models.WithTicker("NVDA"), models.WithSector("Technology")), Weight: 0.6},
		{Holding: models.NewHolding("Cash", models.WithSector("Cash"), models.WithType(models.HoldingTypeCash)), Weight: 0.4},
	}
	nextUpdate := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	if err := repo.UpsertHoldings(ctx, fund, holdings, nextUpdate); err != nil {
		t.Fatalf("UpsertHoldings failed: %v", err)
	}

	pr, err = repo.GetPullRange(ctx, fund)
	if err != nil || pr == nil {
		t.Fatalf("expected a pull range, got %+v (err %v)", pr, err)
	}
	if !pr.NextUpdate.Equal(nextUpdate) {
		t.Errorf("expected next update %s, got %s", nextUpdate, pr.NextUpdate)
	}

	loaded, err := repo.GetHoldings(ctx, fund)
	if err != nil {
		t.Fatalf("GetHoldings failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(loaded))
	}
	if loaded[0].Holding.Ticker != "NVDA" || loaded[0].Weight != 0.6 {
		t.Errorf("unexpected first holding: %+v", loaded[0])
	}
	if loaded[1].Holding.Type != models.HoldingTypeCash {
		t.Errorf("expected cash type to survive the round trip, got %q", loaded[1].Holding.Type)
	}
}
