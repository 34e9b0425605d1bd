package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/holdings/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MarketCacheRepository persists reference market segments in Postgres.
// It satisfies market.Store.
type MarketCacheRepository struct {
	pool *pgxpool.Pool
}

// NewMarketCacheRepository creates a new MarketCacheRepository
func NewMarketCacheRepository(pool *pgxpool.Pool) *MarketCacheRepository {
	return &MarketCacheRepository{pool: pool}
}

// LastRefresh returns when a segment was last saved, or the zero time
func (r *MarketCacheRepository) LastRefresh(ctx context.Context, segment string) (time.Time, error) {
	query := `SELECT refreshed_at FROM market_segment WHERE name = $1`

	var refreshedAt time.Time
	err := r.pool.QueryRow(ctx, query, segment).Scan(&refreshedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get refresh time: %w", err)
	}
	return refreshedAt, nil
}

// Load retrieves the reference holdings of a segment in saved order
func (r *MarketCacheRepository) Load(ctx context.Context, segment string) ([]models.Holding, error) {
	query := `
		SELECT name, ticker, country, sector, industry, currency, exchange, type
		FROM market_holding
		WHERE segment = $1
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query, segment)
	if err != nil {
		return nil, fmt.Errorf("failed to query market holdings: %w", err)
	}
	defer rows.Close()

	holdings := []models.Holding{}
	for rows.Next() {
		var name, ticker, country, sector, industry, currency, exchange, typ string
		if err := rows.Scan(&name, &ticker, &country, &sector, &industry, &currency, &exchange, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan market holding: %w", err)
		}
		holdings = append(holdings, models.NewHolding(name,
			models.WithTicker(ticker),
			models.WithCountry(country),
			models.WithSector(sector),
			models.WithIndustry(industry),
			models.WithCurrency(currency),
			models.WithExchange(exchange),
			models.WithType(models.ParseHoldingType(typ)),
		))
	}
	return holdings, rows.Err()
}

// Save replaces a segment's holdings in one transaction. A transaction-level
// advisory lock on the segment name serializes concurrent refreshes.
func (r *MarketCacheRepository) Save(ctx context.Context, segment string, holdings []models.Holding, refreshedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, segment); err != nil {
		return fmt.Errorf("failed to lock segment: %w", err)
	}

	upsertSegment := `
		INSERT INTO market_segment (name, refreshed_at)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET refreshed_at = EXCLUDED.refreshed_at
	`
	if _, err := tx.Exec(ctx, upsertSegment, segment, refreshedAt.UTC()); err != nil {
		return fmt.Errorf("failed to upsert segment: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM market_holding WHERE segment = $1`, segment); err != nil {
		return fmt.Errorf("failed to delete market holdings: %w", err)
	}

	insertQuery := `
		INSERT INTO market_holding (segment, position, name, ticker, country, sector, industry, currency, exchange, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	batch := &pgx.Batch{}
	for i, h := range holdings {
		batch.Queue(insertQuery, segment, i, h.Name, h.Ticker, h.Country, h.Sector, h.Industry, h.Currency, h.Exchange, string(h.Type))
	}
	br := tx.SendBatch(ctx, batch)
	for range holdings {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert market holding: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	return tx.Commit(ctx)
}
