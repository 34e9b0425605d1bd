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

// FundRepository caches fund constituents fetched from remote sources
type FundRepository struct {
	pool *pgxpool.Pool
}

// NewFundRepository creates a new FundRepository
func NewFundRepository(pool *pgxpool.Pool) *FundRepository {
	return &FundRepository{pool: pool}
}

// FundPullRange represents when a fund was last fetched and when it is next due
type FundPullRange struct {
	Fund       string
	PullDate   time.Time
	NextUpdate time.Time
}

// GetPullRange returns the pull range for a fund, or nil if it was never stored
func (r *FundRepository) GetPullRange(ctx context.Context, fund string) (*FundPullRange, error) {
	query := `
		SELECT fund, pull_date, next_update
		FROM fund_pull
		WHERE fund = $1
	`
	var pr FundPullRange
	err := r.pool.QueryRow(ctx, query, fund).Scan(&pr.Fund, &pr.PullDate, &pr.NextUpdate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund pull range: %w", err)
	}
	return &pr, nil
}

// GetHoldings retrieves the stored constituents of a fund in saved order
func (r *FundRepository) GetHoldings(ctx context.Context, fund string) ([]models.WeightedHolding, error) {
	query := `
		SELECT name, ticker, country, sector, type, weight
		FROM fund_holding
		WHERE fund = $1
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query, fund)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund holdings: %w", err)
	}
	defer rows.Close()

	var result []models.WeightedHolding
	for rows.Next() {
		var name, ticker, country, sector, typ string
		var weight float64
		if err := rows.Scan(&name, &ticker, &country, &sector, &typ, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan fund holding: %w", err)
		}
		result = append(result, models.WeightedHolding{
			Holding: models.NewHolding(name,
				models.WithTicker(ticker),
				models.WithCountry(country),
				models.WithSector(sector),
				models.WithType(models.ParseHoldingType(typ)),
			),
			Weight: weight,
		})
	}
	return result, rows.Err()
}

// UpsertHoldings replaces the stored constituents of a fund and records the
// pull range
func (r *FundRepository) UpsertHoldings(ctx context.Context, fund string, holdings []models.WeightedHolding, nextUpdate time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	pullRangeQuery := `
		INSERT INTO fund_pull (fund, pull_date, next_update)
		VALUES ($1, $2, $3)
		ON CONFLICT (fund) DO UPDATE SET
			pull_date = EXCLUDED.pull_date,
			next_update = EXCLUDED.next_update
	`
	if _, err := tx.Exec(ctx, pullRangeQuery, fund, time.Now().UTC(), nextUpdate); err != nil {
		return fmt.Errorf("failed to upsert fund pull range: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM fund_holding WHERE fund = $1`, fund); err != nil {
		return fmt.Errorf("failed to delete existing fund holdings: %w", err)
	}

	insertQuery := `
		INSERT INTO fund_holding (fund, position, name, ticker, country, sector, type, weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i, wh := range holdings {
		h := wh.Holding
		if _, err := tx.Exec(ctx, insertQuery, fund, i, h.Name, h.Ticker, h.Country, h.Sector, string(h.Type), wh.Weight); err != nil {
			return fmt.Errorf("failed to insert fund holding: %w", err)
		}
	}

	return tx.Commit(ctx)
}
