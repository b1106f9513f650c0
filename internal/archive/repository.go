package archive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// Repository mirrors provider data into PostgreSQL so history and NAV
// survive provider outages. Quotes and valuations are moment-in-time
// and are not archived.
type Repository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewRepository creates an archive repository on an existing pool.
func NewRepository(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{pool: pool, logger: log}
}

// Migrate creates the archive schema and tables when missing. Safe to
// run on every startup.
func (r *Repository) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS archive`,
		`CREATE TABLE IF NOT EXISTS archive.weekly_bars (
			instrument_id TEXT NOT NULL,
			bar_date      TEXT NOT NULL,
			open_price    DOUBLE PRECISION NOT NULL,
			high_price    DOUBLE PRECISION NOT NULL,
			low_price     DOUBLE PRECISION NOT NULL,
			close_price   DOUBLE PRECISION NOT NULL,
			volume        BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (instrument_id, bar_date)
		)`,
		`CREATE TABLE IF NOT EXISTS archive.nav_history (
			instrument_id TEXT NOT NULL,
			nav_date      TEXT NOT NULL,
			unit_nav      DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (instrument_id, nav_date)
		)`,
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("archive migration failed: %w", err)
		}
	}

	r.logger.Debug("Archive schema ready")
	return nil
}

// SaveBars upserts weekly bars for an instrument.
func (r *Repository) SaveBars(ctx context.Context, instrumentID string, bars []contracts.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO archive.weekly_bars (instrument_id, bar_date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (instrument_id, bar_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`

	for _, bar := range bars {
		_, err := r.pool.Exec(ctx, query,
			instrumentID, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
		)
		if err != nil {
			return fmt.Errorf("save bar %s failed: %w", bar.Date, err)
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"instrument": instrumentID,
		"bars":       len(bars),
	}).Debug("Archived weekly bars")
	return nil
}

// LoadBars returns the archived weekly bars, oldest first.
func (r *Repository) LoadBars(ctx context.Context, instrumentID string) ([]contracts.Bar, error) {
	query := `
		SELECT bar_date, open_price, high_price, low_price, close_price, volume
		FROM archive.weekly_bars
		WHERE instrument_id = $1
		ORDER BY bar_date ASC
	`

	rows, err := r.pool.Query(ctx, query, instrumentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []contracts.Bar
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// SaveNav upserts NAV history for an instrument.
func (r *Repository) SaveNav(ctx context.Context, instrumentID string, nav contracts.NavMap) error {
	if len(nav) == 0 {
		return nil
	}

	query := `
		INSERT INTO archive.nav_history (instrument_id, nav_date, unit_nav)
		VALUES ($1, $2, $3)
		ON CONFLICT (instrument_id, nav_date) DO UPDATE SET
			unit_nav = EXCLUDED.unit_nav
	`

	for date, value := range nav {
		if _, err := r.pool.Exec(ctx, query, instrumentID, date, value); err != nil {
			return fmt.Errorf("save nav %s failed: %w", date, err)
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"instrument": instrumentID,
		"days":       len(nav),
	}).Debug("Archived NAV history")
	return nil
}

// LoadNav returns the archived NAV history keyed by date.
func (r *Repository) LoadNav(ctx context.Context, instrumentID string) (contracts.NavMap, error) {
	query := `
		SELECT nav_date, unit_nav
		FROM archive.nav_history
		WHERE instrument_id = $1
	`

	rows, err := r.pool.Query(ctx, query, instrumentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nav := make(contracts.NavMap)
	for rows.Next() {
		var date string
		var value float64
		if err := rows.Scan(&date, &value); err != nil {
			return nil, err
		}
		nav[date] = value
	}
	return nav, rows.Err()
}
