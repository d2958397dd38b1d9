//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// lookupKey runs a single-key dimension query. found=false on no rows.
func (s *Store) lookupKey(ctx context.Context, sql string, args ...any) (int64, bool, error) {
	var key int64
	err := s.conn().QueryRow(ctx, sql, args...).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("dimension lookup: %w", err)
	}
	return key, true, nil
}

// TimeKeyByDate resolves a calendar date to its time dimension key.
func (s *Store) TimeKeyByDate(ctx context.Context, date time.Time) (int64, bool, error) {
	return s.lookupKey(ctx, `
        SELECT time_key FROM dim_time WHERE calendar_date = $1
    `, date)
}

// ProductByEdition resolves an edition id to the current product version
// and the author and vendor keys recorded on it.
func (s *Store) ProductByEdition(ctx context.Context, editionID string) (ProductKeys, bool, error) {
	var keys ProductKeys
	err := s.conn().QueryRow(ctx, `
        SELECT product_key, author_key, vendor_key
        FROM dim_product
        WHERE edition_id = $1 AND is_current
    `, editionID).Scan(&keys.Product, &keys.Author, &keys.Vendor)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProductKeys{}, false, nil
	}
	if err != nil {
		return ProductKeys{}, false, fmt.Errorf("product lookup: %w", err)
	}
	return keys, true, nil
}

// DistributionCenterByStation resolves a station code to the current
// distribution center version and its vendor.
func (s *Store) DistributionCenterByStation(ctx context.Context, code string) (StationKeys, bool, error) {
	var keys StationKeys
	err := s.conn().QueryRow(ctx, `
        SELECT dc_key, vendor_key
        FROM dim_distribution_center
        WHERE station_code = $1 AND is_current
    `, code).Scan(&keys.DistributionCenter, &keys.Vendor)
	if errors.Is(err, pgx.ErrNoRows) {
		return StationKeys{}, false, nil
	}
	if err != nil {
		return StationKeys{}, false, fmt.Errorf("distribution center lookup: %w", err)
	}
	return keys, true, nil
}

// FirstCurrentDistributionCenter returns the lowest-keyed current
// distribution center. The sales feed has no station code, so this backs
// the default resolution policy for sales rows.
func (s *Store) FirstCurrentDistributionCenter(ctx context.Context) (int64, bool, error) {
	return s.lookupKey(ctx, `
        SELECT dc_key FROM dim_distribution_center
        WHERE is_current AND dc_key > 0
        ORDER BY dc_key
        LIMIT 1
    `)
}

// ChannelKeyByCode resolves a channel code to its current dimension key.
func (s *Store) ChannelKeyByCode(ctx context.Context, code string) (int64, bool, error) {
	return s.lookupKey(ctx, `
        SELECT channel_key FROM dim_channel
        WHERE channel_code = $1 AND is_current
    `, code)
}

// ProductTypeKeyByName resolves a product type name, case-insensitively,
// to its current dimension key. Callers normalize hyphen variants first.
func (s *Store) ProductTypeKeyByName(ctx context.Context, name string) (int64, bool, error) {
	return s.lookupKey(ctx, `
        SELECT product_type_key FROM dim_product_type
        WHERE LOWER(product_type_name) = LOWER($1) AND is_current
    `, name)
}

// CurrencyKeyByCode resolves an ISO currency code to its current
// dimension key.
func (s *Store) CurrencyKeyByCode(ctx context.Context, code string) (int64, bool, error) {
	return s.lookupKey(ctx, `
        SELECT currency_key FROM dim_currency
        WHERE currency_code = $1 AND is_current
    `, code)
}

// RateFor returns the stored exchange rate for a currency on a day.
// found=false is a defined, non-fatal condition the provider falls back on.
func (s *Store) RateFor(ctx context.Context, currencyKey, timeKey int64) (decimal.Decimal, bool, error) {
	var rate decimal.Decimal
	err := s.conn().QueryRow(ctx, `
        SELECT rate FROM exchange_rates
        WHERE currency_key = $1 AND time_key = $2
    `, currencyKey, timeKey).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("exchange rate lookup: %w", err)
	}
	return rate, true, nil
}

// InsertTimeRows bulk-inserts calendar rows, skipping days already present.
func (s *Store) InsertTimeRows(ctx context.Context, rows []TimeDimRow) (int64, error) {
	var inserted int64
	for _, r := range rows {
		tag, err := s.conn().Exec(ctx, `
            INSERT INTO dim_time (time_key, calendar_date, day_of_week, day_name,
                day_of_month, month, month_name, quarter, year, week_of_year,
                is_weekend, is_holiday)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
            ON CONFLICT (time_key) DO NOTHING
        `, r.TimeKey, r.CalendarDate, r.DayOfWeek, r.DayName, r.DayOfMonth,
			r.Month, r.MonthName, r.Quarter, r.Year, r.WeekOfYear,
			r.IsWeekend, r.IsHoliday)
		if err != nil {
			return inserted, fmt.Errorf("insert dim_time %d: %w", r.TimeKey, err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}
