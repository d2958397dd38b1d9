//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package etl

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/inkwave-data/inkwave-warehouse/internal/logging"
)

// RateStore looks up stored exchange rates by dimension keys.
// found=false is a defined outcome, not an error.
type RateStore interface {
	RateFor(ctx context.Context, currencyKey, timeKey int64) (decimal.Decimal, bool, error)
}

// Hardcoded to-GBP fallbacks for currencies the rate feed is known to
// drop days for. Unlisted currencies fall back to parity.
var fallbackRates = map[string]decimal.Decimal{
	"USD": decimal.RequireFromString("0.79"),
	"EUR": decimal.RequireFromString("0.85"),
}

var parityRate = decimal.NewFromInt(1)

// RateProvider resolves the exchange rate for a transaction day. Stored
// rates always win, whatever their value; the fallback table applies only
// when the store has no row at all for the currency and day.
type RateProvider struct {
	store RateStore
	log   zerolog.Logger
}

// NewRateProvider creates a provider over the given store.
func NewRateProvider(store RateStore) *RateProvider {
	return &RateProvider{
		store: store,
		log:   logging.Component("rates"),
	}
}

// Rate returns the base-currency conversion rate for a currency on a day.
// The error is infrastructural only; a missing rate never fails a record.
func (p *RateProvider) Rate(ctx context.Context, currencyKey int64, currencyCode string, timeKey int64) (decimal.Decimal, error) {
	rate, found, err := p.store.RateFor(ctx, currencyKey, timeKey)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if found {
		return rate, nil
	}

	fallback, ok := fallbackRates[currencyCode]
	if !ok {
		fallback = parityRate
	}
	p.log.Warn().
		Str("currency", currencyCode).
		Int64("time_key", timeKey).
		Str("rate", fallback.String()).
		Msg("No stored exchange rate; using fallback")
	return fallback, nil
}
