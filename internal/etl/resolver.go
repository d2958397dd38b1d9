//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package etl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkwave-data/inkwave-warehouse/internal/logging"
	"github.com/inkwave-data/inkwave-warehouse/internal/warehouse"
)

// ErrNoTimeKey marks a staging row whose date has no calendar entry. The
// time key anchors every fact, so these rows are skipped, not loaded
// against the unknown member.
var ErrNoTimeKey = errors.New("no time dimension entry for date")

// ErrNoStation marks a daily-operations row whose station code has no
// current distribution center. Vendor rides along with the station at
// daily grain, so the row cannot be placed and is skipped.
var ErrNoStation = errors.New("no current distribution center for station")

// DimensionStore is the read surface the resolver needs. *warehouse.Store
// satisfies it.
type DimensionStore interface {
	TimeKeyByDate(ctx context.Context, date time.Time) (int64, bool, error)
	ProductByEdition(ctx context.Context, editionID string) (warehouse.ProductKeys, bool, error)
	DistributionCenterByStation(ctx context.Context, code string) (warehouse.StationKeys, bool, error)
	FirstCurrentDistributionCenter(ctx context.Context) (int64, bool, error)
	ChannelKeyByCode(ctx context.Context, code string) (int64, bool, error)
	ProductTypeKeyByName(ctx context.Context, name string) (int64, bool, error)
	CurrencyKeyByCode(ctx context.Context, code string) (int64, bool, error)
}

// DCPolicy picks the distribution center key for a sales row. The sales
// feed carries no station code, so the assignment is a policy choice.
type DCPolicy func(ctx context.Context, store DimensionStore) (int64, bool, error)

// FirstCurrentDCPolicy assigns the lowest-keyed current distribution
// center. This is the default and, for now, only configured policy.
func FirstCurrentDCPolicy(ctx context.Context, store DimensionStore) (int64, bool, error) {
	return store.FirstCurrentDistributionCenter(ctx)
}

// SalesKeys is the full key set of one sales fact.
type SalesKeys struct {
	Time               int64
	Product            int64
	Author             int64
	Vendor             int64
	DistributionCenter int64
	Channel            int64
	ProductType        int64
	Currency           int64
}

// DailyKeys is the full key set of one daily-operations fact.
type DailyKeys struct {
	Time               int64
	DistributionCenter int64
	Vendor             int64
	ProductType        int64
}

// Resolver maps staging natural keys onto current dimension surrogate
// keys. A missing dimension member resolves to the unknown sentinel with
// a warning; only a missing calendar day is fatal for the record.
type Resolver struct {
	store    DimensionStore
	dcPolicy DCPolicy
	log      zerolog.Logger
}

// NewResolver creates a resolver with the first-current distribution
// center policy.
func NewResolver(store DimensionStore) *Resolver {
	return &Resolver{
		store:    store,
		dcPolicy: FirstCurrentDCPolicy,
		log:      logging.Component("resolver"),
	}
}

// WithDCPolicy overrides the sales distribution center policy.
func (r *Resolver) WithDCPolicy(policy DCPolicy) *Resolver {
	r.dcPolicy = policy
	return r
}

// NormalizeProductType prepares a feed product type name for lookup. The
// upstream export substitutes U+2011 (non-breaking hyphen) for plain
// hyphens in some type names; case folding happens in the lookup itself.
func NormalizeProductType(name string) string {
	name = strings.TrimSpace(name)
	return strings.ReplaceAll(name, "‑", "-")
}

// ResolveSales resolves the dimension keys for one staging sales row.
func (r *Resolver) ResolveSales(ctx context.Context, rec warehouse.StagingSalesRecord) (SalesKeys, error) {
	keys := SalesKeys{
		Product:            warehouse.UnknownKey,
		Author:             warehouse.UnknownKey,
		Vendor:             warehouse.UnknownKey,
		DistributionCenter: warehouse.UnknownKey,
		Channel:            warehouse.UnknownKey,
		ProductType:        warehouse.UnknownKey,
		Currency:           warehouse.UnknownKey,
	}
	log := r.log.With().Str("sale_number", rec.SaleNumber).Logger()

	timeKey, found, err := r.store.TimeKeyByDate(ctx, rec.SaleDate)
	if err != nil {
		return SalesKeys{}, err
	}
	if !found {
		return SalesKeys{}, fmt.Errorf("%w: %s", ErrNoTimeKey,
			rec.SaleDate.Format("2006-01-02"))
	}
	keys.Time = timeKey

	product, found, err := r.store.ProductByEdition(ctx, rec.EditionID)
	if err != nil {
		return SalesKeys{}, err
	}
	if found {
		keys.Product = product.Product
		keys.Author = product.Author
		keys.Vendor = product.Vendor
	} else {
		log.Warn().Str("edition_id", rec.EditionID).
			Msg("Edition not in product dimension; using unknown member")
	}

	dcKey, found, err := r.dcPolicy(ctx, r.store)
	if err != nil {
		return SalesKeys{}, err
	}
	if found {
		keys.DistributionCenter = dcKey
	} else {
		log.Warn().Msg("No current distribution center; using unknown member")
	}

	channelKey, found, err := r.store.ChannelKeyByCode(ctx, rec.ChannelCode)
	if err != nil {
		return SalesKeys{}, err
	}
	if found {
		keys.Channel = channelKey
	} else {
		log.Warn().Str("channel_code", rec.ChannelCode).
			Msg("Channel not in dimension; using unknown member")
	}

	typeKey, found, err := r.store.ProductTypeKeyByName(ctx,
		NormalizeProductType(rec.ProductTypeName))
	if err != nil {
		return SalesKeys{}, err
	}
	if found {
		keys.ProductType = typeKey
	} else {
		log.Warn().Str("product_type", rec.ProductTypeName).
			Msg("Product type not in dimension; using unknown member")
	}

	currencyKey, found, err := r.store.CurrencyKeyByCode(ctx, rec.CurrencyCode)
	if err != nil {
		return SalesKeys{}, err
	}
	if found {
		keys.Currency = currencyKey
	} else {
		log.Warn().Str("currency_code", rec.CurrencyCode).
			Msg("Currency not in dimension; using unknown member")
	}

	return keys, nil
}

// ResolveDaily resolves the dimension keys for one staging daily row.
// Unlike sales, a station miss is fatal for the record: the fact grain is
// distribution-center-day, so there is nothing to hang the row on.
func (r *Resolver) ResolveDaily(ctx context.Context, rec warehouse.StagingDailyRecord) (DailyKeys, error) {
	keys := DailyKeys{
		ProductType: warehouse.UnknownKey,
	}
	log := r.log.With().Str("station_code", rec.StationCode).
		Str("op_date", rec.OpDate.Format("2006-01-02")).Logger()

	timeKey, found, err := r.store.TimeKeyByDate(ctx, rec.OpDate)
	if err != nil {
		return DailyKeys{}, err
	}
	if !found {
		return DailyKeys{}, fmt.Errorf("%w: %s", ErrNoTimeKey,
			rec.OpDate.Format("2006-01-02"))
	}
	keys.Time = timeKey

	station, found, err := r.store.DistributionCenterByStation(ctx, rec.StationCode)
	if err != nil {
		return DailyKeys{}, err
	}
	if !found {
		return DailyKeys{}, fmt.Errorf("%w: %s", ErrNoStation, rec.StationCode)
	}
	keys.DistributionCenter = station.DistributionCenter
	keys.Vendor = station.Vendor

	typeKey, found, err := r.store.ProductTypeKeyByName(ctx,
		NormalizeProductType(rec.ProductTypeName))
	if err != nil {
		return DailyKeys{}, err
	}
	if found {
		keys.ProductType = typeKey
	} else {
		log.Warn().Str("product_type", rec.ProductTypeName).
			Msg("Product type not in dimension; using unknown member")
	}

	return keys, nil
}
