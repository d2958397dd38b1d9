//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/inkwave-data/inkwave-warehouse/internal/datagen"
	"github.com/inkwave-data/inkwave-warehouse/internal/logging"
)

// SeedParams sizes a synthetic reference and staging dataset.
type SeedParams struct {
	Editions     int
	Stations     int
	SalesRecords int
	DailyRecords int

	// UnknownRatio is the fraction of staging rows that reference natural
	// keys absent from the dimensions, to exercise sentinel handling.
	UnknownRatio float64

	StartDate time.Time
	EndDate   time.Time
}

var (
	seedChannels = []struct{ code, name string }{
		{"WEB", "Web Store"},
		{"RETAIL", "Retail Partners"},
		{"WHOLESALE", "Wholesale"},
		{"DIRECT", "Direct Sales"},
	}
	seedProductTypes = []string{
		"Hardcover", "Paperback", "Trade-Paperback",
		"E-Book", "Audiobook", "Magazine",
	}
	seedCurrencies = []struct{ code, name string }{
		{"GBP", "Pound Sterling"},
		{"USD", "US Dollar"},
		{"EUR", "Euro"},
		{"CAD", "Canadian Dollar"},
		{"AUD", "Australian Dollar"},
	}
)

// Seeder populates dimensions, exchange rates and staging tables with
// synthetic data. Intended for development and load-test environments,
// never production.
type Seeder struct {
	pool  *pgxpool.Pool
	faker *datagen.Faker
}

// NewSeeder creates a seeder over the given pool. A nonzero seed fixes
// the random stream for reproducible datasets.
func NewSeeder(pool *pgxpool.Pool, seed uint64) *Seeder {
	faker := datagen.NewFaker()
	if seed != 0 {
		faker = datagen.NewFakerWithSeed(seed)
	}
	return &Seeder{pool: pool, faker: faker}
}

// Seed populates the full synthetic dataset in dependency order.
func (s *Seeder) Seed(ctx context.Context, params SeedParams) error {
	logging.Info().
		Int("editions", params.Editions).
		Int("stations", params.Stations).
		Int("sales_records", params.SalesRecords).
		Int("daily_records", params.DailyRecords).
		Msg("Seeding warehouse")

	authorKeys, err := s.seedAuthors(ctx, params.Editions/3+1)
	if err != nil {
		return err
	}
	vendorKeys, err := s.seedVendors(ctx, 8)
	if err != nil {
		return err
	}
	editionIDs, err := s.seedProducts(ctx, params.Editions, authorKeys, vendorKeys)
	if err != nil {
		return err
	}
	stationCodes, err := s.seedDistributionCenters(ctx, params.Stations, vendorKeys)
	if err != nil {
		return err
	}
	if err := s.seedChannelRows(ctx); err != nil {
		return err
	}
	if err := s.seedProductTypeRows(ctx); err != nil {
		return err
	}
	currencyKeys, err := s.seedCurrencyRows(ctx)
	if err != nil {
		return err
	}
	if err := s.seedExchangeRates(ctx, currencyKeys, params.StartDate, params.EndDate); err != nil {
		return err
	}
	if err := s.seedStagingSales(ctx, params, editionIDs); err != nil {
		return err
	}
	if err := s.seedStagingDaily(ctx, params, stationCodes); err != nil {
		return err
	}

	logging.Info().Msg("Seeding complete")
	return nil
}

func (s *Seeder) seedAuthors(ctx context.Context, n int) ([]int64, error) {
	keys := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		var key int64
		err := s.pool.QueryRow(ctx, `
            INSERT INTO dim_author (author_name, country, is_current)
            VALUES ($1, $2, TRUE)
            RETURNING author_key
        `, s.faker.Name(), s.faker.Country()).Scan(&key)
		if err != nil {
			return nil, fmt.Errorf("seed dim_author: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *Seeder) seedVendors(ctx context.Context, n int) ([]int64, error) {
	keys := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		var key int64
		err := s.pool.QueryRow(ctx, `
            INSERT INTO dim_vendor (vendor_name, region, is_current)
            VALUES ($1, $2, TRUE)
            RETURNING vendor_key
        `, s.faker.Company(), s.faker.City()).Scan(&key)
		if err != nil {
			return nil, fmt.Errorf("seed dim_vendor: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *Seeder) seedProducts(ctx context.Context, n int, authors, vendors []int64) ([]string, error) {
	reporter := datagen.NewProgressReporter("dim_product", int64(n), 500)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		editionID := fmt.Sprintf("E%05d", i+1)
		_, err := s.pool.Exec(ctx, `
            INSERT INTO dim_product (edition_id, title, author_key, vendor_key,
                list_price, effective_from, is_current)
            VALUES ($1, $2, $3, $4, $5, CURRENT_DATE, TRUE)
        `, editionID, s.faker.BookTitle(),
			datagen.Choose(s.faker, authors), datagen.Choose(s.faker, vendors),
			decimal.NewFromFloat(s.faker.Price(4, 80)))
		if err != nil {
			return nil, fmt.Errorf("seed dim_product: %w", err)
		}
		ids = append(ids, editionID)
		reporter.Update(1)
	}
	reporter.Done()
	return ids, nil
}

func (s *Seeder) seedDistributionCenters(ctx context.Context, n int, vendors []int64) ([]string, error) {
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		code := datagen.StationCode(i + 1)
		_, err := s.pool.Exec(ctx, `
            INSERT INTO dim_distribution_center (station_code, center_name,
                city, vendor_key, effective_from, is_current)
            VALUES ($1, $2, $3, $4, CURRENT_DATE, TRUE)
        `, code, s.faker.Company()+" Center", s.faker.City(),
			datagen.Choose(s.faker, vendors))
		if err != nil {
			return nil, fmt.Errorf("seed dim_distribution_center: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func (s *Seeder) seedChannelRows(ctx context.Context) error {
	for _, c := range seedChannels {
		_, err := s.pool.Exec(ctx, `
            INSERT INTO dim_channel (channel_code, channel_name, is_current)
            VALUES ($1, $2, TRUE)
            ON CONFLICT DO NOTHING
        `, c.code, c.name)
		if err != nil {
			return fmt.Errorf("seed dim_channel: %w", err)
		}
	}
	return nil
}

func (s *Seeder) seedProductTypeRows(ctx context.Context) error {
	for _, name := range seedProductTypes {
		_, err := s.pool.Exec(ctx, `
            INSERT INTO dim_product_type (product_type_name, is_current)
            VALUES ($1, TRUE)
            ON CONFLICT DO NOTHING
        `, name)
		if err != nil {
			return fmt.Errorf("seed dim_product_type: %w", err)
		}
	}
	return nil
}

func (s *Seeder) seedCurrencyRows(ctx context.Context) (map[string]int64, error) {
	keys := make(map[string]int64, len(seedCurrencies))
	for _, c := range seedCurrencies {
		var key int64
		err := s.pool.QueryRow(ctx, `
            INSERT INTO dim_currency (currency_code, currency_name, is_current)
            VALUES ($1, $2, TRUE)
            ON CONFLICT (currency_code) DO UPDATE SET currency_name = EXCLUDED.currency_name
            RETURNING currency_key
        `, c.code, c.name).Scan(&key)
		if err != nil {
			return nil, fmt.Errorf("seed dim_currency: %w", err)
		}
		keys[c.code] = key
	}
	return keys, nil
}

// seedExchangeRates covers roughly two thirds of the days for USD and EUR.
// The gaps are deliberate so loads exercise the fallback path.
func (s *Seeder) seedExchangeRates(ctx context.Context, currencies map[string]int64, start, end time.Time) error {
	mid := map[string]float64{"USD": 0.79, "EUR": 0.85, "CAD": 0.58, "AUD": 0.52}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		timeKey := int64(d.Year())*10000 + int64(d.Month())*100 + int64(d.Day())
		for code, center := range mid {
			if s.faker.Float64(0, 1) > 0.66 {
				continue
			}
			rate := decimal.NewFromFloat(s.faker.Float64(center*0.95, center*1.05)).Round(6)
			_, err := s.pool.Exec(ctx, `
                INSERT INTO exchange_rates (currency_key, time_key, rate)
                VALUES ($1, $2, $3)
                ON CONFLICT DO NOTHING
            `, currencies[code], timeKey, rate)
			if err != nil {
				return fmt.Errorf("seed exchange_rates: %w", err)
			}
		}
	}
	return nil
}

func (s *Seeder) seedStagingSales(ctx context.Context, params SeedParams, editions []string) error {
	reporter := datagen.NewProgressReporter("stg_sales", int64(params.SalesRecords), 1000)
	currencyCodes := make([]string, 0, len(seedCurrencies))
	for _, c := range seedCurrencies {
		currencyCodes = append(currencyCodes, c.code)
	}
	channelCodes := make([]string, 0, len(seedChannels))
	for _, c := range seedChannels {
		channelCodes = append(channelCodes, c.code)
	}

	for i := 0; i < params.SalesRecords; i++ {
		saleDate := s.faker.DateRange(params.StartDate, params.EndDate)

		editionID := datagen.Choose(s.faker, editions)
		if s.faker.Float64(0, 1) < params.UnknownRatio {
			editionID = "E99" + s.faker.Digits(3)
		}

		var discountRate *decimal.Decimal
		if s.faker.Bool() {
			d := decimal.NewFromFloat(s.faker.Float64(0.05, 0.30)).Round(2)
			discountRate = &d
		}

		_, err := s.pool.Exec(ctx, `
            INSERT INTO stg_sales (sale_number, sale_date, edition_id,
                channel_code, currency_code, product_type_name, quantity,
                unit_price, discount_rate, print_run_qty, binding_cost,
                validation_status, processed_flag)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'VALID', 'N')
        `, s.faker.SaleNumber(saleDate.Year()), saleDate, editionID,
			datagen.Choose(s.faker, channelCodes),
			datagen.ChooseWeighted(s.faker, currencyCodes, []int{50, 25, 15, 5, 5}),
			datagen.Choose(s.faker, seedProductTypes),
			s.faker.Int64(1, 200),
			decimal.NewFromFloat(s.faker.Price(4, 60)),
			discountRate,
			s.faker.Int64(500, 20000),
			decimal.NewFromFloat(s.faker.Price(200, 8000)))
		if err != nil {
			return fmt.Errorf("seed stg_sales: %w", err)
		}
		reporter.Update(1)
	}
	reporter.Done()
	return nil
}

func (s *Seeder) seedStagingDaily(ctx context.Context, params SeedParams, stations []string) error {
	reporter := datagen.NewProgressReporter("stg_daily", int64(params.DailyRecords), 500)

	for i := 0; i < params.DailyRecords; i++ {
		opDate := s.faker.DateRange(params.StartDate, params.EndDate)

		stationCode := datagen.Choose(s.faker, stations)
		if s.faker.Float64(0, 1) < params.UnknownRatio {
			stationCode = "STN-99"
		}

		printRun := s.faker.Int64(0, 15000)
		unitsSold := s.faker.Int64(0, 12000)
		if printRun > 0 && unitsSold > printRun {
			unitsSold = printRun
		}

		var returns *int64
		if s.faker.Bool() {
			r := s.faker.Int64(0, unitsSold/10+1)
			returns = &r
		}
		var vendorScore *decimal.Decimal
		if s.faker.Bool() {
			v := decimal.NewFromFloat(s.faker.Float64(1, 5)).Round(2)
			vendorScore = &v
		}

		_, err := s.pool.Exec(ctx, `
            INSERT INTO stg_daily (op_date, station_code, product_type_name,
                print_run_qty, binding_cost, units_sold, returns, revenue,
                vendor_score, validation_status, processed_flag)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'VALID', 'N')
        `, opDate, stationCode, datagen.Choose(s.faker, seedProductTypes),
			printRun,
			decimal.NewFromFloat(s.faker.Price(100, 5000)),
			unitsSold, returns,
			decimal.NewFromFloat(s.faker.Price(500, 60000)),
			vendorScore)
		if err != nil {
			return fmt.Errorf("seed stg_daily: %w", err)
		}
		reporter.Update(1)
	}
	reporter.Done()
	return nil
}
