//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema SQL for the publishing star schema: SCD-2 dimensions, historical
// exchange rates, the two staging feeds, the two fact tables, and the
// batch bookkeeping table.
const createSchemaSQL = `
-- Time dimension: one row per calendar day, smart key YYYYMMDD
CREATE TABLE IF NOT EXISTS dim_time (
    time_key      BIGINT PRIMARY KEY,
    calendar_date DATE NOT NULL UNIQUE,
    day_of_week   INTEGER NOT NULL,
    day_name      VARCHAR(9) NOT NULL,
    day_of_month  INTEGER NOT NULL,
    month         INTEGER NOT NULL,
    month_name    VARCHAR(9) NOT NULL,
    quarter       INTEGER NOT NULL,
    year          INTEGER NOT NULL,
    week_of_year  INTEGER NOT NULL,
    is_weekend    BOOLEAN NOT NULL,
    is_holiday    BOOLEAN NOT NULL
);

-- Author dimension
CREATE TABLE IF NOT EXISTS dim_author (
    author_key  BIGSERIAL PRIMARY KEY,
    author_name VARCHAR(100) NOT NULL,
    country     VARCHAR(60),
    is_current  BOOLEAN NOT NULL DEFAULT TRUE
);

-- Vendor dimension
CREATE TABLE IF NOT EXISTS dim_vendor (
    vendor_key  BIGSERIAL PRIMARY KEY,
    vendor_name VARCHAR(100) NOT NULL,
    region      VARCHAR(60),
    is_current  BOOLEAN NOT NULL DEFAULT TRUE
);

-- Product dimension: one version row per edition change (SCD Type 2)
CREATE TABLE IF NOT EXISTS dim_product (
    product_key    BIGSERIAL PRIMARY KEY,
    edition_id     VARCHAR(20) NOT NULL,
    title          VARCHAR(200) NOT NULL,
    author_key     BIGINT NOT NULL,
    vendor_key     BIGINT NOT NULL,
    list_price     NUMERIC(12,2),
    effective_from DATE NOT NULL,
    effective_to   DATE,
    is_current     BOOLEAN NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dim_product_edition
    ON dim_product (edition_id) WHERE is_current;

-- Distribution center dimension (SCD Type 2, keyed by station code)
CREATE TABLE IF NOT EXISTS dim_distribution_center (
    dc_key         BIGSERIAL PRIMARY KEY,
    station_code   VARCHAR(10) NOT NULL,
    center_name    VARCHAR(100) NOT NULL,
    city           VARCHAR(60),
    vendor_key     BIGINT NOT NULL,
    effective_from DATE NOT NULL,
    effective_to   DATE,
    is_current     BOOLEAN NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dim_dc_station
    ON dim_distribution_center (station_code) WHERE is_current;

-- Channel dimension
CREATE TABLE IF NOT EXISTS dim_channel (
    channel_key  BIGSERIAL PRIMARY KEY,
    channel_code VARCHAR(10) NOT NULL UNIQUE,
    channel_name VARCHAR(60) NOT NULL,
    is_current   BOOLEAN NOT NULL DEFAULT TRUE
);

-- Product type dimension
CREATE TABLE IF NOT EXISTS dim_product_type (
    product_type_key  BIGSERIAL PRIMARY KEY,
    product_type_name VARCHAR(60) NOT NULL UNIQUE,
    is_current        BOOLEAN NOT NULL DEFAULT TRUE
);

-- Currency dimension
CREATE TABLE IF NOT EXISTS dim_currency (
    currency_key  BIGSERIAL PRIMARY KEY,
    currency_code CHAR(3) NOT NULL UNIQUE,
    currency_name VARCHAR(60) NOT NULL,
    is_current    BOOLEAN NOT NULL DEFAULT TRUE
);

-- Historical exchange rates to the base currency. At most one rate per
-- (currency, day).
CREATE TABLE IF NOT EXISTS exchange_rates (
    currency_key BIGINT NOT NULL,
    time_key     BIGINT NOT NULL,
    rate         NUMERIC(14,6) NOT NULL,
    PRIMARY KEY (currency_key, time_key)
);

-- Staging: raw sales feed after validation
CREATE TABLE IF NOT EXISTS stg_sales (
    id                BIGSERIAL PRIMARY KEY,
    sale_number       VARCHAR(30) NOT NULL,
    sale_date         DATE NOT NULL,
    edition_id        VARCHAR(20) NOT NULL,
    channel_code      VARCHAR(10) NOT NULL,
    currency_code     CHAR(3) NOT NULL,
    product_type_name VARCHAR(60) NOT NULL,
    quantity          BIGINT NOT NULL,
    unit_price        NUMERIC(12,2) NOT NULL,
    discount_rate     NUMERIC(5,4),
    print_run_qty     BIGINT NOT NULL,
    binding_cost      NUMERIC(12,2) NOT NULL,
    notes             TEXT,
    validation_status VARCHAR(10) NOT NULL DEFAULT 'VALID',
    processed_flag    CHAR(1) NOT NULL DEFAULT 'N'
);
CREATE INDEX IF NOT EXISTS idx_stg_sales_pending
    ON stg_sales (sale_date, id) WHERE processed_flag = 'N';

-- Staging: raw daily-operations feed after validation
CREATE TABLE IF NOT EXISTS stg_daily (
    id                BIGSERIAL PRIMARY KEY,
    op_date           DATE NOT NULL,
    station_code      VARCHAR(10) NOT NULL,
    product_type_name VARCHAR(60) NOT NULL,
    print_run_qty     BIGINT NOT NULL,
    binding_cost      NUMERIC(12,2) NOT NULL,
    units_sold        BIGINT NOT NULL,
    returns           BIGINT,
    revenue           NUMERIC(14,2) NOT NULL,
    vendor_score      NUMERIC(5,2),
    notes             TEXT,
    validation_status VARCHAR(10) NOT NULL DEFAULT 'VALID',
    processed_flag    CHAR(1) NOT NULL DEFAULT 'N'
);
CREATE INDEX IF NOT EXISTS idx_stg_daily_pending
    ON stg_daily (op_date, id) WHERE processed_flag = 'N';

-- Sales fact table
CREATE TABLE IF NOT EXISTS fact_sales (
    sales_key           BIGINT PRIMARY KEY,
    time_key            BIGINT NOT NULL,
    product_key         BIGINT NOT NULL,
    author_key          BIGINT NOT NULL,
    vendor_key          BIGINT NOT NULL,
    dc_key              BIGINT NOT NULL,
    channel_key         BIGINT NOT NULL,
    product_type_key    BIGINT NOT NULL,
    currency_key        BIGINT NOT NULL,
    sale_number         VARCHAR(30) NOT NULL,
    quantity            BIGINT NOT NULL,
    unit_price_original NUMERIC(12,2) NOT NULL,
    exchange_rate       NUMERIC(14,6) NOT NULL,
    unit_price_base     NUMERIC(14,6) NOT NULL,
    gross_amount        NUMERIC(14,2) NOT NULL,
    discount_amount     NUMERIC(14,2) NOT NULL,
    net_amount          NUMERIC(14,2) NOT NULL,
    unit_cost           NUMERIC(14,6) NOT NULL,
    total_cost          NUMERIC(14,2) NOT NULL,
    gross_profit        NUMERIC(14,2) NOT NULL,
    gross_margin_pct    NUMERIC(8,4) NOT NULL,
    source_system       VARCHAR(30) NOT NULL,
    source_record_id    BIGINT NOT NULL,
    batch_id            BIGINT NOT NULL,
    loaded_at           TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fact_sales_time ON fact_sales (time_key);
CREATE SEQUENCE IF NOT EXISTS fact_sales_key_seq;

-- Daily operations fact table
CREATE TABLE IF NOT EXISTS fact_daily_ops (
    daily_key          BIGINT PRIMARY KEY,
    time_key           BIGINT NOT NULL,
    dc_key             BIGINT NOT NULL,
    vendor_key         BIGINT NOT NULL,
    product_type_key   BIGINT NOT NULL,
    station_code       VARCHAR(10) NOT NULL,
    product_type_name  VARCHAR(60) NOT NULL,
    print_run_qty      BIGINT NOT NULL,
    binding_cost       NUMERIC(12,2) NOT NULL,
    units_sold         BIGINT NOT NULL,
    returns            BIGINT NOT NULL,
    net_units          BIGINT NOT NULL,
    unit_binding_cost  NUMERIC(14,6) NOT NULL,
    utilization_pct    NUMERIC(8,4) NOT NULL,
    cost_of_goods_sold NUMERIC(14,2) NOT NULL,
    revenue            NUMERIC(14,2) NOT NULL,
    gross_profit       NUMERIC(14,2) NOT NULL,
    gross_margin_pct   NUMERIC(8,4) NOT NULL,
    return_rate_pct    NUMERIC(8,4) NOT NULL,
    source_system      VARCHAR(30) NOT NULL,
    source_record_id   BIGINT NOT NULL,
    batch_id           BIGINT NOT NULL,
    loaded_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fact_daily_time ON fact_daily_ops (time_key);
CREATE SEQUENCE IF NOT EXISTS fact_daily_ops_key_seq;

-- Batch bookkeeping
CREATE TABLE IF NOT EXISTS etl_load_batch (
    batch_id          BIGINT PRIMARY KEY,
    fact_table        VARCHAR(30) NOT NULL,
    started_at        TIMESTAMPTZ NOT NULL,
    finished_at       TIMESTAMPTZ,
    records_processed BIGINT NOT NULL DEFAULT 0,
    records_failed    BIGINT NOT NULL DEFAULT 0,
    status            VARCHAR(12) NOT NULL
);
`

// Unknown members so fact rows with sentinel keys still join cleanly.
const seedUnknownMembersSQL = `
INSERT INTO dim_author (author_key, author_name, is_current)
    VALUES (-1, 'Unknown', TRUE) ON CONFLICT DO NOTHING;
INSERT INTO dim_vendor (vendor_key, vendor_name, is_current)
    VALUES (-1, 'Unknown', TRUE) ON CONFLICT DO NOTHING;
INSERT INTO dim_product (product_key, edition_id, title, author_key, vendor_key, effective_from, is_current)
    VALUES (-1, 'UNKNOWN', 'Unknown', -1, -1, DATE '1900-01-01', FALSE) ON CONFLICT DO NOTHING;
INSERT INTO dim_distribution_center (dc_key, station_code, center_name, vendor_key, effective_from, is_current)
    VALUES (-1, 'UNKNOWN', 'Unknown', -1, DATE '1900-01-01', FALSE) ON CONFLICT DO NOTHING;
INSERT INTO dim_channel (channel_key, channel_code, channel_name, is_current)
    VALUES (-1, 'UNK', 'Unknown', FALSE) ON CONFLICT DO NOTHING;
INSERT INTO dim_product_type (product_type_key, product_type_name, is_current)
    VALUES (-1, 'Unknown', FALSE) ON CONFLICT DO NOTHING;
INSERT INTO dim_currency (currency_key, currency_code, currency_name, is_current)
    VALUES (-1, 'UNK', 'Unknown', FALSE) ON CONFLICT DO NOTHING;
`

var allTables = []string{
	"fact_sales",
	"fact_daily_ops",
	"etl_load_batch",
	"stg_sales",
	"stg_daily",
	"exchange_rates",
	"dim_product",
	"dim_distribution_center",
	"dim_author",
	"dim_vendor",
	"dim_channel",
	"dim_product_type",
	"dim_currency",
	"dim_time",
}

// CreateSchema creates the warehouse schema and seeds the unknown members.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := pool.Exec(ctx, seedUnknownMembersSQL); err != nil {
		return fmt.Errorf("failed to seed unknown members: %w", err)
	}
	return nil
}

// DropSchema drops all warehouse tables and sequences.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range allTables {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	for _, seq := range []string{"fact_sales_key_seq", "fact_daily_ops_key_seq"} {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP SEQUENCE IF EXISTS %s", seq)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", seq, err)
		}
	}
	return nil
}
