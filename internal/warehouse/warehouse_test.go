//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package warehouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/inkwave-data/inkwave-warehouse/internal/testutil"
	"github.com/inkwave-data/inkwave-warehouse/internal/warehouse"
)

func setupWarehouse(t *testing.T) (*pgxpool.Pool, context.Context) {
	t.Helper()
	baseConnStr := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConnStr, "warehouse")

	cleanup := testutil.NewTestCleanup(t, baseConnStr, testutil.GetDBNameFromConnStr(connStr))
	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)
	t.Cleanup(cleanup.Cleanup)

	ctx := context.Background()
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	return pool, ctx
}

func TestSchemaUnknownMembers(t *testing.T) {
	pool, ctx := setupWarehouse(t)

	for _, table := range []string{
		"dim_author", "dim_vendor", "dim_product", "dim_distribution_center",
		"dim_channel", "dim_product_type", "dim_currency",
	} {
		var n int
		col := map[string]string{
			"dim_author":              "author_key",
			"dim_vendor":              "vendor_key",
			"dim_product":             "product_key",
			"dim_distribution_center": "dc_key",
			"dim_channel":             "channel_key",
			"dim_product_type":        "product_type_key",
			"dim_currency":            "currency_key",
		}[table]
		err := pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM "+table+" WHERE "+col+" = -1").Scan(&n)
		if err != nil {
			t.Fatalf("count unknown member in %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("%s unknown members = %d, want 1", table, n)
		}
	}
}

func TestProductLookupCurrentVersionWins(t *testing.T) {
	pool, ctx := setupWarehouse(t)
	store := warehouse.NewStore(pool)

	// Two versions of the same edition: the expired one first.
	_, err := pool.Exec(ctx, `
        INSERT INTO dim_product (edition_id, title, author_key, vendor_key,
            effective_from, effective_to, is_current)
        VALUES
            ('E0001', 'First Printing', 11, 21, DATE '2020-01-01', DATE '2023-06-30', FALSE),
            ('E0001', 'Second Printing', 12, 22, DATE '2023-07-01', NULL, TRUE)
    `)
	if err != nil {
		t.Fatalf("insert product versions: %v", err)
	}

	keys, found, err := store.ProductByEdition(ctx, "E0001")
	if err != nil {
		t.Fatalf("ProductByEdition: %v", err)
	}
	if !found {
		t.Fatal("edition E0001 not found")
	}
	if keys.Author != 12 || keys.Vendor != 22 {
		t.Errorf("resolved author/vendor = %d/%d, want current version 12/22",
			keys.Author, keys.Vendor)
	}

	_, found, err = store.ProductByEdition(ctx, "E9999")
	if err != nil {
		t.Fatalf("ProductByEdition miss: %v", err)
	}
	if found {
		t.Error("absent edition reported as found")
	}
}

func TestStationLookupSCDScoping(t *testing.T) {
	pool, ctx := setupWarehouse(t)
	store := warehouse.NewStore(pool)

	_, err := pool.Exec(ctx, `
        INSERT INTO dim_distribution_center (station_code, center_name,
            vendor_key, effective_from, effective_to, is_current)
        VALUES
            ('STN-01', 'Old Depot', 31, DATE '2019-01-01', DATE '2024-01-01', FALSE),
            ('STN-01', 'New Depot', 32, DATE '2024-01-02', NULL, TRUE)
    `)
	if err != nil {
		t.Fatalf("insert dc versions: %v", err)
	}

	keys, found, err := store.DistributionCenterByStation(ctx, "STN-01")
	if err != nil {
		t.Fatalf("DistributionCenterByStation: %v", err)
	}
	if !found {
		t.Fatal("station STN-01 not found")
	}
	if keys.Vendor != 32 {
		t.Errorf("vendor = %d, want current version 32", keys.Vendor)
	}

	// The unknown member is not current and must never win a lookup.
	first, found, err := store.FirstCurrentDistributionCenter(ctx)
	if err != nil {
		t.Fatalf("FirstCurrentDistributionCenter: %v", err)
	}
	if !found || first <= 0 {
		t.Errorf("first current dc = %d found=%v, want positive key", first, found)
	}
}

func TestTimeDimensionRoundtrip(t *testing.T) {
	pool, ctx := setupWarehouse(t)
	store := warehouse.NewStore(pool)

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rows := []warehouse.TimeDimRow{{
		TimeKey: 20240115, CalendarDate: day, DayOfWeek: 1, DayName: "Monday",
		DayOfMonth: 15, Month: 1, MonthName: "January", Quarter: 1,
		Year: 2024, WeekOfYear: 3,
	}}

	inserted, err := store.InsertTimeRows(ctx, rows)
	if err != nil {
		t.Fatalf("InsertTimeRows: %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}

	// Re-insert is a no-op.
	inserted, err = store.InsertTimeRows(ctx, rows)
	if err != nil {
		t.Fatalf("InsertTimeRows rerun: %v", err)
	}
	if inserted != 0 {
		t.Errorf("rerun inserted = %d, want 0", inserted)
	}

	key, found, err := store.TimeKeyByDate(ctx, day)
	if err != nil {
		t.Fatalf("TimeKeyByDate: %v", err)
	}
	if !found || key != 20240115 {
		t.Errorf("time key = %d found=%v, want 20240115", key, found)
	}
}

func TestExchangeRateLookup(t *testing.T) {
	pool, ctx := setupWarehouse(t)
	store := warehouse.NewStore(pool)

	_, err := pool.Exec(ctx, `
        INSERT INTO exchange_rates (currency_key, time_key, rate)
        VALUES (5, 20240115, 0.8123)
    `)
	if err != nil {
		t.Fatalf("insert rate: %v", err)
	}

	rate, found, err := store.RateFor(ctx, 5, 20240115)
	if err != nil {
		t.Fatalf("RateFor: %v", err)
	}
	if !found || !rate.Equal(decimal.RequireFromString("0.8123")) {
		t.Errorf("rate = %s found=%v, want 0.8123", rate, found)
	}

	_, found, err = store.RateFor(ctx, 5, 20240116)
	if err != nil {
		t.Fatalf("RateFor miss: %v", err)
	}
	if found {
		t.Error("missing rate reported as found")
	}
}

func TestBatchLifecycle(t *testing.T) {
	pool, ctx := setupWarehouse(t)
	store := warehouse.NewStore(pool)

	batch, err := store.BeginBatch(ctx, "fact_sales")
	if err != nil {
		t.Fatalf("BeginBatch: %v", err)
	}
	if batch.ID != 1 || batch.Status != warehouse.BatchRunning {
		t.Errorf("batch = %+v, want id 1 RUNNING", batch)
	}

	second, err := store.BeginBatch(ctx, "fact_daily_ops")
	if err != nil {
		t.Fatalf("second BeginBatch: %v", err)
	}
	if second.ID != 2 {
		t.Errorf("second batch id = %d, want 2", second.ID)
	}

	batch.Status = warehouse.BatchCommitted
	batch.FinishedAt = time.Now().UTC()
	batch.RecordsProcessed = 42
	if err := store.FinalizeBatch(ctx, batch); err != nil {
		t.Fatalf("FinalizeBatch: %v", err)
	}

	var status string
	var processed int64
	err = pool.QueryRow(ctx, `
        SELECT status, records_processed FROM etl_load_batch WHERE batch_id = 1
    `).Scan(&status, &processed)
	if err != nil {
		t.Fatalf("read batch row: %v", err)
	}
	if status != "COMMITTED" || processed != 42 {
		t.Errorf("batch row = %s/%d, want COMMITTED/42", status, processed)
	}
}

func TestCheckpointDurability(t *testing.T) {
	pool, ctx := setupWarehouse(t)
	store := warehouse.NewStore(pool)

	_, err := pool.Exec(ctx, `
        INSERT INTO stg_sales (sale_number, sale_date, edition_id,
            channel_code, currency_code, product_type_name, quantity,
            unit_price, print_run_qty, binding_cost)
        VALUES ('S-0001', DATE '2024-01-15', 'E0001', 'WEB', 'GBP',
            'Hardcover', 1, 9.99, 100, 50)
    `)
	if err != nil {
		t.Fatalf("seed staging row: %v", err)
	}

	if err := store.Begin(ctx); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.MarkSalesProcessed(ctx, 1); err != nil {
		t.Fatalf("MarkSalesProcessed: %v", err)
	}
	if err := store.Checkpoint(ctx); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if err := store.Rollback(ctx); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	// The checkpointed update survives the rollback of the next segment.
	var flag string
	err = pool.QueryRow(ctx, `SELECT processed_flag FROM stg_sales WHERE id = 1`).Scan(&flag)
	if err != nil {
		t.Fatalf("read staging row: %v", err)
	}
	if flag != "Y" {
		t.Errorf("processed_flag = %s, want Y", flag)
	}
}
