//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
)

// NextSalesKey allocates the next sales fact surrogate key. The sequence
// is table-wide monotonic; keys are never reused even across failed runs.
func (s *Store) NextSalesKey(ctx context.Context) (int64, error) {
	var key int64
	err := s.conn().QueryRow(ctx, `SELECT nextval('fact_sales_key_seq')`).Scan(&key)
	if err != nil {
		return 0, fmt.Errorf("next sales key: %w", err)
	}
	return key, nil
}

// NextDailyKey allocates the next daily-operations fact surrogate key.
func (s *Store) NextDailyKey(ctx context.Context) (int64, error) {
	var key int64
	err := s.conn().QueryRow(ctx, `SELECT nextval('fact_daily_ops_key_seq')`).Scan(&key)
	if err != nil {
		return 0, fmt.Errorf("next daily key: %w", err)
	}
	return key, nil
}

// InsertSalesFact appends one sales fact row. One insert per record; the
// surrounding transaction is the loader's checkpoint boundary.
func (s *Store) InsertSalesFact(ctx context.Context, f FactSalesRecord) error {
	_, err := s.conn().Exec(ctx, `
        INSERT INTO fact_sales (
            sales_key, time_key, product_key, author_key, vendor_key,
            dc_key, channel_key, product_type_key, currency_key,
            sale_number, quantity, unit_price_original, exchange_rate,
            unit_price_base, gross_amount, discount_amount, net_amount,
            unit_cost, total_cost, gross_profit, gross_margin_pct,
            source_system, source_record_id, batch_id, loaded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
                $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
    `, f.SalesKey, f.TimeKey, f.ProductKey, f.AuthorKey, f.VendorKey,
		f.DistributionCenterKey, f.ChannelKey, f.ProductTypeKey, f.CurrencyKey,
		f.SaleNumber, f.Quantity, f.UnitPriceOriginal, f.ExchangeRate,
		f.UnitPriceBase, f.GrossAmount, f.DiscountAmount, f.NetAmount,
		f.UnitCost, f.TotalCost, f.GrossProfit, f.GrossMarginPct,
		f.SourceSystem, f.SourceRecordID, f.BatchID, f.LoadedAt)
	if err != nil {
		return fmt.Errorf("insert fact_sales %d: %w", f.SalesKey, err)
	}
	return nil
}

// InsertDailyFact appends one daily-operations fact row.
func (s *Store) InsertDailyFact(ctx context.Context, f FactDailyOpsRecord) error {
	_, err := s.conn().Exec(ctx, `
        INSERT INTO fact_daily_ops (
            daily_key, time_key, dc_key, vendor_key, product_type_key,
            station_code, product_type_name, print_run_qty, binding_cost,
            units_sold, returns, net_units, unit_binding_cost,
            utilization_pct, cost_of_goods_sold, revenue, gross_profit,
            gross_margin_pct, return_rate_pct, source_system,
            source_record_id, batch_id, loaded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
                $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
    `, f.DailyKey, f.TimeKey, f.DistributionCenterKey, f.VendorKey,
		f.ProductTypeKey, f.StationCode, f.ProductTypeName, f.PrintRunQty,
		f.BindingCost, f.UnitsSold, f.Returns, f.NetUnits, f.UnitBindingCost,
		f.UtilizationPct, f.CostOfGoodsSold, f.Revenue, f.GrossProfit,
		f.GrossMarginPct, f.ReturnRatePct, f.SourceSystem,
		f.SourceRecordID, f.BatchID, f.LoadedAt)
	if err != nil {
		return fmt.Errorf("insert fact_daily_ops %d: %w", f.DailyKey, err)
	}
	return nil
}
