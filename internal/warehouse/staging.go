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

// Pending selection: only validated, unconsumed rows, in deterministic
// order (calendar date, then insertion id) so re-runs are reproducible.
// Selection runs against the pool, not the work transaction, so iterating
// never conflicts with the per-record writes on the transaction.

// ForEachPendingSales invokes fn once per pending staging sales row.
// A non-nil error from fn aborts the iteration.
func (s *Store) ForEachPendingSales(ctx context.Context, fn func(StagingSalesRecord) error) error {
	rows, err := s.pool.Query(ctx, `
        SELECT id, sale_number, sale_date, edition_id, channel_code,
               currency_code, product_type_name, quantity, unit_price,
               discount_rate, print_run_qty, binding_cost, COALESCE(notes, '')
        FROM stg_sales
        WHERE validation_status = 'VALID' AND processed_flag = 'N'
        ORDER BY sale_date, id
    `)
	if err != nil {
		return fmt.Errorf("select pending sales: %w", err)
	}

	var pending []StagingSalesRecord
	for rows.Next() {
		var rec StagingSalesRecord
		if err := rows.Scan(&rec.ID, &rec.SaleNumber, &rec.SaleDate,
			&rec.EditionID, &rec.ChannelCode, &rec.CurrencyCode,
			&rec.ProductTypeName, &rec.Quantity, &rec.UnitPrice,
			&rec.DiscountRate, &rec.PrintRunQty, &rec.BindingCost,
			&rec.Notes); err != nil {
			rows.Close()
			return fmt.Errorf("scan staging sales row: %w", err)
		}
		pending = append(pending, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read pending sales: %w", err)
	}

	for _, rec := range pending {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// ForEachPendingDaily invokes fn once per pending staging daily-operations row.
func (s *Store) ForEachPendingDaily(ctx context.Context, fn func(StagingDailyRecord) error) error {
	rows, err := s.pool.Query(ctx, `
        SELECT id, op_date, station_code, product_type_name, print_run_qty,
               binding_cost, units_sold, returns, revenue, vendor_score,
               COALESCE(notes, '')
        FROM stg_daily
        WHERE validation_status = 'VALID' AND processed_flag = 'N'
        ORDER BY op_date, id
    `)
	if err != nil {
		return fmt.Errorf("select pending daily: %w", err)
	}

	var pending []StagingDailyRecord
	for rows.Next() {
		var rec StagingDailyRecord
		if err := rows.Scan(&rec.ID, &rec.OpDate, &rec.StationCode,
			&rec.ProductTypeName, &rec.PrintRunQty, &rec.BindingCost,
			&rec.UnitsSold, &rec.Returns, &rec.Revenue, &rec.VendorScore,
			&rec.Notes); err != nil {
			rows.Close()
			return fmt.Errorf("scan staging daily row: %w", err)
		}
		pending = append(pending, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read pending daily: %w", err)
	}

	for _, rec := range pending {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// MarkSalesProcessed flips the processed flag for one staging sales row.
// Runs on the work transaction so the flag commits together with the
// fact insert it belongs to.
func (s *Store) MarkSalesProcessed(ctx context.Context, id int64) error {
	_, err := s.conn().Exec(ctx, `
        UPDATE stg_sales SET processed_flag = 'Y' WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("mark sales %d processed: %w", id, err)
	}
	return nil
}

// MarkDailyProcessed flips the processed flag for one staging daily row.
func (s *Store) MarkDailyProcessed(ctx context.Context, id int64) error {
	_, err := s.conn().Exec(ctx, `
        UPDATE stg_daily SET processed_flag = 'Y' WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("mark daily %d processed: %w", id, err)
	}
	return nil
}
