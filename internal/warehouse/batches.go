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
)

// Batch bookkeeping runs on the pool, outside the work transaction, so a
// rolled-back run still leaves its FAILED terminal record behind.

// BeginBatch allocates the next batch id (max existing + 1) and records
// the run as RUNNING.
func (s *Store) BeginBatch(ctx context.Context, factTable string) (LoadBatch, error) {
	batch := LoadBatch{
		FactTable: factTable,
		StartedAt: time.Now().UTC(),
		Status:    BatchRunning,
	}

	err := s.pool.QueryRow(ctx, `
        SELECT COALESCE(MAX(batch_id), 0) + 1 FROM etl_load_batch
    `).Scan(&batch.ID)
	if err != nil {
		return LoadBatch{}, fmt.Errorf("allocate batch id: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
        INSERT INTO etl_load_batch (batch_id, fact_table, started_at, status)
        VALUES ($1, $2, $3, $4)
    `, batch.ID, batch.FactTable, batch.StartedAt, batch.Status)
	if err != nil {
		return LoadBatch{}, fmt.Errorf("record batch %d: %w", batch.ID, err)
	}

	return batch, nil
}

// FinalizeBatch records the terminal state of a run. Called exactly once.
func (s *Store) FinalizeBatch(ctx context.Context, batch LoadBatch) error {
	_, err := s.pool.Exec(ctx, `
        UPDATE etl_load_batch
        SET finished_at = $2, records_processed = $3, records_failed = $4,
            status = $5
        WHERE batch_id = $1
    `, batch.ID, batch.FinishedAt, batch.RecordsProcessed,
		batch.RecordsFailed, batch.Status)
	if err != nil {
		return fmt.Errorf("finalize batch %d: %w", batch.ID, err)
	}
	return nil
}
