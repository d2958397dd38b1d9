//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inkwave-data/inkwave-warehouse/internal/logging"
	"github.com/inkwave-data/inkwave-warehouse/internal/warehouse"
)

// StagingSource iterates pending staging rows and marks them consumed.
type StagingSource interface {
	ForEachPendingSales(ctx context.Context, fn func(warehouse.StagingSalesRecord) error) error
	ForEachPendingDaily(ctx context.Context, fn func(warehouse.StagingDailyRecord) error) error
	MarkSalesProcessed(ctx context.Context, id int64) error
	MarkDailyProcessed(ctx context.Context, id int64) error
}

// BatchStore records load batch lifecycle outside the work transaction.
type BatchStore interface {
	BeginBatch(ctx context.Context, factTable string) (warehouse.LoadBatch, error)
	FinalizeBatch(ctx context.Context, batch warehouse.LoadBatch) error
}

// WorkSession is the checkpointed transaction a load run writes through.
type WorkSession interface {
	Begin(ctx context.Context) error
	Checkpoint(ctx context.Context) error
	Close(ctx context.Context) error
	Rollback(ctx context.Context) error
	RecordScope(ctx context.Context, fn func() error) error
}

// StatsRefresher updates planner statistics after a committed load.
type StatsRefresher interface {
	RefreshStatistics(ctx context.Context, table string) error
}

// WarehouseStore is the full store surface the loader wires together.
// *warehouse.Store satisfies it.
type WarehouseStore interface {
	DimensionStore
	RateStore
	KeySource
	FactWriter
	StagingSource
	BatchStore
	WorkSession
	StatsRefresher
}

// Config tunes a Loader.
type Config struct {
	SalesCheckpointInterval int
	DailyCheckpointInterval int
	SourceSystem            string
}

// Summary reports the outcome of one load run.
type Summary struct {
	RunID     uuid.UUID
	BatchID   int64
	FactTable string
	Loaded    int64
	Errors    int64
	Elapsed   time.Duration
}

// Loader drives a load run end to end: open a batch, walk pending staging
// rows through resolve, rate, calculate, assemble, checkpoint on cadence,
// and finalize the batch exactly once.
//
// A fault confined to one record is caught, counted, and logged; the run
// continues. A fault at batch level rolls back uncommitted work and marks
// the batch FAILED. Work committed at earlier checkpoints stays committed
// either way.
type Loader struct {
	store    WarehouseStore
	resolver *Resolver
	rates    *RateProvider
	cfg      Config
	log      zerolog.Logger
}

// NewLoader creates a loader over the given store.
func NewLoader(store WarehouseStore, cfg Config) *Loader {
	return &Loader{
		store:    store,
		resolver: NewResolver(store),
		rates:    NewRateProvider(store),
		cfg:      cfg,
		log:      logging.Component("loader"),
	}
}

// WithResolver overrides the default resolver, mainly to install a
// different distribution center policy.
func (l *Loader) WithResolver(r *Resolver) *Loader {
	l.resolver = r
	return l
}

// LoadSales loads all pending staging sales rows into fact_sales.
func (l *Loader) LoadSales(ctx context.Context) (Summary, error) {
	asm := NewAssembler(l.store, l.store, l.cfg.SourceSystem)
	return l.run(ctx, "fact_sales", l.cfg.SalesCheckpointInterval,
		func(ctx context.Context, batchID int64, record func(id string, fn func() error) error) error {
			return l.store.ForEachPendingSales(ctx, func(rec warehouse.StagingSalesRecord) error {
				return record(rec.SaleNumber, func() error {
					keys, err := l.resolver.ResolveSales(ctx, rec)
					if err != nil {
						return err
					}
					rate, err := l.rates.Rate(ctx, keys.Currency, rec.CurrencyCode, keys.Time)
					if err != nil {
						return err
					}
					m := CalculateSalesMeasures(SalesInputs{
						Quantity:     rec.Quantity,
						UnitPrice:    rec.UnitPrice,
						DiscountRate: rec.DiscountRate,
						PrintRunQty:  rec.PrintRunQty,
						BindingCost:  rec.BindingCost,
						ExchangeRate: rate,
					})
					if _, err := asm.AssembleSales(ctx, rec, keys, m, batchID); err != nil {
						return err
					}
					return l.store.MarkSalesProcessed(ctx, rec.ID)
				})
			})
		})
}

// LoadDaily loads all pending staging daily rows into fact_daily_ops.
func (l *Loader) LoadDaily(ctx context.Context) (Summary, error) {
	asm := NewAssembler(l.store, l.store, l.cfg.SourceSystem)
	return l.run(ctx, "fact_daily_ops", l.cfg.DailyCheckpointInterval,
		func(ctx context.Context, batchID int64, record func(id string, fn func() error) error) error {
			return l.store.ForEachPendingDaily(ctx, func(rec warehouse.StagingDailyRecord) error {
				id := fmt.Sprintf("%s/%s", rec.StationCode, rec.OpDate.Format("2006-01-02"))
				return record(id, func() error {
					keys, err := l.resolver.ResolveDaily(ctx, rec)
					if err != nil {
						return err
					}
					m := CalculateDailyMeasures(DailyInputs{
						PrintRunQty: rec.PrintRunQty,
						BindingCost: rec.BindingCost,
						UnitsSold:   rec.UnitsSold,
						Returns:     rec.Returns,
						Revenue:     rec.Revenue,
					})
					if _, err := asm.AssembleDaily(ctx, rec, keys, m, batchID); err != nil {
						return err
					}
					return l.store.MarkDailyProcessed(ctx, rec.ID)
				})
			})
		})
}

// run owns the batch lifecycle shared by both loads. iterate walks the
// pending rows and calls record once per row with its work function.
func (l *Loader) run(ctx context.Context, factTable string, interval int,
	iterate func(ctx context.Context, batchID int64, record func(id string, fn func() error) error) error) (Summary, error) {

	runID := uuid.New()
	start := time.Now()
	log := l.log.With().
		Str("run_id", runID.String()).
		Str("fact_table", factTable).
		Logger()

	batch, err := l.store.BeginBatch(ctx, factTable)
	if err != nil {
		return Summary{RunID: runID, FactTable: factTable},
			fmt.Errorf("failed to open load batch: %w", err)
	}
	log = log.With().Int64("batch_id", batch.ID).Logger()
	log.Info().Msg("Load started")

	if err := l.store.Begin(ctx); err != nil {
		l.fail(ctx, log, &batch)
		return l.summary(runID, batch, start), err
	}

	sinceCheckpoint := 0
	record := func(id string, fn func() error) error {
		recErr := l.store.RecordScope(ctx, func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("record fault: %v", p)
				}
			}()
			return fn()
		})
		if recErr != nil {
			batch.RecordsFailed++
			log.Error().Err(recErr).Str("record", id).Msg("Record not loaded")
			return nil
		}

		batch.RecordsProcessed++
		sinceCheckpoint++
		if sinceCheckpoint >= interval {
			if err := l.store.Checkpoint(ctx); err != nil {
				return fmt.Errorf("checkpoint failed: %w", err)
			}
			sinceCheckpoint = 0
			log.Info().
				Int64("loaded", batch.RecordsProcessed).
				Int64("errors", batch.RecordsFailed).
				Msg("Checkpoint committed")
		}
		return nil
	}

	if err := iterate(ctx, batch.ID, record); err != nil {
		if rbErr := l.store.Rollback(ctx); rbErr != nil {
			log.Error().Err(rbErr).Msg("Rollback failed")
		}
		l.fail(ctx, log, &batch)
		return l.summary(runID, batch, start),
			fmt.Errorf("load batch %d failed: %w", batch.ID, err)
	}

	if err := l.store.Close(ctx); err != nil {
		l.fail(ctx, log, &batch)
		return l.summary(runID, batch, start),
			fmt.Errorf("load batch %d failed: %w", batch.ID, err)
	}

	if err := l.store.RefreshStatistics(ctx, factTable); err != nil {
		log.Warn().Err(err).Msg("Statistics refresh failed")
	}

	batch.Status = warehouse.BatchCommitted
	batch.FinishedAt = time.Now().UTC()
	if err := l.store.FinalizeBatch(ctx, batch); err != nil {
		// Fact rows are already durable; only the bookkeeping row is stale.
		log.Error().Err(err).Msg("Failed to record batch outcome")
		return l.summary(runID, batch, start), err
	}

	s := l.summary(runID, batch, start)
	log.Info().
		Int64("loaded", s.Loaded).
		Int64("errors", s.Errors).
		Dur("elapsed", s.Elapsed).
		Msg("Load complete")
	return s, nil
}

// fail records the FAILED terminal state. Batch bookkeeping runs outside
// the work transaction, so this survives the rollback that preceded it.
func (l *Loader) fail(ctx context.Context, log zerolog.Logger, batch *warehouse.LoadBatch) {
	batch.Status = warehouse.BatchFailed
	batch.FinishedAt = time.Now().UTC()
	if err := l.store.FinalizeBatch(ctx, *batch); err != nil {
		log.Error().Err(err).Msg("Failed to record batch failure")
	}
}

func (l *Loader) summary(runID uuid.UUID, batch warehouse.LoadBatch, start time.Time) Summary {
	return Summary{
		RunID:     runID,
		BatchID:   batch.ID,
		FactTable: batch.FactTable,
		Loaded:    batch.RecordsProcessed,
		Errors:    batch.RecordsFailed,
		Elapsed:   time.Since(start),
	}
}
