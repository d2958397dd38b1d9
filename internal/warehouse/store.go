//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwave-data/inkwave-warehouse/internal/logging"
)

// DB is an interface that *pgxpool.Pool, *pgx.Conn and pgx.Tx satisfy.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL-backed warehouse store. Fact and staging writes
// accumulate on a single open transaction; Checkpoint makes them durable.
// One Store supports exactly one load run at a time.
type Store struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// NewStore creates a Store on the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// conn returns the open transaction if one exists, otherwise the pool.
func (s *Store) conn() DB {
	if s.tx != nil {
		return s.tx
	}
	return s.pool
}

// Begin opens the work transaction for a load run.
func (s *Store) Begin(ctx context.Context) error {
	if s.tx != nil {
		return fmt.Errorf("load transaction already open")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin load transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// Checkpoint commits accumulated work and opens a fresh transaction so the
// run can continue. This is the loader's durability boundary.
func (s *Store) Checkpoint(ctx context.Context) error {
	if s.tx == nil {
		return fmt.Errorf("no load transaction open")
	}
	if err := s.tx.Commit(ctx); err != nil {
		s.tx = nil
		return fmt.Errorf("checkpoint commit failed: %w", err)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.tx = nil
		return fmt.Errorf("failed to reopen load transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// Close commits the final transaction and ends the run.
func (s *Store) Close(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit(ctx)
	s.tx = nil
	if err != nil {
		return fmt.Errorf("final commit failed: %w", err)
	}
	return nil
}

// RecordScope runs fn inside a savepoint on the work transaction. A
// failed record rolls back to the savepoint instead of poisoning the
// whole transaction, so the loader can keep going. Outside a run it
// just calls fn.
func (s *Store) RecordScope(ctx context.Context, fn func() error) error {
	outer := s.tx
	if outer == nil {
		return fn()
	}
	inner, err := outer.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to open record savepoint: %w", err)
	}
	s.tx = inner
	defer func() { s.tx = outer }()

	if err := fn(); err != nil {
		if rbErr := inner.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("savepoint rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := inner.Commit(ctx); err != nil {
		return fmt.Errorf("failed to release record savepoint: %w", err)
	}
	return nil
}

// Rollback discards uncommitted work.
func (s *Store) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback(ctx)
	s.tx = nil
	if err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// RefreshStatistics runs ANALYZE on the given fact table. Best effort:
// the batch is already committed when this runs, so failures are logged
// by the caller, never propagated as load failures.
func (s *Store) RefreshStatistics(ctx context.Context, table string) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf("ANALYZE %s", table))
	if err != nil {
		return fmt.Errorf("analyze %s: %w", table, err)
	}
	logging.Debug().Str("table", table).Msg("Refreshed statistics")
	return nil
}
