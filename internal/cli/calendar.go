//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwave-data/inkwave-warehouse/internal/db"
	"github.com/inkwave-data/inkwave-warehouse/internal/etl"
	"github.com/inkwave-data/inkwave-warehouse/internal/logging"
	"github.com/inkwave-data/inkwave-warehouse/internal/warehouse"
)

var (
	calendarStart string
	calendarEnd   string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Populate the time dimension",
	Long: `Generate one time dimension row per calendar day across the
configured range. Existing days are left untouched, so extending the
range later is safe.

Example:
  inkwave-etl calendar --start 2023-01-01 --end 2026-12-31`,
	RunE: runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&calendarStart, "start", "",
		"first calendar date (YYYY-MM-DD)")
	calendarCmd.Flags().StringVar(&calendarEnd, "end", "",
		"last calendar date (YYYY-MM-DD)")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if calendarStart != "" {
		cfg.Calendar.StartDate = calendarStart
	}
	if calendarEnd != "" {
		cfg.Calendar.EndDate = calendarEnd
	}

	if err := cfg.ValidateCalendar(); err != nil {
		return err
	}

	start, err := time.Parse("2006-01-02", cfg.Calendar.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", cfg.Calendar.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	rows := etl.GenerateCalendar(start, end)
	logging.Info().
		Str("start", cfg.Calendar.StartDate).
		Str("end", cfg.Calendar.EndDate).
		Int("days", len(rows)).
		Msg("Populating time dimension")

	store := warehouse.NewStore(pool)
	inserted, err := store.InsertTimeRows(ctx, rows)
	if err != nil {
		return fmt.Errorf("failed to populate time dimension: %w", err)
	}

	logging.Info().
		Int64("inserted", inserted).
		Int("skipped", len(rows)-int(inserted)).
		Msg("Time dimension populated")
	return nil
}
