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
	"github.com/inkwave-data/inkwave-warehouse/internal/warehouse"
)

var (
	seedEditions     int
	seedStations     int
	seedSalesRecords int
	seedDailyRecords int
	seedUnknownRatio float64
	seedRandomSeed   uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed dimensions and staging tables with synthetic data",
	Long: `Populate the dimension tables, historical exchange rates, and the
two staging feeds with synthetic publishing data. Intended for development
and load-test environments. Run 'init' and 'calendar' first.

Example:
  inkwave-etl seed --editions 500 --sales-records 5000 --random-seed 42`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedEditions, "editions", 0,
		"number of product editions to create")
	seedCmd.Flags().IntVar(&seedStations, "stations", 0,
		"number of distribution center stations to create")
	seedCmd.Flags().IntVar(&seedSalesRecords, "sales-records", 0,
		"number of staging sales rows to create")
	seedCmd.Flags().IntVar(&seedDailyRecords, "daily-records", 0,
		"number of staging daily-operations rows to create")
	seedCmd.Flags().Float64Var(&seedUnknownRatio, "unknown-ratio", 0,
		"fraction of staging rows referencing absent natural keys")
	seedCmd.Flags().Uint64Var(&seedRandomSeed, "random-seed", 0,
		"random seed for reproducible datasets (0 = time-based)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if seedEditions > 0 {
		cfg.Seed.Editions = seedEditions
	}
	if seedStations > 0 {
		cfg.Seed.Stations = seedStations
	}
	if seedSalesRecords > 0 {
		cfg.Seed.SalesRecords = seedSalesRecords
	}
	if seedDailyRecords > 0 {
		cfg.Seed.DailyRecords = seedDailyRecords
	}
	if seedUnknownRatio > 0 {
		cfg.Seed.UnknownRatio = seedUnknownRatio
	}
	if seedRandomSeed != 0 {
		cfg.Seed.RandomSeed = seedRandomSeed
	}

	if err := cfg.ValidateSeed(); err != nil {
		return err
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

	if _, err := db.GetMetadataValue(ctx, pool, "schema_version"); err != nil {
		return fmt.Errorf("warehouse schema not initialized; run 'inkwave-etl init' first")
	}

	seeder := warehouse.NewSeeder(pool, cfg.Seed.RandomSeed)
	return seeder.Seed(ctx, warehouse.SeedParams{
		Editions:     cfg.Seed.Editions,
		Stations:     cfg.Seed.Stations,
		SalesRecords: cfg.Seed.SalesRecords,
		DailyRecords: cfg.Seed.DailyRecords,
		UnknownRatio: cfg.Seed.UnknownRatio,
		StartDate:    start,
		EndDate:      end,
	})
}
