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
	loadFact                    string
	loadSalesCheckpointInterval int
	loadDailyCheckpointInterval int
	loadSourceSystem            string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load pending staging records into the fact tables",
	Long: `Run the batch fact loaders. Pending staging rows (validated, not
yet processed) are resolved against the dimensions, converted to the base
currency, and appended to the fact tables with periodic checkpoints.
Records the loader cannot place are skipped and stay pending; only a
batch-level fault fails the command.

Example:
  inkwave-etl load --fact sales
  inkwave-etl load --fact all --sales-checkpoint-interval 1000`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadFact, "fact", "all",
		"fact table to load: sales, daily, or all")
	loadCmd.Flags().IntVar(&loadSalesCheckpointInterval, "sales-checkpoint-interval", 0,
		"records per durable commit for the sales load")
	loadCmd.Flags().IntVar(&loadDailyCheckpointInterval, "daily-checkpoint-interval", 0,
		"records per durable commit for the daily-operations load")
	loadCmd.Flags().StringVar(&loadSourceSystem, "source-system", "",
		"source system tag stamped on loaded fact rows")
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadSalesCheckpointInterval > 0 {
		cfg.Load.SalesCheckpointInterval = loadSalesCheckpointInterval
	}
	if loadDailyCheckpointInterval > 0 {
		cfg.Load.DailyCheckpointInterval = loadDailyCheckpointInterval
	}
	if loadSourceSystem != "" {
		cfg.Load.SourceSystem = loadSourceSystem
	}

	if err := cfg.ValidateLoad(); err != nil {
		return err
	}
	if loadFact != "sales" && loadFact != "daily" && loadFact != "all" {
		return fmt.Errorf("invalid --fact %q: must be sales, daily, or all", loadFact)
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

	loader := etl.NewLoader(warehouse.NewStore(pool), etl.Config{
		SalesCheckpointInterval: cfg.Load.SalesCheckpointInterval,
		DailyCheckpointInterval: cfg.Load.DailyCheckpointInterval,
		SourceSystem:            cfg.Load.SourceSystem,
	})

	if loadFact == "sales" || loadFact == "all" {
		summary, err := loader.LoadSales(ctx)
		if err != nil {
			return err
		}
		printSummary(cmd, summary)
	}
	if loadFact == "daily" || loadFact == "all" {
		// Each fact table gets its own store so the second load starts
		// from a clean transaction state.
		loader = etl.NewLoader(warehouse.NewStore(pool), etl.Config{
			SalesCheckpointInterval: cfg.Load.SalesCheckpointInterval,
			DailyCheckpointInterval: cfg.Load.DailyCheckpointInterval,
			SourceSystem:            cfg.Load.SourceSystem,
		})
		summary, err := loader.LoadDaily(ctx)
		if err != nil {
			return err
		}
		printSummary(cmd, summary)
	}
	return nil
}

func printSummary(cmd *cobra.Command, s etl.Summary) {
	logging.Info().
		Str("fact_table", s.FactTable).
		Int64("batch_id", s.BatchID).
		Int64("loaded", s.Loaded).
		Int64("errors", s.Errors).
		Msg("Batch finished")
	cmd.Printf("%s: batch %d loaded %d records (%d errors) in %s\n",
		s.FactTable, s.BatchID, s.Loaded, s.Errors, s.Elapsed.Round(time.Millisecond))
}
