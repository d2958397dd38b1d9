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
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent load batches",
	Long: `Show the most recent load batches with their terminal state and
record counts, newest first.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20,
		"number of batches to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, `
        SELECT batch_id, fact_table, started_at, finished_at,
               records_processed, records_failed, status
        FROM etl_load_batch
        ORDER BY batch_id DESC
        LIMIT $1
    `, statusLimit)
	if err != nil {
		return fmt.Errorf("failed to read batch history: %w", err)
	}
	defer rows.Close()

	cmd.Printf("%-8s %-15s %-20s %-10s %10s %8s\n",
		"BATCH", "FACT TABLE", "STARTED", "STATUS", "LOADED", "ERRORS")

	count := 0
	for rows.Next() {
		var (
			id, processed, failed int64
			factTable, status     string
			startedAt             time.Time
			finishedAt            *time.Time
		)
		if err := rows.Scan(&id, &factTable, &startedAt, &finishedAt,
			&processed, &failed, &status); err != nil {
			return fmt.Errorf("failed to scan batch row: %w", err)
		}
		cmd.Printf("%-8d %-15s %-20s %-10s %10d %8d\n",
			id, factTable, startedAt.Format("2006-01-02 15:04:05"),
			status, processed, failed)
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read batch history: %w", err)
	}
	if count == 0 {
		cmd.Println("No load batches recorded yet.")
	}
	return nil
}
