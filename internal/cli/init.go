//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkwave-data/inkwave-warehouse/internal/db"
	"github.com/inkwave-data/inkwave-warehouse/internal/logging"
	"github.com/inkwave-data/inkwave-warehouse/internal/warehouse"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the warehouse schema",
	Long: `Create the star-schema tables, sequences and unknown dimension
members in the target database. Safe to re-run; use --drop-existing to
start from a clean slate.

Example:
  inkwave-etl init --connection "postgres://..." --drop-existing`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing warehouse tables before creating the schema")
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if initDropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := warehouse.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	logging.Info().Msg("Creating schema")
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := db.SaveMetadata(ctx, pool); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().Msg("Warehouse schema ready")
	return nil
}
