//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwave-data/inkwave-warehouse/internal/logging"
	"github.com/inkwave-data/inkwave-warehouse/pkg/version"
)

const metadataTable = "inkwave_metadata"

const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS inkwave_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// SaveMetadata records schema initialization metadata in the warehouse.
func SaveMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createMetadataTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	metadata := map[string]string{
		"schema_version": version.Short(),
		"initialized_at": time.Now().UTC().Format(time.RFC3339),
	}

	for key, value := range metadata {
		_, err := pool.Exec(ctx, `
            INSERT INTO inkwave_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().Msg("Saved metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, pool *pgxpool.Pool, key string) (string, error) {
	var value string
	err := pool.QueryRow(ctx, `
        SELECT value FROM inkwave_metadata WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}
