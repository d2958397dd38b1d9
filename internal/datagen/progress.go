//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package datagen

import (
	"github.com/inkwave-data/inkwave-warehouse/internal/logging"
)

// ProgressReporter tracks and reports seeding progress per table.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a progress reporter logging every interval rows.
func NewProgressReporter(tableName string, totalRows, interval int64) *ProgressReporter {
	if interval < 1 {
		interval = 1
	}
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update adds inserted rows and logs when an interval boundary is crossed.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Info().
			Str("table", p.tableName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Seeding data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}
