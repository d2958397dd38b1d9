//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

// Package warehouse defines the dimensional model and the PostgreSQL-backed
// stores the fact loaders run against.
package warehouse

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownKey is the sentinel surrogate key recorded when a natural key has
// no current dimension member. Every dimension table carries a -1 member so
// fact rows always join.
const UnknownKey int64 = -1

// BatchStatus is the lifecycle state of a load batch.
type BatchStatus string

const (
	BatchNotStarted BatchStatus = "NOT_STARTED"
	BatchRunning    BatchStatus = "RUNNING"
	BatchCommitted  BatchStatus = "COMMITTED"
	BatchFailed     BatchStatus = "FAILED"
)

// StagingSalesRecord is one validated row from the raw sales feed.
// Rows are immutable once marked VALID and consumed exactly once.
type StagingSalesRecord struct {
	ID              int64
	SaleNumber      string
	SaleDate        time.Time
	EditionID       string
	ChannelCode     string
	CurrencyCode    string
	ProductTypeName string
	Quantity        int64
	UnitPrice       decimal.Decimal
	DiscountRate    *decimal.Decimal
	PrintRunQty     int64
	BindingCost     decimal.Decimal
	Notes           string
}

// StagingDailyRecord is one validated row from the raw daily-operations feed.
type StagingDailyRecord struct {
	ID              int64
	OpDate          time.Time
	StationCode     string
	ProductTypeName string
	PrintRunQty     int64
	BindingCost     decimal.Decimal
	UnitsSold       int64
	Returns         *int64
	Revenue         decimal.Decimal
	VendorScore     *decimal.Decimal
	Notes           string
}

// ProductKeys holds the surrogate keys reached through the product
// dimension. Author and vendor are derived transitively from the resolved
// product version, so a product miss blanks all three.
type ProductKeys struct {
	Product int64
	Author  int64
	Vendor  int64
}

// StationKeys holds the surrogate keys reached through a distribution
// center station. Vendor is inseparable from the station at daily grain.
type StationKeys struct {
	DistributionCenter int64
	Vendor             int64
}

// TimeDimRow is one calendar day in the time dimension. The surrogate key
// is the smart key YYYYMMDD so date-to-key resolution is deterministic.
type TimeDimRow struct {
	TimeKey      int64
	CalendarDate time.Time
	DayOfWeek    int
	DayName      string
	DayOfMonth   int
	Month        int
	MonthName    string
	Quarter      int
	Year         int
	WeekOfYear   int
	IsWeekend    bool
	IsHoliday    bool
}

// FactSalesRecord is one immutable row of the sales fact table. Every
// derived measure is a pure function of the raw inputs and the exchange
// rate stored on the same row.
type FactSalesRecord struct {
	SalesKey int64

	TimeKey               int64
	ProductKey            int64
	AuthorKey             int64
	VendorKey             int64
	DistributionCenterKey int64
	ChannelKey            int64
	ProductTypeKey        int64
	CurrencyKey           int64

	// SaleNumber is the degenerate dimension carried from the source feed.
	SaleNumber string

	Quantity          int64
	UnitPriceOriginal decimal.Decimal
	ExchangeRate      decimal.Decimal
	UnitPriceBase     decimal.Decimal
	GrossAmount       decimal.Decimal
	DiscountAmount    decimal.Decimal
	NetAmount         decimal.Decimal
	UnitCost          decimal.Decimal
	TotalCost         decimal.Decimal
	GrossProfit       decimal.Decimal
	GrossMarginPct    decimal.Decimal

	SourceSystem   string
	SourceRecordID int64
	BatchID        int64
	LoadedAt       time.Time
}

// FactDailyOpsRecord is one immutable row of the daily-operations fact
// table at distribution-center-day grain.
type FactDailyOpsRecord struct {
	DailyKey int64

	TimeKey               int64
	DistributionCenterKey int64
	VendorKey             int64
	ProductTypeKey        int64

	// StationCode and ProductTypeName form, with the time key, the
	// degenerate composite identifier of the source row.
	StationCode     string
	ProductTypeName string

	PrintRunQty     int64
	BindingCost     decimal.Decimal
	UnitsSold       int64
	Returns         int64
	NetUnits        int64
	UnitBindingCost decimal.Decimal
	UtilizationPct  decimal.Decimal
	CostOfGoodsSold decimal.Decimal
	Revenue         decimal.Decimal
	GrossProfit     decimal.Decimal
	GrossMarginPct  decimal.Decimal
	ReturnRatePct   decimal.Decimal

	SourceSystem   string
	SourceRecordID int64
	BatchID        int64
	LoadedAt       time.Time
}

// LoadBatch groups one load run. Created when the run starts, finalized
// exactly once when it ends.
type LoadBatch struct {
	ID               int64
	FactTable        string
	StartedAt        time.Time
	FinishedAt       time.Time
	RecordsProcessed int64
	RecordsFailed    int64
	Status           BatchStatus
}
