//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package etl

import (
	"context"
	"time"

	"github.com/inkwave-data/inkwave-warehouse/internal/warehouse"
)

// KeySource allocates fact surrogate keys. *warehouse.Store satisfies it.
type KeySource interface {
	NextSalesKey(ctx context.Context) (int64, error)
	NextDailyKey(ctx context.Context) (int64, error)
}

// FactWriter persists assembled fact rows. *warehouse.Store satisfies it.
type FactWriter interface {
	InsertSalesFact(ctx context.Context, f warehouse.FactSalesRecord) error
	InsertDailyFact(ctx context.Context, f warehouse.FactDailyOpsRecord) error
}

// Assembler builds fact rows from resolved keys and calculated measures,
// stamps lineage, and writes them.
type Assembler struct {
	keys         KeySource
	writer       FactWriter
	sourceSystem string
	now          func() time.Time
}

// NewAssembler creates an assembler stamping the given source system on
// every row.
func NewAssembler(keys KeySource, writer FactWriter, sourceSystem string) *Assembler {
	return &Assembler{
		keys:         keys,
		writer:       writer,
		sourceSystem: sourceSystem,
		now:          time.Now,
	}
}

// AssembleSales writes one sales fact and returns it.
func (a *Assembler) AssembleSales(ctx context.Context, rec warehouse.StagingSalesRecord,
	keys SalesKeys, m SalesMeasures, batchID int64) (warehouse.FactSalesRecord, error) {

	salesKey, err := a.keys.NextSalesKey(ctx)
	if err != nil {
		return warehouse.FactSalesRecord{}, err
	}

	fact := warehouse.FactSalesRecord{
		SalesKey: salesKey,

		TimeKey:               keys.Time,
		ProductKey:            keys.Product,
		AuthorKey:             keys.Author,
		VendorKey:             keys.Vendor,
		DistributionCenterKey: keys.DistributionCenter,
		ChannelKey:            keys.Channel,
		ProductTypeKey:        keys.ProductType,
		CurrencyKey:           keys.Currency,

		SaleNumber: rec.SaleNumber,

		Quantity:          rec.Quantity,
		UnitPriceOriginal: rec.UnitPrice,
		ExchangeRate:      m.ExchangeRate,
		UnitPriceBase:     m.UnitPriceBase,
		GrossAmount:       m.GrossAmount,
		DiscountAmount:    m.DiscountAmount,
		NetAmount:         m.NetAmount,
		UnitCost:          m.UnitCost,
		TotalCost:         m.TotalCost,
		GrossProfit:       m.GrossProfit,
		GrossMarginPct:    m.GrossMarginPct,

		SourceSystem:   a.sourceSystem,
		SourceRecordID: rec.ID,
		BatchID:        batchID,
		LoadedAt:       a.now().UTC(),
	}

	if err := a.writer.InsertSalesFact(ctx, fact); err != nil {
		return warehouse.FactSalesRecord{}, err
	}
	return fact, nil
}

// AssembleDaily writes one daily-operations fact and returns it.
func (a *Assembler) AssembleDaily(ctx context.Context, rec warehouse.StagingDailyRecord,
	keys DailyKeys, m DailyMeasures, batchID int64) (warehouse.FactDailyOpsRecord, error) {

	dailyKey, err := a.keys.NextDailyKey(ctx)
	if err != nil {
		return warehouse.FactDailyOpsRecord{}, err
	}

	var returns int64
	if rec.Returns != nil {
		returns = *rec.Returns
	}

	fact := warehouse.FactDailyOpsRecord{
		DailyKey: dailyKey,

		TimeKey:               keys.Time,
		DistributionCenterKey: keys.DistributionCenter,
		VendorKey:             keys.Vendor,
		ProductTypeKey:        keys.ProductType,

		StationCode:     rec.StationCode,
		ProductTypeName: rec.ProductTypeName,

		PrintRunQty:     rec.PrintRunQty,
		BindingCost:     rec.BindingCost,
		UnitsSold:       rec.UnitsSold,
		Returns:         returns,
		NetUnits:        m.NetUnits,
		UnitBindingCost: m.UnitBindingCost,
		UtilizationPct:  m.UtilizationPct,
		CostOfGoodsSold: m.CostOfGoodsSold,
		Revenue:         rec.Revenue,
		GrossProfit:     m.GrossProfit,
		GrossMarginPct:  m.GrossMarginPct,
		ReturnRatePct:   m.ReturnRatePct,

		SourceSystem:   a.sourceSystem,
		SourceRecordID: rec.ID,
		BatchID:        batchID,
		LoadedAt:       a.now().UTC(),
	}

	if err := a.writer.InsertDailyFact(ctx, fact); err != nil {
		return warehouse.FactDailyOpsRecord{}, err
	}
	return fact, nil
}
