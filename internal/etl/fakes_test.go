//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package etl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/inkwave-data/inkwave-warehouse/internal/warehouse"
)

// memStore is an in-memory WarehouseStore for loader and resolver tests.
// Dimension maps are keyed by natural key; rate keys are currency+time.
type memStore struct {
	timeKeys   map[string]int64
	products   map[string]warehouse.ProductKeys
	stations   map[string]warehouse.StationKeys
	firstDC    int64
	channels   map[string]int64
	types      map[string]int64
	currencies map[string]int64
	rates      map[string]decimal.Decimal

	pendingSales []warehouse.StagingSalesRecord
	pendingDaily []warehouse.StagingDailyRecord

	nextKey        int64
	salesFacts     []warehouse.FactSalesRecord
	dailyFacts     []warehouse.FactDailyOpsRecord
	processedSales map[int64]bool
	processedDaily map[int64]bool

	batches   []warehouse.LoadBatch
	commits   int
	rollbacks int
	txOpen    bool
	analyzed  []string

	beginBatchErr  error
	checkpointErr  error
	insertSalesErr func(f warehouse.FactSalesRecord) error
}

func newMemStore() *memStore {
	return &memStore{
		timeKeys:       map[string]int64{},
		products:       map[string]warehouse.ProductKeys{},
		stations:       map[string]warehouse.StationKeys{},
		channels:       map[string]int64{},
		types:          map[string]int64{},
		currencies:     map[string]int64{},
		rates:          map[string]decimal.Decimal{},
		processedSales: map[int64]bool{},
		processedDaily: map[int64]bool{},
	}
}

func dateKey(d time.Time) string { return d.Format("2006-01-02") }

func rateKey(currencyKey, timeKey int64) string {
	return fmt.Sprintf("%d/%d", currencyKey, timeKey)
}

func (m *memStore) addDay(d time.Time) {
	m.timeKeys[dateKey(d)] = TimeKeyFor(d)
}

func (m *memStore) TimeKeyByDate(_ context.Context, date time.Time) (int64, bool, error) {
	key, ok := m.timeKeys[dateKey(date)]
	return key, ok, nil
}

func (m *memStore) ProductByEdition(_ context.Context, editionID string) (warehouse.ProductKeys, bool, error) {
	keys, ok := m.products[editionID]
	return keys, ok, nil
}

func (m *memStore) DistributionCenterByStation(_ context.Context, code string) (warehouse.StationKeys, bool, error) {
	keys, ok := m.stations[code]
	return keys, ok, nil
}

func (m *memStore) FirstCurrentDistributionCenter(_ context.Context) (int64, bool, error) {
	return m.firstDC, m.firstDC > 0, nil
}

func (m *memStore) ChannelKeyByCode(_ context.Context, code string) (int64, bool, error) {
	key, ok := m.channels[code]
	return key, ok, nil
}

func (m *memStore) ProductTypeKeyByName(_ context.Context, name string) (int64, bool, error) {
	key, ok := m.types[strings.ToLower(name)]
	return key, ok, nil
}

func (m *memStore) CurrencyKeyByCode(_ context.Context, code string) (int64, bool, error) {
	key, ok := m.currencies[code]
	return key, ok, nil
}

func (m *memStore) RateFor(_ context.Context, currencyKey, timeKey int64) (decimal.Decimal, bool, error) {
	rate, ok := m.rates[rateKey(currencyKey, timeKey)]
	return rate, ok, nil
}

func (m *memStore) NextSalesKey(context.Context) (int64, error) {
	m.nextKey++
	return m.nextKey, nil
}

func (m *memStore) NextDailyKey(context.Context) (int64, error) {
	m.nextKey++
	return m.nextKey, nil
}

func (m *memStore) InsertSalesFact(_ context.Context, f warehouse.FactSalesRecord) error {
	if m.insertSalesErr != nil {
		if err := m.insertSalesErr(f); err != nil {
			return err
		}
	}
	m.salesFacts = append(m.salesFacts, f)
	return nil
}

func (m *memStore) InsertDailyFact(_ context.Context, f warehouse.FactDailyOpsRecord) error {
	m.dailyFacts = append(m.dailyFacts, f)
	return nil
}

func (m *memStore) ForEachPendingSales(_ context.Context, fn func(warehouse.StagingSalesRecord) error) error {
	for _, rec := range m.pendingSales {
		if m.processedSales[rec.ID] {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) ForEachPendingDaily(_ context.Context, fn func(warehouse.StagingDailyRecord) error) error {
	for _, rec := range m.pendingDaily {
		if m.processedDaily[rec.ID] {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) MarkSalesProcessed(_ context.Context, id int64) error {
	m.processedSales[id] = true
	return nil
}

func (m *memStore) MarkDailyProcessed(_ context.Context, id int64) error {
	m.processedDaily[id] = true
	return nil
}

func (m *memStore) BeginBatch(_ context.Context, factTable string) (warehouse.LoadBatch, error) {
	if m.beginBatchErr != nil {
		return warehouse.LoadBatch{}, m.beginBatchErr
	}
	batch := warehouse.LoadBatch{
		ID:        int64(len(m.batches)) + 1,
		FactTable: factTable,
		StartedAt: time.Now().UTC(),
		Status:    warehouse.BatchRunning,
	}
	m.batches = append(m.batches, batch)
	return batch, nil
}

func (m *memStore) FinalizeBatch(_ context.Context, batch warehouse.LoadBatch) error {
	for i := range m.batches {
		if m.batches[i].ID == batch.ID {
			m.batches[i] = batch
			return nil
		}
	}
	return fmt.Errorf("no batch %d", batch.ID)
}

func (m *memStore) Begin(context.Context) error {
	m.txOpen = true
	return nil
}

func (m *memStore) Checkpoint(context.Context) error {
	if m.checkpointErr != nil {
		return m.checkpointErr
	}
	m.commits++
	return nil
}

func (m *memStore) Close(context.Context) error {
	if m.txOpen {
		m.commits++
		m.txOpen = false
	}
	return nil
}

func (m *memStore) Rollback(context.Context) error {
	m.rollbacks++
	m.txOpen = false
	return nil
}

func (m *memStore) RecordScope(_ context.Context, fn func() error) error {
	return fn()
}

func (m *memStore) RefreshStatistics(_ context.Context, table string) error {
	m.analyzed = append(m.analyzed, table)
	return nil
}

// seedReference loads a minimal consistent dimension set used by most
// loader tests.
func (m *memStore) seedReference(day time.Time) {
	m.addDay(day)
	m.products["E100"] = warehouse.ProductKeys{Product: 10, Author: 20, Vendor: 30}
	m.stations["STN-01"] = warehouse.StationKeys{DistributionCenter: 40, Vendor: 30}
	m.firstDC = 40
	m.channels["WEB"] = 50
	m.types["hardcover"] = 60
	m.currencies["GBP"] = 70
	m.currencies["USD"] = 71
	m.currencies["EUR"] = 72
}
