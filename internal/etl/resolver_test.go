//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package etl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkwave-data/inkwave-warehouse/internal/warehouse"
)

var testDay = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func salesRecord() warehouse.StagingSalesRecord {
	return warehouse.StagingSalesRecord{
		ID:              1,
		SaleNumber:      "S-0001",
		SaleDate:        testDay,
		EditionID:       "E100",
		ChannelCode:     "WEB",
		CurrencyCode:    "GBP",
		ProductTypeName: "Hardcover",
		Quantity:        1,
		UnitPrice:       dec("10"),
		PrintRunQty:     100,
		BindingCost:     dec("50"),
	}
}

func dailyRecord() warehouse.StagingDailyRecord {
	return warehouse.StagingDailyRecord{
		ID:              1,
		OpDate:          testDay,
		StationCode:     "STN-01",
		ProductTypeName: "Hardcover",
		PrintRunQty:     1000,
		BindingCost:     dec("200"),
		UnitsSold:       800,
		Revenue:         dec("4000"),
	}
}

func TestResolveSalesAllFound(t *testing.T) {
	store := newMemStore()
	store.seedReference(testDay)
	r := NewResolver(store)

	keys, err := r.ResolveSales(context.Background(), salesRecord())
	if err != nil {
		t.Fatalf("ResolveSales: %v", err)
	}

	want := SalesKeys{
		Time:               20240115,
		Product:            10,
		Author:             20,
		Vendor:             30,
		DistributionCenter: 40,
		Channel:            50,
		ProductType:        60,
		Currency:           70,
	}
	if keys != want {
		t.Errorf("keys = %+v, want %+v", keys, want)
	}
}

func TestResolveSalesUnknownEdition(t *testing.T) {
	store := newMemStore()
	store.seedReference(testDay)
	r := NewResolver(store)

	rec := salesRecord()
	rec.EditionID = "E999"
	keys, err := r.ResolveSales(context.Background(), rec)
	if err != nil {
		t.Fatalf("ResolveSales: %v", err)
	}

	// Author and vendor hang off the product version, so all three blank.
	if keys.Product != warehouse.UnknownKey ||
		keys.Author != warehouse.UnknownKey ||
		keys.Vendor != warehouse.UnknownKey {
		t.Errorf("product/author/vendor = %d/%d/%d, want all %d",
			keys.Product, keys.Author, keys.Vendor, warehouse.UnknownKey)
	}
	if keys.Channel != 50 || keys.Currency != 70 {
		t.Errorf("unrelated keys disturbed: %+v", keys)
	}
}

func TestResolveSalesUnknownCodes(t *testing.T) {
	store := newMemStore()
	store.seedReference(testDay)
	r := NewResolver(store)

	rec := salesRecord()
	rec.ChannelCode = "FAX"
	rec.CurrencyCode = "XXX"
	rec.ProductTypeName = "Scroll"
	keys, err := r.ResolveSales(context.Background(), rec)
	if err != nil {
		t.Fatalf("ResolveSales: %v", err)
	}
	if keys.Channel != warehouse.UnknownKey ||
		keys.Currency != warehouse.UnknownKey ||
		keys.ProductType != warehouse.UnknownKey {
		t.Errorf("keys = %+v, want unknown channel/currency/type", keys)
	}
	if keys.Time != 20240115 {
		t.Errorf("time key = %d, want 20240115", keys.Time)
	}
}

func TestResolveSalesNoTimeKey(t *testing.T) {
	store := newMemStore()
	store.seedReference(testDay)
	r := NewResolver(store)

	rec := salesRecord()
	rec.SaleDate = testDay.AddDate(0, 6, 0)
	_, err := r.ResolveSales(context.Background(), rec)
	if !errors.Is(err, ErrNoTimeKey) {
		t.Fatalf("err = %v, want ErrNoTimeKey", err)
	}
}

func TestResolveSalesProductTypeMatching(t *testing.T) {
	store := newMemStore()
	store.seedReference(testDay)
	store.types["trade-paperback"] = 61
	r := NewResolver(store)

	tests := []struct {
		name string
		in   string
		want int64
	}{
		{"case insensitive", "HARDCOVER", 60},
		{"surrounding space", "  Hardcover ", 60},
		{"plain hyphen", "Trade-Paperback", 61},
		{"non-breaking hyphen", "Trade‑Paperback", 61},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := salesRecord()
			rec.ProductTypeName = tt.in
			keys, err := r.ResolveSales(context.Background(), rec)
			if err != nil {
				t.Fatalf("ResolveSales: %v", err)
			}
			if keys.ProductType != tt.want {
				t.Errorf("product type key = %d, want %d", keys.ProductType, tt.want)
			}
		})
	}
}

func TestResolveSalesCustomDCPolicy(t *testing.T) {
	store := newMemStore()
	store.seedReference(testDay)
	r := NewResolver(store).WithDCPolicy(
		func(context.Context, DimensionStore) (int64, bool, error) {
			return 99, true, nil
		})

	keys, err := r.ResolveSales(context.Background(), salesRecord())
	if err != nil {
		t.Fatalf("ResolveSales: %v", err)
	}
	if keys.DistributionCenter != 99 {
		t.Errorf("dc key = %d, want 99", keys.DistributionCenter)
	}
}

func TestResolveSalesNoCurrentDC(t *testing.T) {
	store := newMemStore()
	store.seedReference(testDay)
	store.firstDC = 0
	r := NewResolver(store)

	keys, err := r.ResolveSales(context.Background(), salesRecord())
	if err != nil {
		t.Fatalf("ResolveSales: %v", err)
	}
	if keys.DistributionCenter != warehouse.UnknownKey {
		t.Errorf("dc key = %d, want %d", keys.DistributionCenter, warehouse.UnknownKey)
	}
}

func TestResolveDaily(t *testing.T) {
	store := newMemStore()
	store.seedReference(testDay)
	r := NewResolver(store)

	keys, err := r.ResolveDaily(context.Background(), dailyRecord())
	if err != nil {
		t.Fatalf("ResolveDaily: %v", err)
	}

	want := DailyKeys{
		Time:               20240115,
		DistributionCenter: 40,
		Vendor:             30,
		ProductType:        60,
	}
	if keys != want {
		t.Errorf("keys = %+v, want %+v", keys, want)
	}
}

func TestResolveDailyUnknownStation(t *testing.T) {
	store := newMemStore()
	store.seedReference(testDay)
	r := NewResolver(store)

	rec := dailyRecord()
	rec.StationCode = "STN-99"
	_, err := r.ResolveDaily(context.Background(), rec)
	if !errors.Is(err, ErrNoStation) {
		t.Fatalf("err = %v, want ErrNoStation", err)
	}
}

func TestResolveDailyNoTimeKey(t *testing.T) {
	store := newMemStore()
	store.seedReference(testDay)
	r := NewResolver(store)

	rec := dailyRecord()
	rec.OpDate = testDay.AddDate(-1, 0, 0)
	_, err := r.ResolveDaily(context.Background(), rec)
	if !errors.Is(err, ErrNoTimeKey) {
		t.Fatalf("err = %v, want ErrNoTimeKey", err)
	}
}
