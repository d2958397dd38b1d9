//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package etl

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int64) *int64 { return &n }

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestCalculateSalesMeasures(t *testing.T) {
	m := CalculateSalesMeasures(SalesInputs{
		Quantity:     10,
		UnitPrice:    dec("20.00"),
		DiscountRate: decPtr("0.10"),
		PrintRunQty:  100,
		BindingCost:  dec("50"),
		ExchangeRate: dec("0.79"),
	})

	assertDecimal(t, "unit_price_base", m.UnitPriceBase, "15.80")
	assertDecimal(t, "gross_amount", m.GrossAmount, "158.00")
	assertDecimal(t, "discount_amount", m.DiscountAmount, "15.80")
	assertDecimal(t, "net_amount", m.NetAmount, "142.20")
	assertDecimal(t, "unit_cost", m.UnitCost, "0.50")
	assertDecimal(t, "total_cost", m.TotalCost, "5.00")
	assertDecimal(t, "gross_profit", m.GrossProfit, "137.20")
	if got := m.GrossMarginPct.StringFixed(2); got != "96.48" {
		t.Errorf("gross_margin_pct = %s, want 96.48", got)
	}
}

func TestCalculateSalesMeasuresNoDiscount(t *testing.T) {
	m := CalculateSalesMeasures(SalesInputs{
		Quantity:     2,
		UnitPrice:    dec("10.00"),
		PrintRunQty:  10,
		BindingCost:  dec("5"),
		ExchangeRate: dec("1"),
	})

	assertDecimal(t, "discount_amount", m.DiscountAmount, "0")
	assertDecimal(t, "net_amount", m.NetAmount, "20.00")
	assertDecimal(t, "gross_profit", m.GrossProfit, "19.00")
}

func TestCalculateSalesMeasuresGuards(t *testing.T) {
	tests := []struct {
		name string
		in   SalesInputs
	}{
		{
			name: "zero print run",
			in: SalesInputs{
				Quantity: 5, UnitPrice: dec("10"), PrintRunQty: 0,
				BindingCost: dec("50"), ExchangeRate: dec("1"),
			},
		},
		{
			name: "negative print run",
			in: SalesInputs{
				Quantity: 5, UnitPrice: dec("10"), PrintRunQty: -3,
				BindingCost: dec("50"), ExchangeRate: dec("1"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := CalculateSalesMeasures(tt.in)
			assertDecimal(t, "unit_cost", m.UnitCost, "0")
			assertDecimal(t, "total_cost", m.TotalCost, "0")
		})
	}
}

func TestCalculateSalesMeasuresZeroNetAmount(t *testing.T) {
	// Full discount drives net to zero; margin must be zero, not a fault.
	m := CalculateSalesMeasures(SalesInputs{
		Quantity:     1,
		UnitPrice:    dec("10"),
		DiscountRate: decPtr("1.0"),
		PrintRunQty:  10,
		BindingCost:  dec("5"),
		ExchangeRate: dec("1"),
	})

	assertDecimal(t, "net_amount", m.NetAmount, "0")
	assertDecimal(t, "gross_margin_pct", m.GrossMarginPct, "0")
}

func TestCalculateDailyMeasures(t *testing.T) {
	m := CalculateDailyMeasures(DailyInputs{
		PrintRunQty: 1000,
		BindingCost: dec("200"),
		UnitsSold:   800,
		Returns:     intPtr(40),
		Revenue:     dec("4000"),
	})

	if m.NetUnits != 760 {
		t.Errorf("net_units = %d, want 760", m.NetUnits)
	}
	assertDecimal(t, "unit_binding_cost", m.UnitBindingCost, "0.2")
	assertDecimal(t, "utilization_pct", m.UtilizationPct, "80")
	assertDecimal(t, "cost_of_goods_sold", m.CostOfGoodsSold, "160")
	assertDecimal(t, "gross_profit", m.GrossProfit, "3840")
	assertDecimal(t, "gross_margin_pct", m.GrossMarginPct, "96")
	assertDecimal(t, "return_rate_pct", m.ReturnRatePct, "5")
}

func TestCalculateDailyMeasuresZeroPrintRun(t *testing.T) {
	m := CalculateDailyMeasures(DailyInputs{
		PrintRunQty: 0,
		BindingCost: dec("200"),
		UnitsSold:   50,
		Revenue:     dec("500"),
	})

	assertDecimal(t, "unit_binding_cost", m.UnitBindingCost, "0")
	assertDecimal(t, "utilization_pct", m.UtilizationPct, "0")
	assertDecimal(t, "cost_of_goods_sold", m.CostOfGoodsSold, "0")
	assertDecimal(t, "gross_profit", m.GrossProfit, "500")
	assertDecimal(t, "gross_margin_pct", m.GrossMarginPct, "100")
	if m.NetUnits != 50 {
		t.Errorf("net_units = %d, want 50", m.NetUnits)
	}
}

func TestCalculateDailyMeasuresGuards(t *testing.T) {
	tests := []struct {
		name string
		in   DailyInputs
	}{
		{
			name: "zero units sold",
			in: DailyInputs{
				PrintRunQty: 100, BindingCost: dec("10"),
				UnitsSold: 0, Returns: intPtr(5), Revenue: dec("0"),
			},
		},
		{
			name: "negative revenue",
			in: DailyInputs{
				PrintRunQty: 100, BindingCost: dec("10"),
				UnitsSold: 10, Revenue: dec("-50"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := CalculateDailyMeasures(tt.in)
			if tt.in.UnitsSold <= 0 {
				assertDecimal(t, "return_rate_pct", m.ReturnRatePct, "0")
			}
			if !tt.in.Revenue.IsPositive() {
				assertDecimal(t, "gross_margin_pct", m.GrossMarginPct, "0")
			}
		})
	}
}
