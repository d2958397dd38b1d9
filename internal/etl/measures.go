//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

// Package etl implements the fact-loading transformation engine: dimension
// resolution, exchange rate fallback, measure calculation, fact assembly,
// and the batch loader that drives them.
package etl

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SalesInputs are the raw quantities a sales measure calculation needs.
// UnitPrice is in the original transaction currency.
type SalesInputs struct {
	Quantity     int64
	UnitPrice    decimal.Decimal
	DiscountRate *decimal.Decimal
	PrintRunQty  int64
	BindingCost  decimal.Decimal
	ExchangeRate decimal.Decimal
}

// SalesMeasures are the derived financial measures of one sales fact,
// plus the exchange rate they were derived with.
type SalesMeasures struct {
	ExchangeRate   decimal.Decimal
	UnitPriceBase  decimal.Decimal
	GrossAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	NetAmount      decimal.Decimal
	UnitCost       decimal.Decimal
	TotalCost      decimal.Decimal
	GrossProfit    decimal.Decimal
	GrossMarginPct decimal.Decimal
}

// CalculateSalesMeasures derives the sales measures. Pure function, no I/O.
// Nonpositive denominators short-circuit to zero: a persisted fact must
// never carry a division fault, NaN, or infinity.
func CalculateSalesMeasures(in SalesInputs) SalesMeasures {
	qty := decimal.NewFromInt(in.Quantity)

	unitPriceBase := in.UnitPrice.Mul(in.ExchangeRate)
	gross := unitPriceBase.Mul(qty)

	discount := decimal.Zero
	if in.DiscountRate != nil {
		discount = gross.Mul(*in.DiscountRate)
	}
	net := gross.Sub(discount)

	unitCost := decimal.Zero
	if in.PrintRunQty > 0 {
		unitCost = in.BindingCost.Div(decimal.NewFromInt(in.PrintRunQty))
	}
	totalCost := unitCost.Mul(qty)
	profit := net.Sub(totalCost)

	margin := decimal.Zero
	if net.IsPositive() {
		margin = profit.Div(net).Mul(hundred)
	}

	return SalesMeasures{
		ExchangeRate:   in.ExchangeRate,
		UnitPriceBase:  unitPriceBase,
		GrossAmount:    gross,
		DiscountAmount: discount,
		NetAmount:      net,
		UnitCost:       unitCost,
		TotalCost:      totalCost,
		GrossProfit:    profit,
		GrossMarginPct: margin,
	}
}

// DailyInputs are the raw quantities a daily-operations calculation needs.
type DailyInputs struct {
	PrintRunQty int64
	BindingCost decimal.Decimal
	UnitsSold   int64
	Returns     *int64
	Revenue     decimal.Decimal
}

// DailyMeasures are the derived measures of one daily-operations fact.
type DailyMeasures struct {
	NetUnits        int64
	UnitBindingCost decimal.Decimal
	UtilizationPct  decimal.Decimal
	CostOfGoodsSold decimal.Decimal
	GrossProfit     decimal.Decimal
	GrossMarginPct  decimal.Decimal
	ReturnRatePct   decimal.Decimal
}

// CalculateDailyMeasures derives the daily-operations measures. Pure
// function with the same zero-on-nonpositive-denominator guarantees as
// CalculateSalesMeasures.
func CalculateDailyMeasures(in DailyInputs) DailyMeasures {
	var returns int64
	if in.Returns != nil {
		returns = *in.Returns
	}

	sold := decimal.NewFromInt(in.UnitsSold)

	unitBindingCost := decimal.Zero
	utilization := decimal.Zero
	if in.PrintRunQty > 0 {
		printRun := decimal.NewFromInt(in.PrintRunQty)
		unitBindingCost = in.BindingCost.Div(printRun)
		utilization = sold.Div(printRun).Mul(hundred)
	}

	cogs := unitBindingCost.Mul(sold)
	profit := in.Revenue.Sub(cogs)

	margin := decimal.Zero
	if in.Revenue.IsPositive() {
		margin = profit.Div(in.Revenue).Mul(hundred)
	}

	returnRate := decimal.Zero
	if in.UnitsSold > 0 {
		returnRate = decimal.NewFromInt(returns).Div(sold).Mul(hundred)
	}

	return DailyMeasures{
		NetUnits:        in.UnitsSold - returns,
		UnitBindingCost: unitBindingCost,
		UtilizationPct:  utilization,
		CostOfGoodsSold: cogs,
		GrossProfit:     profit,
		GrossMarginPct:  margin,
		ReturnRatePct:   returnRate,
	}
}
