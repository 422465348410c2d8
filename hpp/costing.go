package hpp

import "github.com/shopspring/decimal"

// CostLine is one ingredient or packaging entry: bought as BuyQty of BuyUnit
// for BuyPrice, consumed as UsageQty of UsageUnit per finished unit.
type CostLine struct {
	Name      string          `json:"name" binding:"required"`
	UsageQty  decimal.Decimal `json:"usage_qty"`
	UsageUnit string          `json:"usage_unit"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	BuyQty    decimal.Decimal `json:"buy_qty"`
	BuyUnit   string          `json:"buy_unit"`
}

// LineCost is the evaluated cost of a single line. Incompatible marks lines
// whose buy/usage units cannot be reconciled; such lines carry zero cost and
// are excluded from totals, but the flag must be surfaced to the caller.
type LineCost struct {
	Name         string          `json:"name"`
	Cost         decimal.Decimal `json:"cost"`
	Incompatible bool            `json:"incompatible"`
}

// FixedCostEntry is a monthly overhead item (rent, staff, electricity).
// Negative amounts are clamped to zero during aggregation.
type FixedCostEntry struct {
	Name        string          `json:"name"`
	MonthlyCost decimal.Decimal `json:"monthly_cost"`
}

// SalesForecast carries the expected sales volume used to allocate fixed
// cost per unit. Values <= 0 are clamped to 1 to keep the division defined.
type SalesForecast struct {
	TargetUnitsPerMonth decimal.Decimal `json:"target_units_per_month"`
}

// CostResult is the full costing outcome for one product.
type CostResult struct {
	VariableCostPerUnit decimal.Decimal `json:"variable_cost_per_unit"`
	FixedCostPerUnit    decimal.Decimal `json:"fixed_cost_per_unit"`
	TotalCost           decimal.Decimal `json:"total_cost"`
	Lines               []LineCost      `json:"lines"`
}

// EvaluateCostLine computes the cost one line contributes per finished unit.
// An incomplete line (zero usage, price or buy quantity) costs zero; only a
// unit-class mismatch yields the Incompatible flag.
func EvaluateCostLine(line CostLine) LineCost {
	if line.UsageQty.LessThanOrEqual(decimal.Zero) ||
		line.BuyPrice.LessThanOrEqual(decimal.Zero) ||
		line.BuyQty.LessThanOrEqual(decimal.Zero) {
		return LineCost{Name: line.Name, Cost: decimal.Zero}
	}

	factor, ok := ResolveUnitFactor(line.BuyUnit, line.UsageUnit)
	if !ok {
		return LineCost{Name: line.Name, Cost: decimal.Zero, Incompatible: true}
	}

	costPerBuyUnit := line.BuyPrice.Div(line.BuyQty)
	costPerUsageUnit := costPerBuyUnit.Div(factor)
	return LineCost{Name: line.Name, Cost: costPerUsageUnit.Mul(line.UsageQty)}
}

// Aggregate sums variable cost across lines, allocates monthly fixed cost
// over the forecast, and returns the combined unit cost. Incompatible lines
// are excluded from the variable total but retained in Lines so callers can
// warn per line. Always returns a complete result.
func Aggregate(lines []CostLine, fixedCosts []FixedCostEntry, forecast SalesForecast) CostResult {
	result := CostResult{Lines: make([]LineCost, 0, len(lines))}

	variable := decimal.Zero
	for _, line := range lines {
		lineCost := EvaluateCostLine(line)
		result.Lines = append(result.Lines, lineCost)
		if !lineCost.Incompatible {
			variable = variable.Add(lineCost.Cost)
		}
	}

	monthly := decimal.Zero
	for _, fixedCost := range fixedCosts {
		if fixedCost.MonthlyCost.IsPositive() {
			monthly = monthly.Add(fixedCost.MonthlyCost)
		}
	}

	target := forecast.TargetUnitsPerMonth
	if target.LessThanOrEqual(decimal.Zero) {
		target = decimal.NewFromInt(1)
	}

	result.VariableCostPerUnit = variable
	result.FixedCostPerUnit = monthly.Div(target)
	result.TotalCost = variable.Add(result.FixedCostPerUnit)
	return result
}
