package hpp

import "github.com/shopspring/decimal"

// PriceTier is one sell-price recommendation derived from a unit cost.
type PriceTier struct {
	Label         string          `json:"label"`
	MarginRatio   decimal.Decimal `json:"margin_ratio"`
	Price         decimal.Decimal `json:"price"`
	Profit        decimal.Decimal `json:"profit"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
}

// CustomPriceReview evaluates an arbitrary proposed price against a unit
// cost. The proposed price is used exactly as given, no rounding.
type CustomPriceReview struct {
	Profit        decimal.Decimal `json:"profit"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	IsLoss        bool            `json:"is_loss"`
}

var tierMargins = []struct {
	label string
	ratio decimal.Decimal
}{
	{"competitive", decimal.NewFromFloat(0.3)},
	{"standard", decimal.NewFromFloat(0.5)},
	{"premium", decimal.NewFromInt(1)},
}

// PriceTiers returns the fixed-margin price suggestions for a unit cost,
// each rounded up to the nearest 100 currency units so every suggestion
// covers the cost.
func PriceTiers(totalCost decimal.Decimal) []PriceTier {
	one := decimal.NewFromInt(1)
	tiers := make([]PriceTier, 0, len(tierMargins))
	for _, tier := range tierMargins {
		price := ceilToHundred(totalCost.Mul(one.Add(tier.ratio)))
		profit := price.Sub(totalCost)
		tiers = append(tiers, PriceTier{
			Label:         tier.label,
			MarginRatio:   tier.ratio,
			Price:         price,
			Profit:        profit,
			MarginPercent: marginPercent(profit, price),
		})
	}
	return tiers
}

// EvaluateCustomPrice reports profit and margin for a caller-chosen price.
func EvaluateCustomPrice(totalCost, proposedPrice decimal.Decimal) CustomPriceReview {
	profit := proposedPrice.Sub(totalCost)
	return CustomPriceReview{
		Profit:        profit,
		MarginPercent: marginPercent(profit, proposedPrice),
		IsLoss:        profit.IsNegative(),
	}
}

func ceilToHundred(value decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return value.Div(hundred).Ceil().Mul(hundred)
}

// margin percent is defined as 0 when price is 0 to avoid dividing by zero
func marginPercent(profit, price decimal.Decimal) decimal.Decimal {
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return profit.Div(price).Mul(decimal.NewFromInt(100))
}
