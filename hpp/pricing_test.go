package hpp

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceTiers_FixedMargins(t *testing.T) {
	tiers := PriceTiers(decimal.NewFromInt(10000))
	expected := map[string]int64{
		"competitive": 13000,
		"standard":    15000,
		"premium":     20000,
	}
	if len(tiers) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(tiers))
	}
	totalCost := decimal.NewFromInt(10000)
	for _, tier := range tiers {
		want, ok := expected[tier.Label]
		if !ok {
			t.Fatalf("unexpected tier label %q", tier.Label)
		}
		if !tier.Price.Equal(decimal.NewFromInt(want)) {
			t.Fatalf("tier %s price = %s, expected %d", tier.Label, tier.Price, want)
		}
		if tier.Price.LessThan(totalCost) {
			t.Fatalf("tier %s price %s below cost", tier.Label, tier.Price)
		}
		if !tier.Profit.Equal(tier.Price.Sub(totalCost)) {
			t.Fatalf("tier %s profit = %s, inconsistent with price", tier.Label, tier.Profit)
		}
	}
}

func TestPriceTiers_RoundsUpToHundred(t *testing.T) {
	// 1234 * 1.3 = 1604.2 -> 1700
	tiers := PriceTiers(decimal.NewFromInt(1234))
	if !tiers[0].Price.Equal(decimal.NewFromInt(1700)) {
		t.Fatalf("competitive price = %s, expected 1700", tiers[0].Price)
	}
}

func TestPriceTiers_ZeroCostPricesZero(t *testing.T) {
	for _, tier := range PriceTiers(decimal.Zero) {
		if !tier.Price.IsZero() {
			t.Fatalf("tier %s price = %s, expected 0 for zero cost", tier.Label, tier.Price)
		}
		if !tier.MarginPercent.IsZero() {
			t.Fatalf("tier %s margin percent = %s, expected 0 for zero price", tier.Label, tier.MarginPercent)
		}
	}
}

func TestEvaluateCustomPrice_Loss(t *testing.T) {
	review := EvaluateCustomPrice(decimal.NewFromInt(10000), decimal.NewFromInt(8000))
	if !review.IsLoss {
		t.Fatalf("expected loss for price below cost")
	}
	if !review.Profit.Equal(decimal.NewFromInt(-2000)) {
		t.Fatalf("profit = %s, expected -2000", review.Profit)
	}
}

func TestEvaluateCustomPrice_NoRoundingApplied(t *testing.T) {
	review := EvaluateCustomPrice(decimal.NewFromInt(10000), decimal.NewFromInt(12345))
	if !review.Profit.Equal(decimal.NewFromInt(2345)) {
		t.Fatalf("profit = %s, expected 2345 (price must be used as given)", review.Profit)
	}
	if review.IsLoss {
		t.Fatalf("unexpected loss flag")
	}
}

func TestEvaluateCustomPrice_ZeroPriceMarginIsZero(t *testing.T) {
	review := EvaluateCustomPrice(decimal.NewFromInt(5000), decimal.Zero)
	if !review.MarginPercent.IsZero() {
		t.Fatalf("margin percent = %s, expected 0 for zero price", review.MarginPercent)
	}
	if !review.IsLoss {
		t.Fatalf("zero price against positive cost should be a loss")
	}
}
