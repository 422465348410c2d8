package hpp

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestResolveUnitFactor_SameUnitIsOne(t *testing.T) {
	units := []string{"kg", "g", "ml", "pcs", "butir", "KG", " Sdm ", "karung"}
	for _, u := range units {
		factor, ok := ResolveUnitFactor(u, u)
		if !ok {
			t.Fatalf("ResolveUnitFactor(%q, %q) reported incompatible", u, u)
		}
		if !factor.Equal(decimal.NewFromInt(1)) {
			t.Fatalf("ResolveUnitFactor(%q, %q) = %s, expected 1", u, u, factor)
		}
	}
}

func TestResolveUnitFactor_KnownPairs(t *testing.T) {
	cases := []struct {
		from, to string
		factor   string
	}{
		{"kg", "g", "1000"},
		{"g", "kg", "0.001"},
		{"l", "ml", "1000"},
		{"ons", "g", "100"},
		{"kg", "ons", "10"},
		{"lusin", "pcs", "12"},
		{"dozen", "pcs", "12"},
		{"sdm", "ml", "15"},
		{"sdt", "ml", "5"},
		{"KG", "G", "1000"}, // case-insensitive
		{"kg", "sdm", "66"}, // kitchen approximation
	}
	for _, tc := range cases {
		factor, ok := ResolveUnitFactor(tc.from, tc.to)
		if !ok {
			t.Fatalf("ResolveUnitFactor(%q, %q) reported incompatible", tc.from, tc.to)
		}
		expected, _ := decimal.NewFromString(tc.factor)
		if !factor.Equal(expected) {
			t.Fatalf("ResolveUnitFactor(%q, %q) = %s, expected %s", tc.from, tc.to, factor, expected)
		}
	}
}

func TestResolveUnitFactor_RoundTripConsistency(t *testing.T) {
	pairs := [][2]string{
		{"kg", "g"}, {"l", "ml"}, {"lusin", "pcs"}, {"sdm", "ml"}, {"kg", "ons"},
	}
	one := decimal.NewFromInt(1)
	tolerance := decimal.New(1, -9)
	for _, p := range pairs {
		forward, ok1 := ResolveUnitFactor(p[0], p[1])
		backward, ok2 := ResolveUnitFactor(p[1], p[0])
		if !ok1 || !ok2 {
			t.Fatalf("pair %v unexpectedly incompatible", p)
		}
		product := forward.Mul(backward)
		if product.Sub(one).Abs().GreaterThan(tolerance) {
			t.Fatalf("pair %v: forward*backward = %s, expected 1", p, product)
		}
	}
}

func TestResolveUnitFactor_SameClassUnknownRatioFallsBackToOne(t *testing.T) {
	// Both Count but with no real 1:1 relationship; the lenient fallback
	// is deliberate carried-over behavior.
	factor, ok := ResolveUnitFactor("butir", "ikat")
	if !ok {
		t.Fatalf("same-class pair reported incompatible")
	}
	if !factor.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("same-class fallback factor = %s, expected 1", factor)
	}
}

func TestResolveUnitFactor_CrossClassIsIncompatible(t *testing.T) {
	cases := [][2]string{
		{"kg", "ml"},
		{"g", "pcs"},
		{"l", "butir"},
		{"karung", "kg"},    // unclassified vs weight
		{"karung", "sak"},   // two distinct unclassified symbols
		{"pcs", "goni"},     // count vs unclassified
	}
	for _, tc := range cases {
		if _, ok := ResolveUnitFactor(tc[0], tc[1]); ok {
			t.Fatalf("ResolveUnitFactor(%q, %q) expected incompatible", tc[0], tc[1])
		}
	}
}

func TestClassOf(t *testing.T) {
	cases := []struct {
		unit     string
		expected UnitClass
	}{
		{"kg", ClassWeight},
		{"ML", ClassVolume},
		{"butir", ClassCount},
		{"karung", ClassUnknown},
	}
	for _, tc := range cases {
		if got := ClassOf(tc.unit); got != tc.expected {
			t.Fatalf("ClassOf(%q) = %d, expected %d", tc.unit, got, tc.expected)
		}
	}
}
