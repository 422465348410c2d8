// Package hpp computes the unit cost (HPP, harga pokok penjualan) of a
// finished product from its ingredient and packaging lines, allocates monthly
// fixed cost across a sales forecast, and derives sell-price recommendations.
//
// All functions here are pure: no I/O, no shared mutable state. Callers may
// invoke them concurrently without coordination.
package hpp

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnitClass groups unit symbols that can be converted between each other.
// Symbols not in any membership list act as their own singleton class:
// they convert only to themselves.
type UnitClass int

const (
	ClassUnknown UnitClass = iota
	ClassWeight
	ClassVolume
	ClassCount
)

var unitClasses = map[string]UnitClass{
	// weight
	"kg":   ClassWeight,
	"g":    ClassWeight,
	"gr":   ClassWeight,
	"gram": ClassWeight,
	"mg":   ClassWeight,
	"ons":  ClassWeight,
	// volume
	"l":     ClassVolume,
	"liter": ClassVolume,
	"ml":    ClassVolume,
	"sdm":   ClassVolume,
	"sdt":   ClassVolume,
	// count
	"pcs":    ClassCount,
	"buah":   ClassCount,
	"butir":  ClassCount,
	"lembar": ClassCount,
	"ikat":   ClassCount,
	"siung":  ClassCount,
	"batang": ClassCount,
	"lusin":  ClassCount,
	"dozen":  ClassCount,
	"porsi":  ClassCount,
}

// ClassOf returns the compatibility class of a unit symbol.
func ClassOf(unit string) UnitClass {
	return unitClasses[normalizeUnit(unit)]
}

type unitPair struct {
	from string
	to   string
}

// conversionFactors holds known canonical ratios: 1 <from> = factor <to>.
// The reverse direction is derived as 1/factor.
//
// The kg->sdm and liter->sdm entries are kitchen APPROXIMATIONS (a level
// tablespoon of a typical dry ingredient), kept because recipe inputs are
// routinely written that way. They are not authoritative.
var conversionFactors = map[unitPair]decimal.Decimal{
	{"kg", "g"}:      decimal.NewFromInt(1000),
	{"kg", "gr"}:     decimal.NewFromInt(1000),
	{"kg", "gram"}:   decimal.NewFromInt(1000),
	{"kg", "ons"}:    decimal.NewFromInt(10),
	{"ons", "g"}:     decimal.NewFromInt(100),
	{"g", "mg"}:      decimal.NewFromInt(1000),
	{"l", "ml"}:      decimal.NewFromInt(1000),
	{"liter", "ml"}:  decimal.NewFromInt(1000),
	{"sdm", "ml"}:    decimal.NewFromInt(15),
	{"sdt", "ml"}:    decimal.NewFromInt(5),
	{"sdm", "sdt"}:   decimal.NewFromInt(3),
	{"lusin", "pcs"}: decimal.NewFromInt(12),
	{"dozen", "pcs"}: decimal.NewFromInt(12),
	// approximations
	{"kg", "sdm"}:    decimal.NewFromInt(66),
	{"liter", "sdm"}: decimal.NewFromInt(66),
	{"l", "sdm"}:     decimal.NewFromInt(66),
}

func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// ResolveUnitFactor returns the multiplicative factor converting one fromUnit
// into toUnit, i.e. 1 <fromUnit> = factor <toUnit>. The second return value is
// false when the two units belong to different classes and no conversion
// exists.
//
// When both units sit in the same class but no explicit ratio is known, the
// factor falls back to 1. That lenient default is carried-over behavior for
// loosely-specified kitchen units ("butir" vs "ikat"); treat the result as an
// approximation, not an exact ratio.
func ResolveUnitFactor(fromUnit, toUnit string) (decimal.Decimal, bool) {
	from := normalizeUnit(fromUnit)
	to := normalizeUnit(toUnit)

	if from == to {
		return decimal.NewFromInt(1), true
	}
	if factor, ok := conversionFactors[unitPair{from, to}]; ok {
		return factor, true
	}
	if factor, ok := conversionFactors[unitPair{to, from}]; ok {
		return decimal.NewFromInt(1).Div(factor), true
	}

	fromClass := ClassOf(from)
	toClass := ClassOf(to)
	if fromClass == ClassUnknown || toClass == ClassUnknown {
		return decimal.Zero, false
	}
	if fromClass == toClass {
		// same class, unknown exact ratio
		return decimal.NewFromInt(1), true
	}
	return decimal.Zero, false
}
