package models

import "errors"

type MovementType string

const (
	MovementTypePurchase   MovementType = "purchase"
	MovementTypeSale       MovementType = "sale"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeOpname     MovementType = "opname"
)

func (t MovementType) Validate() error {
	switch t {
	case MovementTypePurchase, MovementTypeSale, MovementTypeAdjustment, MovementTypeOpname:
		return nil
	}
	return errors.New("invalid movement type")
}

// ItemType separates purchased ingredients from sellable menu entries.
type ItemType string

const (
	ItemTypeRawMaterial ItemType = "R"
	ItemTypeFinished    ItemType = "F"
)

func (t ItemType) Validate() error {
	switch t {
	case ItemTypeRawMaterial, ItemTypeFinished:
		return nil
	}
	return errors.New("invalid item type")
}
