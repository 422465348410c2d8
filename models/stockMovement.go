package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warungdata/hpp_backend/config"
	"github.com/warungdata/hpp_backend/utils"
	"gorm.io/gorm"
)

// StockMovement is the append-only audit trail of quantity changes. The
// item's cached stock column is advanced in the same transaction as the
// insert so the two never drift.
type StockMovement struct {
	ID           int             `gorm:"primary_key" json:"id"`
	ItemId       int             `gorm:"index;not null" json:"item_id"`
	QtyChange    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty_change"`
	MovementType MovementType    `gorm:"type:enum('purchase','sale','adjustment','opname');not null" json:"movement_type"`
	Note         string          `gorm:"size:255" json:"note"`
	UserId       int             `gorm:"index" json:"user_id"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewStockMovement struct {
	ItemId       int             `json:"item_id" binding:"required"`
	QtyChange    decimal.Decimal `json:"qty_change"`
	MovementType MovementType    `json:"movement_type" binding:"required"`
	Note         string          `json:"note"`
}

func CreateStockMovement(ctx context.Context, input *NewStockMovement) (*StockMovement, error) {
	if err := input.MovementType.Validate(); err != nil {
		return nil, err
	}
	if input.QtyChange.IsZero() {
		return nil, errors.New("qty change must not be zero")
	}
	if err := utils.ValidateResourceId[Item](ctx, input.ItemId); err != nil {
		return nil, errors.New("item not found")
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	movement := StockMovement{
		ItemId:       input.ItemId,
		QtyChange:    input.QtyChange,
		MovementType: input.MovementType,
		Note:         input.Note,
		UserId:       userId,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}
		return tx.Model(&Item{}).Where("id = ?", input.ItemId).
			Update("stock", gorm.Expr("stock + ?", input.QtyChange)).Error
	})
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func GetStockMovements(ctx context.Context, itemId int) ([]*StockMovement, error) {
	db := config.GetDB()
	var results []*StockMovement
	err := db.WithContext(ctx).
		Where("item_id = ?", itemId).
		Order("created_at DESC, id DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
