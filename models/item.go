package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warungdata/hpp_backend/config"
	"github.com/warungdata/hpp_backend/utils"
)

// Item is a catalog entry: either a raw material consumed by recipes or a
// finished product sold to customers.
type Item struct {
	ID           int             `gorm:"primary_key" json:"id"`
	Name         string          `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Sku          string          `gorm:"index;size:100;not null" json:"sku"`
	CategoryId   int             `gorm:"index;not null;default:0" json:"category_id"`
	ItemType     ItemType        `gorm:"type:enum('R','F');default:R" json:"item_type"`
	Unit         string          `gorm:"size:20" json:"unit"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"selling_price"`
	Stock        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock"`
	MinStock     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"min_stock"`
	ImageUrl     string          `gorm:"size:255" json:"image_url"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewItem struct {
	Name         string          `json:"name" binding:"required"`
	Sku          string          `json:"sku"`
	CategoryId   int             `json:"category_id"`
	ItemType     ItemType        `json:"item_type" binding:"required"`
	Unit         string          `json:"unit"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	MinStock     decimal.Decimal `json:"min_stock"`
	ImageUrl     string          `json:"image_url"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewItem) validate(ctx context.Context, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("name is required")
	}
	if err := input.ItemType.Validate(); err != nil {
		return err
	}
	if input.Sku != "" {
		if err := utils.ValidateUnique[Item](ctx, "sku", input.Sku, id); err != nil {
			return err
		}
	}
	if input.CategoryId > 0 {
		if err := utils.ValidateResourceId[ItemCategory](ctx, input.CategoryId); err != nil {
			return errors.New("category not found")
		}
	}
	return nil
}

func CreateItem(ctx context.Context, input *NewItem) (*Item, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	sku := input.Sku
	if sku == "" {
		sku = utils.GenerateSku(input.Name)
	}

	item := Item{
		Name:         strings.TrimSpace(input.Name),
		Sku:          sku,
		CategoryId:   input.CategoryId,
		ItemType:     input.ItemType,
		Unit:         input.Unit,
		CostPrice:    input.CostPrice,
		SellingPrice: input.SellingPrice,
		Stock:        decimal.Zero,
		MinStock:     input.MinStock,
		ImageUrl:     input.ImageUrl,
		IsActive:     utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func UpdateItem(ctx context.Context, id int, input *NewItem) (*Item, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	item, err := utils.FetchModel[Item](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&item).Updates(map[string]interface{}{
		"Name":         strings.TrimSpace(input.Name),
		"CategoryId":   input.CategoryId,
		"Unit":         input.Unit,
		"CostPrice":    input.CostPrice,
		"SellingPrice": input.SellingPrice,
		"MinStock":     input.MinStock,
		"ImageUrl":     input.ImageUrl,
	}).Error
	if err != nil {
		return nil, err
	}
	return item, nil
}

func DeleteItem(ctx context.Context, id int) (*Item, error) {
	item, err := utils.FetchModel[Item](ctx, id)
	if err != nil {
		return nil, err
	}

	// movements are the audit trail, so an item with history is only deactivated
	count, err := utils.ResourceCountWhere[StockMovement](ctx, "item_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("item has stock movements")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func GetItem(ctx context.Context, id int) (*Item, error) {
	return utils.FetchModel[Item](ctx, id)
}

func GetItems(ctx context.Context, name *string, itemType *ItemType) ([]*Item, error) {
	db := config.GetDB()
	var results []*Item

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if itemType != nil {
		dbCtx = dbCtx.Where("item_type = ?", *itemType)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveItem(ctx context.Context, id int, isActive bool) (*Item, error) {
	item, err := utils.FetchModel[Item](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&item).Updates(map[string]interface{}{
		"is_active": isActive,
	}).Error
	if err != nil {
		return nil, err
	}
	return item, nil
}
