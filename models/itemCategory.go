package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/warungdata/hpp_backend/config"
	"github.com/warungdata/hpp_backend/utils"
	"gorm.io/gorm"
)

type ItemCategory struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewItemCategory struct {
	Name string `json:"name" binding:"required"`
}

func (input *NewItemCategory) validate(ctx context.Context, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("name is required")
	}
	return utils.ValidateUnique[ItemCategory](ctx, "name", input.Name, id)
}

func CreateItemCategory(ctx context.Context, input *NewItemCategory) (*ItemCategory, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	category := ItemCategory{
		Name:     strings.TrimSpace(input.Name),
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func UpdateItemCategory(ctx context.Context, id int, input *NewItemCategory) (*ItemCategory, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	category, err := utils.FetchModel[ItemCategory](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&category).Updates(map[string]interface{}{
		"Name": strings.TrimSpace(input.Name),
	}).Error
	if err != nil {
		return nil, err
	}
	return category, nil
}

func DeleteItemCategory(ctx context.Context, id int) (*ItemCategory, error) {
	category, err := utils.FetchModel[ItemCategory](ctx, id)
	if err != nil {
		return nil, err
	}

	// don't delete while items still point at it
	count, err := utils.ResourceCountWhere[Item](ctx, "category_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("used by item")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func GetItemCategory(ctx context.Context, id int) (*ItemCategory, error) {
	return utils.FetchModel[ItemCategory](ctx, id)
}

func GetItemCategories(ctx context.Context, name *string) ([]*ItemCategory, error) {
	db := config.GetDB()
	var results []*ItemCategory

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindOrCreateItemCategory resolves a category by case-insensitive name,
// creating it when absent. Used by ingestion so imports never fail on an
// unseen category label.
func FindOrCreateItemCategory(ctx context.Context, name string) (*ItemCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("category name is required")
	}

	db := config.GetDB()
	var category ItemCategory
	err := db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = ItemCategory{Name: name, IsActive: utils.NewTrue()}
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
