package workflow

import (
	"context"
	"strings"

	"github.com/warungdata/hpp_backend/config"
	"github.com/warungdata/hpp_backend/models"
	"gorm.io/gorm"
)

// GormCatalogStore is the production CatalogStore backed by the shared gorm
// connection. Each method is its own short transaction; the reconciler's
// partial-batch semantics depend on that.
type GormCatalogStore struct{}

func NewGormCatalogStore() *GormCatalogStore {
	return &GormCatalogStore{}
}

func (s *GormCatalogStore) FindItemsByName(ctx context.Context, name string) ([]*models.Item, error) {
	db := config.GetDB()
	var items []*models.Item
	err := db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormCatalogStore) InsertItem(ctx context.Context, item *models.Item) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(item).Error
}

func (s *GormCatalogStore) UpdateItemFields(ctx context.Context, id int, fields map[string]interface{}) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", id).Updates(fields).Error
}

// InsertStockMovement writes the movement and advances the item's cached
// stock in one transaction.
func (s *GormCatalogStore) InsertStockMovement(ctx context.Context, movement *models.StockMovement) error {
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movement).Error; err != nil {
			return err
		}
		return tx.Model(&models.Item{}).Where("id = ?", movement.ItemId).
			Update("stock", gorm.Expr("stock + ?", movement.QtyChange)).Error
	})
}

func (s *GormCatalogStore) ResolveOrCreateCategory(ctx context.Context, name string) (int, error) {
	category, err := models.FindOrCreateItemCategory(ctx, name)
	if err != nil {
		return 0, err
	}
	return category.ID, nil
}
