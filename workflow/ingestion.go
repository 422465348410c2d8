package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warungdata/hpp_backend/config"
	"github.com/warungdata/hpp_backend/models"
	"github.com/warungdata/hpp_backend/utils"
)

// IncomingLineItem is one candidate purchase row. Manual entry, receipt
// extraction and xlsx import all normalize into this shape before
// reconciliation.
type IncomingLineItem struct {
	Name         string           `json:"name" binding:"required"`
	Quantity     decimal.Decimal  `json:"quantity"`
	Unit         string           `json:"unit"`
	UnitCost     decimal.Decimal  `json:"unit_cost"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	Sku          string           `json:"sku"`
	CategoryName string           `json:"category_name"`
	CategoryId   int              `json:"category_id"`
	MinStock     *decimal.Decimal `json:"min_stock"`
	ImageUrl     string           `json:"image_url"`
}

type Destination string

const (
	DestinationRawMaterial     Destination = "rawMaterial"
	DestinationFinishedCatalog Destination = "finishedCatalog"
)

// ReconcilePolicy is passed explicitly into ReconcileBatch; there is no
// ambient configuration lookup.
type ReconcilePolicy struct {
	Destination      Destination `json:"destination" binding:"required"`
	FallbackCategory string      `json:"fallback_category"`
	Note             string      `json:"note"`
}

// CatalogStore is the record-store boundary the reconciler folds over.
// FindItemsByName matches trimmed names case-insensitively and returns rows
// in the store's own order; the reconciler never re-sorts.
type CatalogStore interface {
	FindItemsByName(ctx context.Context, name string) ([]*models.Item, error)
	InsertItem(ctx context.Context, item *models.Item) error
	UpdateItemFields(ctx context.Context, id int, fields map[string]interface{}) error
	InsertStockMovement(ctx context.Context, movement *models.StockMovement) error
	ResolveOrCreateCategory(ctx context.Context, name string) (int, error)
}

type ItemAction string

const (
	ItemActionCreated ItemAction = "created"
	ItemActionUpdated ItemAction = "updated"
	ItemActionFailed  ItemAction = "failed"
)

type ItemResult struct {
	Name     string                `json:"name"`
	Action   ItemAction            `json:"action"`
	ItemId   int                   `json:"item_id,omitempty"`
	Movement *models.StockMovement `json:"movement,omitempty"`
	Error    string                `json:"error,omitempty"`
}

type ReconciliationPlan struct {
	BatchId string       `json:"batch_id"`
	Results []ItemResult `json:"results"`
	Created int          `json:"created"`
	Updated int          `json:"updated"`
	Failed  int          `json:"failed"`
}

const defaultFallbackCategory = "raw materials"

// ReconcileBatch folds over the batch in input order. Each item is matched
// against the store plus a working view of records already touched this
// batch, so two rows with the same new name resolve to one created record.
// Each item's persistence is its own unit of work; a failing item is
// recorded in the plan and its siblings keep going.
func ReconcileBatch(ctx context.Context, store CatalogStore, items []IncomingLineItem, policy ReconcilePolicy) (*ReconciliationPlan, error) {
	if policy.Destination != DestinationRawMaterial && policy.Destination != DestinationFinishedCatalog {
		return nil, fmt.Errorf("unknown destination %q", policy.Destination)
	}
	if policy.FallbackCategory == "" {
		policy.FallbackCategory = defaultFallbackCategory
	}

	logger := config.GetLogger()
	plan := &ReconciliationPlan{
		BatchId: uuid.NewString(),
		Results: make([]ItemResult, 0, len(items)),
	}

	// records matched or created so far in this batch, by normalized name
	workingView := make(map[string]*models.Item, len(items))

	for _, incoming := range items {
		result := reconcileItem(ctx, store, workingView, incoming, policy)
		switch result.Action {
		case ItemActionCreated:
			plan.Created++
		case ItemActionUpdated:
			plan.Updated++
		case ItemActionFailed:
			plan.Failed++
			config.LogError(logger, "ingestion.go", "ReconcileBatch", "reconciling line item", incoming, errors.New(result.Error))
		}
		plan.Results = append(plan.Results, result)
	}
	return plan, nil
}

func reconcileItem(ctx context.Context, store CatalogStore, workingView map[string]*models.Item, incoming IncomingLineItem, policy ReconcilePolicy) ItemResult {
	name := strings.TrimSpace(incoming.Name)
	if name == "" {
		return ItemResult{Name: incoming.Name, Action: ItemActionFailed, Error: "name is required"}
	}
	key := strings.ToLower(name)

	item, err := matchCatalogRecord(ctx, store, workingView, key, name)
	if err != nil {
		return ItemResult{Name: name, Action: ItemActionFailed, Error: err.Error()}
	}

	action := ItemActionUpdated
	if item == nil {
		action = ItemActionCreated
		item, err = createCatalogRecord(ctx, store, name, incoming, policy)
	} else {
		err = updateCatalogRecord(ctx, store, item, incoming, policy)
	}
	if err != nil {
		return ItemResult{Name: name, Action: ItemActionFailed, Error: err.Error()}
	}
	workingView[key] = item

	movement := &models.StockMovement{
		ItemId:       item.ID,
		QtyChange:    incoming.Quantity,
		MovementType: models.MovementTypePurchase,
		Note:         policy.Note,
	}
	if userId, ok := utils.GetUserIdFromContext(ctx); ok {
		movement.UserId = userId
	}
	if err := store.InsertStockMovement(ctx, movement); err != nil {
		return ItemResult{Name: name, Action: ItemActionFailed, ItemId: item.ID, Error: err.Error()}
	}

	return ItemResult{Name: name, Action: action, ItemId: item.ID, Movement: movement}
}

// matchCatalogRecord consults the working view before the store, so records
// created earlier in the same batch are seen. A nil item with nil error
// means not found.
func matchCatalogRecord(ctx context.Context, store CatalogStore, workingView map[string]*models.Item, key string, name string) (*models.Item, error) {
	if item, ok := workingView[key]; ok {
		return item, nil
	}

	matches, err := store.FindItemsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		config.LogWarn(config.GetLogger(), "ingestion.go", "matchCatalogRecord", "ambiguous catalog match, using first", name, "multiple records share this name")
	}
	return matches[0], nil
}

func createCatalogRecord(ctx context.Context, store CatalogStore, name string, incoming IncomingLineItem, policy ReconcilePolicy) (*models.Item, error) {
	item := &models.Item{
		Name:      name,
		Unit:      incoming.Unit,
		CostPrice: incoming.UnitCost,
		MinStock:  utils.DereferencePtr(incoming.MinStock),
		Stock:     decimal.Zero,
		IsActive:  utils.NewTrue(),
	}

	if policy.Destination == DestinationRawMaterial {
		// ingredients always land in the fallback bucket, whatever the row says
		item.ItemType = models.ItemTypeRawMaterial
		categoryId, err := store.ResolveOrCreateCategory(ctx, policy.FallbackCategory)
		if err != nil {
			return nil, err
		}
		item.CategoryId = categoryId
	} else {
		item.ItemType = models.ItemTypeFinished
		item.SellingPrice = utils.DereferencePtr(incoming.SellingPrice)
		item.ImageUrl = incoming.ImageUrl
		categoryId, err := resolveIncomingCategory(ctx, store, incoming)
		if err != nil {
			return nil, err
		}
		item.CategoryId = categoryId
	}

	item.Sku = incoming.Sku
	if item.Sku == "" {
		item.Sku = utils.GenerateSku(name)
	}

	if err := store.InsertItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func updateCatalogRecord(ctx context.Context, store CatalogStore, item *models.Item, incoming IncomingLineItem, policy ReconcilePolicy) error {
	fields := map[string]interface{}{}

	if policy.Destination == DestinationRawMaterial {
		if !item.CostPrice.Equal(incoming.UnitCost) {
			fields["cost_price"] = incoming.UnitCost
			item.CostPrice = incoming.UnitCost
		}
		if incoming.MinStock != nil {
			fields["min_stock"] = *incoming.MinStock
			item.MinStock = *incoming.MinStock
		}
	} else {
		fields["cost_price"] = incoming.UnitCost
		item.CostPrice = incoming.UnitCost

		sellingPrice := utils.DereferencePtr(incoming.SellingPrice)
		fields["selling_price"] = sellingPrice
		item.SellingPrice = sellingPrice

		minStock := utils.DereferencePtr(incoming.MinStock)
		fields["min_stock"] = minStock
		item.MinStock = minStock

		if incoming.CategoryId > 0 || incoming.CategoryName != "" {
			categoryId, err := resolveIncomingCategory(ctx, store, incoming)
			if err != nil {
				return err
			}
			fields["category_id"] = categoryId
			item.CategoryId = categoryId
		}
		// absence of an image never clears an existing one
		if incoming.ImageUrl != "" {
			fields["image_url"] = incoming.ImageUrl
			item.ImageUrl = incoming.ImageUrl
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return store.UpdateItemFields(ctx, item.ID, fields)
}

func resolveIncomingCategory(ctx context.Context, store CatalogStore, incoming IncomingLineItem) (int, error) {
	if incoming.CategoryId > 0 {
		return incoming.CategoryId, nil
	}
	if incoming.CategoryName != "" {
		return store.ResolveOrCreateCategory(ctx, incoming.CategoryName)
	}
	return 0, nil
}
