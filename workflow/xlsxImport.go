package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warungdata/hpp_backend/utils"
	"github.com/xuri/excelize/v2"
)

// Expected sheet layout, first row is the header:
// Name | Quantity | Unit | UnitCost | SellingPrice | Sku | Category | MinStock
const (
	colName = iota
	colQuantity
	colUnit
	colUnitCost
	colSellingPrice
	colSku
	colCategory
	colMinStock
)

// NormalizeXlsx reads Sheet1 of an xlsx stream into the common ingestion
// shape. Rows with a blank name are kept so the reconciler records them as
// failed; malformed numbers abort the import with the offending row number.
func NormalizeXlsx(reader io.Reader) ([]IncomingLineItem, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("unable to open xlsx file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet: %v", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("sheet has no data rows")
	}

	lines := make([]IncomingLineItem, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		line, err := populateLineFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %v", idx+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func populateLineFromRow(row []string) (IncomingLineItem, error) {
	line := IncomingLineItem{
		Name:         strings.TrimSpace(cell(row, colName)),
		Unit:         strings.TrimSpace(cell(row, colUnit)),
		Sku:          strings.TrimSpace(cell(row, colSku)),
		CategoryName: strings.TrimSpace(cell(row, colCategory)),
	}

	line.Quantity = decimal.NewFromInt(1)
	if raw := strings.TrimSpace(cell(row, colQuantity)); raw != "" {
		qty, err := utils.ParseDecimal(raw)
		if err != nil {
			return line, fmt.Errorf("could not parse quantity: %v", err)
		}
		line.Quantity = qty
	}

	if raw := strings.TrimSpace(cell(row, colUnitCost)); raw != "" {
		cost, err := utils.ParseAmount(raw)
		if err != nil {
			return line, fmt.Errorf("could not parse unit cost: %v", err)
		}
		line.UnitCost = cost
	}

	if raw := strings.TrimSpace(cell(row, colSellingPrice)); raw != "" {
		price, err := utils.ParseAmount(raw)
		if err != nil {
			return line, fmt.Errorf("could not parse selling price: %v", err)
		}
		line.SellingPrice = &price
	}

	if raw := strings.TrimSpace(cell(row, colMinStock)); raw != "" {
		minStock, err := utils.ParseDecimal(raw)
		if err != nil {
			return line, fmt.Errorf("could not parse min stock: %v", err)
		}
		line.MinStock = &minStock
	}

	return line, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// ImportPurchasesFromXlsx is the locked entry point used by the HTTP layer.
// Concurrent uploads to the same destination are serialized so their
// create/update sequences cannot interleave.
func ImportPurchasesFromXlsx(ctx context.Context, store CatalogStore, reader io.Reader, policy ReconcilePolicy) (*ReconciliationPlan, error) {
	release, err := utils.ImportLock(ctx, string(policy.Destination), "xlsxImport.go", "ImportPurchasesFromXlsx")
	if err != nil {
		return nil, err
	}
	defer release()

	lines, err := NormalizeXlsx(reader)
	if err != nil {
		return nil, err
	}
	return ReconcileBatch(ctx, store, lines, policy)
}
