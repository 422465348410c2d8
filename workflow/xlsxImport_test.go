package workflow

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func buildSheet(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Name", "Quantity", "Unit", "UnitCost", "SellingPrice", "Sku", "Category", "MinStock"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("writing header: %v", err)
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cellRef, &row); err != nil {
			t.Fatalf("writing row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("writing buffer: %v", err)
	}
	return buf
}

func TestNormalizeXlsx_ReadsRowsIntoLineItems(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"Beras", "25", "kg", "Rp 13,000", "", "", "Sembako", "10"},
		{"Nasi Goreng", "1", "porsi", "9000", "18,000", "AR-NGOR-001", "Makanan", ""},
	})

	lines, err := NormalizeXlsx(buf)
	if err != nil {
		t.Fatalf("NormalizeXlsx: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, expected 2", len(lines))
	}

	if lines[0].Name != "Beras" || lines[0].Unit != "kg" {
		t.Fatalf("line 0 not normalized: %+v", lines[0])
	}
	if !lines[0].UnitCost.Equal(decimal.NewFromInt(13000)) {
		t.Fatalf("line 0 unit cost = %s, expected 13000", lines[0].UnitCost)
	}
	if lines[0].MinStock == nil || !lines[0].MinStock.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("line 0 min stock not parsed: %+v", lines[0].MinStock)
	}
	if lines[0].SellingPrice != nil {
		t.Fatalf("line 0 selling price should be nil when the cell is empty")
	}

	if lines[1].Sku != "AR-NGOR-001" || lines[1].CategoryName != "Makanan" {
		t.Fatalf("line 1 not normalized: %+v", lines[1])
	}
	if lines[1].SellingPrice == nil || !lines[1].SellingPrice.Equal(decimal.NewFromInt(18000)) {
		t.Fatalf("line 1 selling price not parsed: %+v", lines[1].SellingPrice)
	}
}

func TestNormalizeXlsx_MalformedNumberAbortsWithRowContext(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"Beras", "banyak", "kg", "13000", "", "", "", ""},
	})
	if _, err := NormalizeXlsx(buf); err == nil {
		t.Fatalf("expected error for malformed quantity")
	}
}

func TestNormalizeXlsx_EmptySheetRejected(t *testing.T) {
	buf := buildSheet(t, nil)
	if _, err := NormalizeXlsx(buf); err == nil {
		t.Fatalf("expected error for sheet without data rows")
	}
}

func TestNormalizeXlsxThenReconcile_BlankNameFailsRowOnly(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"", "5", "kg", "10000", "", "", "", ""},
		{"Terigu", "5", "kg", "11000", "", "", "", ""},
	})

	lines, err := NormalizeXlsx(buf)
	if err != nil {
		t.Fatalf("NormalizeXlsx: %v", err)
	}

	store := newFakeCatalogStore()
	plan, err := ReconcileBatch(context.Background(), store, lines, ReconcilePolicy{Destination: DestinationRawMaterial})
	if err != nil {
		t.Fatalf("ReconcileBatch: %v", err)
	}
	if plan.Failed != 1 || plan.Created != 1 {
		t.Fatalf("plan counts = created %d / failed %d, expected 1/1", plan.Created, plan.Failed)
	}
}
