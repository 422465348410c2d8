package workflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warungdata/hpp_backend/utils"
)

// visionLineItem is the raw shape the receipt-extraction provider returns.
// Amounts arrive as display strings ("Rp 20,000") and quantities may be
// missing entirely.
type visionLineItem struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	Unit      string `json:"unit"`
	UnitCost  string `json:"unit_cost"`
	TotalCost string `json:"total_cost"`
}

type visionPayload struct {
	Items []visionLineItem `json:"items"`
}

// ParseVisionItems normalizes provider output into the common ingestion
// shape. A missing quantity defaults to 1; a missing unit cost is derived
// from total cost when possible. Rows with a blank name are passed through
// so the reconciler records them as failed instead of dropping them
// silently.
func ParseVisionItems(raw []byte) ([]IncomingLineItem, error) {
	var payload visionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("could not decode extraction payload: %w", err)
	}

	lines := make([]IncomingLineItem, 0, len(payload.Items))
	for idx, row := range payload.Items {
		line := IncomingLineItem{
			Name: strings.TrimSpace(row.Name),
			Unit: strings.TrimSpace(row.Unit),
		}

		line.Quantity = decimal.NewFromInt(1)
		if strings.TrimSpace(row.Quantity) != "" {
			qty, err := utils.ParseAmount(row.Quantity)
			if err != nil {
				return nil, fmt.Errorf("row %d: could not parse quantity: %v", idx+1, err)
			}
			line.Quantity = qty
		}

		switch {
		case strings.TrimSpace(row.UnitCost) != "":
			cost, err := utils.ParseAmount(row.UnitCost)
			if err != nil {
				return nil, fmt.Errorf("row %d: could not parse unit cost: %v", idx+1, err)
			}
			line.UnitCost = cost
		case strings.TrimSpace(row.TotalCost) != "":
			total, err := utils.ParseAmount(row.TotalCost)
			if err != nil {
				return nil, fmt.Errorf("row %d: could not parse total cost: %v", idx+1, err)
			}
			if line.Quantity.IsPositive() {
				line.UnitCost = total.Div(line.Quantity)
			} else {
				line.UnitCost = total
			}
		}

		lines = append(lines, line)
	}
	return lines, nil
}
