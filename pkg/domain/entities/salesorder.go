package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrderLineDistribution is the portion of a sales-order line still open
// to ship, with the date it must be available. The planning core only reads
// it; the open quantity decreases externally as shipments occur.
type SalesOrderLineDistribution struct {
	OrderRef            string
	LineNumber          int
	ItemID              string
	Warehouse           string
	RequiredAvailableAt time.Time
	QtyOpenToShip       decimal.Decimal
}

// NewSalesOrderLineDistribution creates a validated SalesOrderLineDistribution
func NewSalesOrderLineDistribution(orderRef string, lineNumber int, itemID, warehouse string,
	requiredAvailableAt time.Time, qtyOpenToShip decimal.Decimal) (*SalesOrderLineDistribution, error) {
	if orderRef == "" {
		return nil, fmt.Errorf("order reference cannot be empty")
	}
	if itemID == "" {
		return nil, fmt.Errorf("item ID cannot be empty")
	}
	if warehouse == "" {
		return nil, fmt.Errorf("warehouse cannot be empty")
	}
	if qtyOpenToShip.IsNegative() {
		return nil, fmt.Errorf("open-to-ship quantity cannot be negative, got %s", qtyOpenToShip)
	}

	return &SalesOrderLineDistribution{
		OrderRef:            orderRef,
		LineNumber:          lineNumber,
		ItemID:              itemID,
		Warehouse:           warehouse,
		RequiredAvailableAt: requiredAvailableAt,
		QtyOpenToShip:       qtyOpenToShip,
	}, nil
}
