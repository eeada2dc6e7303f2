package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ForecastShipment is a forecasted demand quantity due at a point in time.
// It is decremented as real sales-order demand is matched against it, so that
// projected demand is not double-counted.
type ForecastShipment struct {
	ItemID        string
	Warehouse     string
	RequiredAt    time.Time
	ForecastedQty decimal.Decimal

	consumedQty decimal.Decimal
	consumedBy  map[*SalesOrderLineDistribution]decimal.Decimal
}

// NewForecastShipment creates a validated ForecastShipment
func NewForecastShipment(itemID, warehouse string, requiredAt time.Time, forecastedQty decimal.Decimal) (*ForecastShipment, error) {
	if itemID == "" {
		return nil, fmt.Errorf("item ID cannot be empty")
	}
	if warehouse == "" {
		return nil, fmt.Errorf("warehouse cannot be empty")
	}
	if forecastedQty.IsNegative() {
		return nil, fmt.Errorf("forecasted quantity cannot be negative, got %s", forecastedQty)
	}

	return &ForecastShipment{
		ItemID:        itemID,
		Warehouse:     warehouse,
		RequiredAt:    requiredAt,
		ForecastedQty: forecastedQty,
	}, nil
}

// ConsumedQty returns the quantity already matched against sales orders.
func (f *ForecastShipment) ConsumedQty() decimal.Decimal {
	return f.consumedQty
}

// UnconsumedQty returns the forecasted quantity still open to consumption.
// It is never negative.
func (f *ForecastShipment) UnconsumedQty() decimal.Decimal {
	return f.ForecastedQty.Sub(f.consumedQty)
}

// ConsumeSalesOrder records qty of the given sales-order line against this
// shipment. Repeated calls for the same line accumulate. Callers must clamp
// qty with min() against UnconsumedQty before posting; a negative qty or one
// that would drive UnconsumedQty negative is a programmer error and panics.
func (f *ForecastShipment) ConsumeSalesOrder(sod *SalesOrderLineDistribution, qty decimal.Decimal) {
	if qty.IsNegative() {
		panic(fmt.Sprintf("forecast shipment %s/%s: negative consumption %s", f.ItemID, f.Warehouse, qty))
	}
	if qty.GreaterThan(f.UnconsumedQty()) {
		panic(fmt.Sprintf("forecast shipment %s/%s: consumption %s exceeds unconsumed %s",
			f.ItemID, f.Warehouse, qty, f.UnconsumedQty()))
	}

	f.consumedQty = f.consumedQty.Add(qty)
	if f.consumedBy == nil {
		f.consumedBy = make(map[*SalesOrderLineDistribution]decimal.Decimal)
	}
	f.consumedBy[sod] = f.consumedBy[sod].Add(qty)
}

// ConsumedBy returns the quantity this shipment has absorbed from the given
// sales-order line across all consumption calls.
func (f *ForecastShipment) ConsumedBy(sod *SalesOrderLineDistribution) decimal.Decimal {
	return f.consumedBy[sod]
}
