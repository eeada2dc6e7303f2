package entities

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ConsumptionPolicy selects how an inventory matches sales-order demand
// against forecast shipments
type ConsumptionPolicy int

const (
	Backward ConsumptionPolicy = iota
	Forward
	BackwardThenForward
	Spread
)

func (p ConsumptionPolicy) String() string {
	switch p {
	case Backward:
		return "Backward"
	case Forward:
		return "Forward"
	case BackwardThenForward:
		return "BackwardThenForward"
	case Spread:
		return "Spread"
	default:
		return "Unknown"
	}
}

// ParseConsumptionPolicy parses a policy name as written in configuration
func ParseConsumptionPolicy(name string) (ConsumptionPolicy, error) {
	switch name {
	case "backward":
		return Backward, nil
	case "forward":
		return Forward, nil
	case "backward-then-forward":
		return BackwardThenForward, nil
	case "spread":
		return Spread, nil
	default:
		return Backward, fmt.Errorf("unknown consumption policy %q", name)
	}
}

// Inventory is one item at one warehouse: the unit of planning work. It owns
// the inventory's forecast shipments and open sales-order lines together with
// the consumption window and policy configured for the scenario.
type Inventory struct {
	ItemID                string
	Warehouse             string
	ConsumptionWindowDays decimal.Decimal // 0 = unbounded
	Policy                ConsumptionPolicy

	shipments []*ForecastShipment
	sodLines  []*SalesOrderLineDistribution
}

// NewInventory creates a validated Inventory
func NewInventory(itemID, warehouse string, windowDays decimal.Decimal, policy ConsumptionPolicy) (*Inventory, error) {
	if itemID == "" {
		return nil, fmt.Errorf("item ID cannot be empty")
	}
	if warehouse == "" {
		return nil, fmt.Errorf("warehouse cannot be empty")
	}
	if windowDays.IsNegative() {
		return nil, fmt.Errorf("consumption window cannot be negative, got %s", windowDays)
	}

	return &Inventory{
		ItemID:                itemID,
		Warehouse:             warehouse,
		ConsumptionWindowDays: windowDays,
		Policy:                policy,
	}, nil
}

// Key returns the item/warehouse identity of this inventory
func (inv *Inventory) Key() string {
	return inv.ItemID + ":" + inv.Warehouse
}

// AddForecastShipment adds a published forecast to this inventory
func (inv *Inventory) AddForecastShipment(shipment *ForecastShipment) {
	inv.shipments = append(inv.shipments, shipment)
}

// AddSalesOrderLine adds an imported open sales-order line to this inventory
func (inv *Inventory) AddSalesOrderLine(sod *SalesOrderLineDistribution) {
	inv.sodLines = append(inv.sodLines, sod)
}

// ForecastShipments returns the inventory's forecast shipments
func (inv *Inventory) ForecastShipments() []*ForecastShipment {
	return inv.shipments
}

// SalesOrderLineDistributions returns the inventory's open sales-order lines
// in required-available order, insertion order on ties. Strategies depend on
// this order being deterministic.
func (inv *Inventory) SalesOrderLineDistributions() []*SalesOrderLineDistribution {
	ordered := make([]*SalesOrderLineDistribution, len(inv.sodLines))
	copy(ordered, inv.sodLines)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].RequiredAvailableAt.Before(ordered[j].RequiredAvailableAt)
	})
	return ordered
}

// ClearForecasts removes all forecast shipments, used when forecasts are
// republished for the scenario
func (inv *Inventory) ClearForecasts() {
	inv.shipments = nil
}
