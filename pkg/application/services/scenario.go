package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/quantive/mrplan/pkg/domain/entities"
)

// BuildInventories groups loaded forecast shipments and sales-order lines
// into per-item, per-warehouse inventories carrying the scenario's window and
// policy. Inventories come back in deterministic key order so batch output is
// reproducible.
func BuildInventories(shipments []*entities.ForecastShipment, sods []*entities.SalesOrderLineDistribution,
	windowDays decimal.Decimal, policy entities.ConsumptionPolicy) ([]*entities.Inventory, error) {

	byKey := make(map[string]*entities.Inventory)

	lookup := func(itemID, warehouse string) (*entities.Inventory, error) {
		key := itemID + ":" + warehouse
		if inv, ok := byKey[key]; ok {
			return inv, nil
		}
		inv, err := entities.NewInventory(itemID, warehouse, windowDays, policy)
		if err != nil {
			return nil, err
		}
		byKey[key] = inv
		return inv, nil
	}

	for _, shipment := range shipments {
		inv, err := lookup(shipment.ItemID, shipment.Warehouse)
		if err != nil {
			return nil, err
		}
		inv.AddForecastShipment(shipment)
	}
	for _, sod := range sods {
		inv, err := lookup(sod.ItemID, sod.Warehouse)
		if err != nil {
			return nil, err
		}
		inv.AddSalesOrderLine(sod)
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	inventories := make([]*entities.Inventory, 0, len(keys))
	for _, key := range keys {
		inventories = append(inventories, byKey[key])
	}
	return inventories, nil
}
