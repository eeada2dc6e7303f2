package repositories

import "github.com/quantive/mrplan/pkg/domain/entities"

// InventoryRepository provides access to the inventories a planning pass
// operates on
type InventoryRepository interface {
	GetInventory(itemID, warehouse string) (*entities.Inventory, error)
	GetAllInventories() ([]*entities.Inventory, error)
	LoadInventories(inventories []*entities.Inventory) error
}
