package memory

import (
	"fmt"
	"sort"

	"github.com/quantive/mrplan/pkg/domain/entities"
	"github.com/quantive/mrplan/pkg/domain/repositories"
)

// InventoryRepository provides in-memory inventory storage
type InventoryRepository struct {
	inventories map[string]*entities.Inventory
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		inventories: make(map[string]*entities.Inventory),
	}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// LoadInventories loads inventories into the repository
func (r *InventoryRepository) LoadInventories(inventories []*entities.Inventory) error {
	for _, inv := range inventories {
		r.AddInventory(inv)
	}
	return nil
}

// AddInventory adds an inventory to the repository, replacing any existing
// inventory for the same item and warehouse
func (r *InventoryRepository) AddInventory(inv *entities.Inventory) {
	r.inventories[inv.Key()] = inv
}

// GetInventory returns the inventory for an item at a warehouse
func (r *InventoryRepository) GetInventory(itemID, warehouse string) (*entities.Inventory, error) {
	inv, ok := r.inventories[itemID+":"+warehouse]
	if !ok {
		return nil, fmt.Errorf("no inventory for item %s at warehouse %s", itemID, warehouse)
	}
	return inv, nil
}

// GetAllInventories returns every inventory in a deterministic key order
func (r *InventoryRepository) GetAllInventories() ([]*entities.Inventory, error) {
	keys := make([]string, 0, len(r.inventories))
	for key := range r.inventories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	inventories := make([]*entities.Inventory, 0, len(keys))
	for _, key := range keys {
		inventories = append(inventories, r.inventories[key])
	}
	return inventories, nil
}
