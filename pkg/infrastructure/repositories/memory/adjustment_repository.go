package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/quantive/mrplan/pkg/domain/entities"
	"github.com/quantive/mrplan/pkg/domain/repositories"
)

// AdjustmentRepository provides in-memory append-only adjustment storage
type AdjustmentRepository struct {
	mu          sync.RWMutex
	adjustments []*entities.Adjustment
}

// NewAdjustmentRepository creates a new in-memory adjustment ledger
func NewAdjustmentRepository() *AdjustmentRepository {
	return &AdjustmentRepository{}
}

// Verify interface compliance
var _ repositories.AdjustmentRepository = (*AdjustmentRepository)(nil)

// Append posts one adjustment to the ledger
func (r *AdjustmentRepository) Append(_ context.Context, adj *entities.Adjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adjustments = append(r.adjustments, adj)
	return nil
}

// AppendBatch posts restored adjustments in bulk and re-sorts the ledger by
// instant, since bulk restoration carries no ordering guarantee
func (r *AdjustmentRepository) AppendBatch(_ context.Context, adjs []*entities.Adjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adjustments = append(r.adjustments, adjs...)
	sort.SliceStable(r.adjustments, func(i, j int) bool {
		return r.adjustments[i].Instant.Before(r.adjustments[j].Instant)
	})
	return nil
}

// ForRequirement returns the adjustments pegged to a material requirement,
// instant ascending
func (r *AdjustmentRepository) ForRequirement(_ context.Context, requirementID string) ([]*entities.Adjustment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pegged []*entities.Adjustment
	for _, adj := range r.adjustments {
		if adj.RequirementID == requirementID {
			pegged = append(pegged, adj)
		}
	}
	sortByInstant(pegged)
	return pegged, nil
}

// ForLot returns all adjustments posted against a lot, instant ascending
func (r *AdjustmentRepository) ForLot(_ context.Context, inventoryID, lotNumber string) ([]*entities.Adjustment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*entities.Adjustment
	for _, adj := range r.adjustments {
		if adj.InventoryID == inventoryID && adj.Storage != nil && adj.Storage.LotNumber == lotNumber {
			entries = append(entries, adj)
		}
	}
	sortByInstant(entries)
	return entries, nil
}

// OnHand sums the lot's adjustments; the ledger is the source of truth for
// on-hand quantity
func (r *AdjustmentRepository) OnHand(ctx context.Context, inventoryID, lotNumber string) (decimal.Decimal, error) {
	entries, err := r.ForLot(ctx, inventoryID, lotNumber)
	if err != nil {
		return decimal.Zero, err
	}
	onHand := decimal.Zero
	for _, adj := range entries {
		onHand = onHand.Add(adj.ChangeQty)
	}
	return onHand, nil
}

func sortByInstant(adjs []*entities.Adjustment) {
	sort.SliceStable(adjs, func(i, j int) bool {
		return adjs[i].Instant.Before(adjs[j].Instant)
	})
}
