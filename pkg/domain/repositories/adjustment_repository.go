package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/quantive/mrplan/pkg/domain/entities"
)

// AdjustmentRepository is the append-only quantity ledger. There is no
// update or delete: corrections are posted as new adjustments with the
// opposite sign, so the full history of every lot stays auditable.
type AdjustmentRepository interface {
	Append(ctx context.Context, adj *entities.Adjustment) error
	AppendBatch(ctx context.Context, adjs []*entities.Adjustment) error

	// ForRequirement returns the adjustments pegged to one material
	// requirement, instant ascending, insertion order on ties.
	ForRequirement(ctx context.Context, requirementID string) ([]*entities.Adjustment, error)

	// ForLot returns all adjustments posted against a lot, instant ascending.
	ForLot(ctx context.Context, inventoryID, lotNumber string) ([]*entities.Adjustment, error)

	// OnHand computes a lot's on-hand quantity as the sum of its
	// adjustments. The ledger is the source of truth; there is no separate
	// balance to drift from it.
	OnHand(ctx context.Context, inventoryID, lotNumber string) (decimal.Decimal, error)
}
