package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentType tags the cause of a ledger entry
type AdjustmentType int

const (
	MaterialRequirement AdjustmentType = iota
	ActivityProduced
	PurchaseOrderReceived
	TransferOrderReceived
	ManualAdjustment
	LeadTimeAssumed
)

func (t AdjustmentType) String() string {
	switch t {
	case MaterialRequirement:
		return "MaterialRequirement"
	case ActivityProduced:
		return "ActivityProduced"
	case PurchaseOrderReceived:
		return "PurchaseOrderReceived"
	case TransferOrderReceived:
		return "TransferOrderReceived"
	case ManualAdjustment:
		return "ManualAdjustment"
	case LeadTimeAssumed:
		return "LeadTimeAssumed"
	default:
		return "Unknown"
	}
}

// StorageRef identifies the lot and storage area an adjustment posts against.
type StorageRef struct {
	LotNumber   string
	StorageArea string
}

// SupplySource is a closed union over the entity that caused an adjustment.
// Each case carries only the fields needed to compute its supply date and
// describe it.
type SupplySource interface {
	SourceID() string
	supplySource()
}

// ActivitySupply is supply produced by an internal activity (a production
// job). FinishAt is the scheduled or reported finish; it is meaningless when
// the activity is neither scheduled nor reported.
type ActivitySupply struct {
	ActivityRef    string
	Scheduled      bool
	Reported       bool
	FinishAt       time.Time
	PostProcessing time.Duration
}

func (s ActivitySupply) SourceID() string { return s.ActivityRef }
func (ActivitySupply) supplySource()      {}

// PurchaseSupply is supply received against a purchase order.
type PurchaseSupply struct {
	OrderRef    string
	AvailableAt time.Time
}

func (s PurchaseSupply) SourceID() string { return s.OrderRef }
func (PurchaseSupply) supplySource()      {}

// TransferSupply is supply received on a transfer order distribution.
type TransferSupply struct {
	TransferRef        string
	ScheduledReceiveAt time.Time
}

func (s TransferSupply) SourceID() string { return s.TransferRef }
func (TransferSupply) supplySource()      {}

// LeadTimeSupply is speculative supply assumed to arrive within an
// inventory's lead time. It has no lot or storage area.
type LeadTimeSupply struct {
	InventoryID string
}

func (s LeadTimeSupply) SourceID() string { return s.InventoryID }
func (LeadTimeSupply) supplySource()      {}

// Adjustment is an immutable-once-posted ledger entry recording a signed
// quantity change against a lot. The sum of all adjustments for a lot is the
// lot's on-hand quantity; there is no separate balance field to drift.
type Adjustment struct {
	ID            uuid.UUID
	RequirementID string
	InventoryID   string
	Instant       time.Time
	ChangeQty     decimal.Decimal
	Type          AdjustmentType
	Storage       *StorageRef
	Expired       bool
	Source        SupplySource
}

// NewAdjustment creates a validated Adjustment with a fresh id. The expired
// flag is determined upstream against the lot's shelf life; the ledger only
// carries it.
func NewAdjustment(requirementID, inventoryID string, instant time.Time, changeQty decimal.Decimal,
	adjType AdjustmentType, storage *StorageRef, source SupplySource, expired bool) (*Adjustment, error) {
	if inventoryID == "" {
		return nil, fmt.Errorf("inventory ID cannot be empty")
	}
	if adjType < MaterialRequirement || adjType > LeadTimeAssumed {
		return nil, fmt.Errorf("unknown adjustment type %d", adjType)
	}
	if adjType == LeadTimeAssumed && storage != nil {
		return nil, fmt.Errorf("lead-time-assumed supply has no storage reference")
	}

	return &Adjustment{
		ID:            uuid.New(),
		RequirementID: requirementID,
		InventoryID:   inventoryID,
		Instant:       instant,
		ChangeQty:     changeQty,
		Type:          adjType,
		Storage:       storage,
		Expired:       expired,
		Source:        source,
	}, nil
}
