package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewAdjustment_Validation(t *testing.T) {
	storage := &StorageRef{LotNumber: "LOT-1", StorageArea: "BIN-7"}

	if _, err := NewAdjustment("MR-1", "", testDate(5), decimal.NewFromInt(10),
		PurchaseOrderReceived, storage, PurchaseSupply{OrderRef: "PO-1", AvailableAt: testDate(5)}, false); err == nil {
		t.Error("expected error for empty inventory ID")
	}

	if _, err := NewAdjustment("MR-1", "INV-1", testDate(5), decimal.NewFromInt(10),
		AdjustmentType(99), storage, nil, false); err == nil {
		t.Error("expected error for unknown adjustment type")
	}

	if _, err := NewAdjustment("MR-1", "INV-1", testDate(5), decimal.NewFromInt(10),
		LeadTimeAssumed, storage, LeadTimeSupply{InventoryID: "INV-1"}, false); err == nil {
		t.Error("expected error for lead-time supply with a storage reference")
	}

	adj, err := NewAdjustment("MR-1", "INV-1", testDate(5), decimal.NewFromInt(-3),
		MaterialRequirement, storage, nil, false)
	if err != nil {
		t.Fatalf("NewAdjustment failed: %v", err)
	}
	if adj.ID.String() == "" {
		t.Error("expected a generated adjustment id")
	}
	if !adj.ChangeQty.Equal(decimal.NewFromInt(-3)) {
		t.Errorf("expected signed change -3, got %s", adj.ChangeQty)
	}
}

func TestAdjustmentType_String(t *testing.T) {
	tests := []struct {
		adjType AdjustmentType
		want    string
	}{
		{MaterialRequirement, "MaterialRequirement"},
		{ActivityProduced, "ActivityProduced"},
		{PurchaseOrderReceived, "PurchaseOrderReceived"},
		{TransferOrderReceived, "TransferOrderReceived"},
		{ManualAdjustment, "ManualAdjustment"},
		{LeadTimeAssumed, "LeadTimeAssumed"},
		{AdjustmentType(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.adjType.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
