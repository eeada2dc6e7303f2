package pegging

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantive/mrplan/pkg/domain/entities"
)

func date(day int) time.Time {
	return time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC)
}

func mustAdjustment(t *testing.T, requirementID, inventoryID string, instant time.Time, changeQty int64,
	adjType entities.AdjustmentType, storage *entities.StorageRef, source entities.SupplySource) *entities.Adjustment {
	t.Helper()
	adj, err := entities.NewAdjustment(requirementID, inventoryID, instant,
		decimal.NewFromInt(changeQty), adjType, storage, source, false)
	if err != nil {
		t.Fatalf("NewAdjustment failed: %v", err)
	}
	return adj
}

func buildSupply(t *testing.T, override AvailabilityOverride, adjs ...*entities.Adjustment) *MRSupply {
	t.Helper()
	supply := NewMRSupply("MR-1", override)
	for _, adj := range adjs {
		if err := supply.Add(adj); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	return supply
}

func TestMRSupply_AddRejectsForeignRequirement(t *testing.T) {
	supply := NewMRSupply("MR-1", nil)
	adj := mustAdjustment(t, "MR-2", "INV-1", date(5), 10,
		entities.PurchaseOrderReceived, nil, entities.PurchaseSupply{OrderRef: "PO-1", AvailableAt: date(5)})
	if err := supply.Add(adj); err == nil {
		t.Error("expected error pegging an adjustment from another requirement")
	}
}

func TestMRSupply_OrderedByInstant(t *testing.T) {
	late := mustAdjustment(t, "MR-1", "INV-1", date(9), 10,
		entities.PurchaseOrderReceived, nil, entities.PurchaseSupply{OrderRef: "PO-2", AvailableAt: date(9)})
	early := mustAdjustment(t, "MR-1", "INV-1", date(3), 10,
		entities.PurchaseOrderReceived, nil, entities.PurchaseSupply{OrderRef: "PO-1", AvailableAt: date(3)})

	supply := buildSupply(t, nil, late, early)
	ordered := supply.Adjustments()
	if !ordered[0].Instant.Equal(date(3)) || !ordered[1].Instant.Equal(date(9)) {
		t.Error("expected adjustments ordered by instant ascending")
	}
}

func TestMRSupply_LatestSupplyInstant(t *testing.T) {
	activity := mustAdjustment(t, "MR-1", "INV-1", date(2), 20, entities.ActivityProduced,
		&entities.StorageRef{LotNumber: "LOT-1", StorageArea: "BIN-1"},
		entities.ActivitySupply{ActivityRef: "JOB-7", Scheduled: true, FinishAt: date(6), PostProcessing: 48 * time.Hour})
	purchase := mustAdjustment(t, "MR-1", "INV-1", date(3), 30, entities.PurchaseOrderReceived,
		&entities.StorageRef{LotNumber: "LOT-2", StorageArea: "BIN-1"},
		entities.PurchaseSupply{OrderRef: "PO-1", AvailableAt: date(5)})

	supply := buildSupply(t, nil, activity, purchase)

	// Activity finish day 6 + 2 days post-processing = day 8
	if got := supply.LatestSupplyInstant(); !got.Equal(date(8)) {
		t.Errorf("expected latest supply on %s, got %s", date(8), got)
	}
	if got := supply.EarliestSupplySourceInstant(); !got.Equal(date(5)) {
		t.Errorf("expected earliest supply on %s, got %s", date(5), got)
	}
}

func TestMRSupply_UnscheduledActivityHasNoDate(t *testing.T) {
	unscheduled := mustAdjustment(t, "MR-1", "INV-1", date(2), 20, entities.ActivityProduced,
		&entities.StorageRef{LotNumber: "LOT-1", StorageArea: "BIN-1"},
		entities.ActivitySupply{ActivityRef: "JOB-9", FinishAt: date(6)})
	purchase := mustAdjustment(t, "MR-1", "INV-1", date(3), 30, entities.PurchaseOrderReceived,
		&entities.StorageRef{LotNumber: "LOT-2", StorageArea: "BIN-1"},
		entities.PurchaseSupply{OrderRef: "PO-1", AvailableAt: date(5)})

	supply := buildSupply(t, nil, unscheduled, purchase)

	// The unscheduled, unreported activity counts as minimum: it never wins.
	if got := supply.LatestSupplyInstant(); !got.Equal(date(5)) {
		t.Errorf("expected latest supply from the purchase, got %s", got)
	}
	// And it is ignored entirely for the earliest known date.
	if got := supply.EarliestSupplySourceInstant(); !got.Equal(date(5)) {
		t.Errorf("expected earliest supply from the purchase, got %s", got)
	}

	alone := buildSupply(t, nil, mustAdjustment(t, "MR-1", "INV-1", date(2), 20, entities.ActivityProduced,
		nil, entities.ActivitySupply{ActivityRef: "JOB-9", FinishAt: date(6)}))
	if !alone.LatestSupplyInstant().IsZero() {
		t.Error("expected zero latest instant when nothing is dated")
	}
	if !alone.EarliestSupplySourceInstant().IsZero() {
		t.Error("expected zero earliest instant when nothing is dated")
	}
}

func TestMRSupply_AvailabilityOverride(t *testing.T) {
	activity := mustAdjustment(t, "MR-1", "INV-1", date(2), 20, entities.ActivityProduced,
		&entities.StorageRef{LotNumber: "LOT-1", StorageArea: "BIN-1"},
		entities.ActivitySupply{ActivityRef: "JOB-7", Scheduled: true, FinishAt: date(6)})

	override := func(adj *entities.Adjustment, src entities.ActivitySupply) (time.Time, bool) {
		if src.ActivityRef == "JOB-7" {
			return date(20), true
		}
		return time.Time{}, false
	}

	supply := buildSupply(t, override, activity)
	if got := supply.LatestSupplyInstant(); !got.Equal(date(20)) {
		t.Errorf("expected overridden availability %s, got %s", date(20), got)
	}
}

func TestMRSupply_LatestSupplyInventoryFirstSeenWinsTies(t *testing.T) {
	first := mustAdjustment(t, "MR-1", "INV-A", date(4), 10,
		entities.PurchaseOrderReceived, nil, entities.PurchaseSupply{OrderRef: "PO-1", AvailableAt: date(7)})
	second := mustAdjustment(t, "MR-1", "INV-B", date(5), 10,
		entities.PurchaseOrderReceived, nil, entities.PurchaseSupply{OrderRef: "PO-2", AvailableAt: date(7)})

	supply := buildSupply(t, nil, first, second)
	if got := supply.LatestSupplyInventory(); got != "INV-A" {
		t.Errorf("expected first-seen inventory INV-A on tie, got %s", got)
	}
}

func TestMRSupply_SourcesFrom(t *testing.T) {
	activity := mustAdjustment(t, "MR-1", "INV-1", date(2), 20, entities.ActivityProduced,
		nil, entities.ActivitySupply{ActivityRef: "JOB-7", Scheduled: true, FinishAt: date(6)})
	purchase := mustAdjustment(t, "MR-1", "INV-1", date(3), 30, entities.PurchaseOrderReceived,
		nil, entities.PurchaseSupply{OrderRef: "PO-1", AvailableAt: date(5)})

	supply := buildSupply(t, nil, activity, purchase)

	tests := []struct {
		name      string
		exclusive bool
		inclusive bool
		types     []entities.AdjustmentType
		want      bool
	}{
		{"any_match", false, false, []entities.AdjustmentType{entities.ActivityProduced}, true},
		{"any_no_match", false, false, []entities.AdjustmentType{entities.ManualAdjustment}, false},
		{"exclusive_holds", true, false, []entities.AdjustmentType{entities.ActivityProduced, entities.PurchaseOrderReceived}, true},
		{"exclusive_fails", true, false, []entities.AdjustmentType{entities.ActivityProduced}, false},
		{"inclusive_holds", false, true, []entities.AdjustmentType{entities.ActivityProduced, entities.PurchaseOrderReceived}, true},
		{"inclusive_fails", false, true, []entities.AdjustmentType{entities.ActivityProduced, entities.TransferOrderReceived}, false},
		{"both_hold", true, true, []entities.AdjustmentType{entities.ActivityProduced, entities.PurchaseOrderReceived}, true},
		{"both_fail_exclusive", true, true, []entities.AdjustmentType{entities.ActivityProduced}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := supply.SourcesFrom(tt.exclusive, tt.inclusive, tt.types...); got != tt.want {
				t.Errorf("SourcesFrom(%v, %v, %v) = %v, want %v", tt.exclusive, tt.inclusive, tt.types, got, tt.want)
			}
		})
	}
}

func TestMRSupply_DescribeCondensesSameSource(t *testing.T) {
	storage := &entities.StorageRef{LotNumber: "LOT-1", StorageArea: "BIN-7"}
	job := entities.ActivitySupply{ActivityRef: "JOB-7", Scheduled: true, FinishAt: date(6)}

	firstRun := mustAdjustment(t, "MR-1", "INV-1", date(2), 40, entities.ActivityProduced, storage, job)
	secondRun := mustAdjustment(t, "MR-1", "INV-1", date(4), 60, entities.ActivityProduced, storage,
		entities.ActivitySupply{ActivityRef: "JOB-7", Scheduled: true, FinishAt: date(8)})
	purchase := mustAdjustment(t, "MR-1", "INV-1", date(3), 25, entities.PurchaseOrderReceived,
		&entities.StorageRef{LotNumber: "LOT-2", StorageArea: "BIN-2"},
		entities.PurchaseSupply{OrderRef: "PO-9", AvailableAt: date(5)})

	supply := buildSupply(t, nil, firstRun, secondRun, purchase)
	groups := supply.Condense()

	if len(groups) != 2 {
		t.Fatalf("expected 2 condensed groups, got %d", len(groups))
	}
	// Descending first-seen instant: the purchase (day 3) before the
	// activity group (day 2).
	if groups[0].Source.SourceID() != "PO-9" {
		t.Errorf("expected purchase group first, got %s", groups[0].Source.SourceID())
	}
	activityGroup := groups[1]
	if !activityGroup.TotalQty.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected merged quantity 100, got %s", activityGroup.TotalQty)
	}
	if !activityGroup.EarliestAt.Equal(date(6)) || !activityGroup.LatestAt.Equal(date(8)) {
		t.Errorf("expected span day 6..8, got %s..%s", activityGroup.EarliestAt, activityGroup.LatestAt)
	}

	text := supply.Describe()
	if !strings.Contains(text, "; ") {
		t.Errorf("expected groups joined with \"; \": %q", text)
	}
	if !strings.Contains(text, "100 produced by activity JOB-7 into BIN-7 between 2025-06-06 and 2025-06-08") {
		t.Errorf("unexpected activity description: %q", text)
	}
	if !strings.Contains(text, "25 received on purchase order PO-9 into BIN-2 on 2025-06-05") {
		t.Errorf("unexpected purchase description: %q", text)
	}
}

func TestMRSupply_DescribeExpiredAndLeadTime(t *testing.T) {
	expired, err := entities.NewAdjustment("MR-1", "INV-1", date(2), decimal.NewFromInt(10),
		entities.TransferOrderReceived, &entities.StorageRef{LotNumber: "LOT-1", StorageArea: "BIN-1"},
		entities.TransferSupply{TransferRef: "TR-4", ScheduledReceiveAt: date(6)}, true)
	if err != nil {
		t.Fatalf("NewAdjustment failed: %v", err)
	}
	leadTime := mustAdjustment(t, "MR-1", "INV-2", date(3), 5, entities.LeadTimeAssumed,
		nil, entities.LeadTimeSupply{InventoryID: "INV-2"})

	supply := buildSupply(t, nil, expired, leadTime)
	text := supply.Describe()

	if !strings.Contains(text, "10 received on transfer TR-4 into BIN-1 on 2025-06-06 (expired)") {
		t.Errorf("unexpected transfer description: %q", text)
	}
	if !strings.Contains(text, "5 assumed within lead time of inventory INV-2 on 2025-06-03") {
		t.Errorf("unexpected lead-time description: %q", text)
	}
}

func TestMRSupply_EmptyIsZeroValued(t *testing.T) {
	supply := NewMRSupply("MR-1", nil)

	if !supply.LatestSupplyInstant().IsZero() {
		t.Error("expected zero latest instant")
	}
	if !supply.EarliestSupplySourceInstant().IsZero() {
		t.Error("expected zero earliest instant")
	}
	if supply.LatestSupplyInventory() != "" {
		t.Error("expected empty latest inventory")
	}
	if supply.Describe() != "" {
		t.Error("expected empty description")
	}
	if supply.SourcesFrom(false, false, entities.ActivityProduced) {
		t.Error("expected no match on empty supply")
	}
}
