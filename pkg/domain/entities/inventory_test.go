package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewInventory_Validation(t *testing.T) {
	if _, err := NewInventory("", "MAIN", decimal.Zero, Backward); err == nil {
		t.Error("expected error for empty item ID")
	}
	if _, err := NewInventory("WIDGET", "", decimal.Zero, Backward); err == nil {
		t.Error("expected error for empty warehouse")
	}
	if _, err := NewInventory("WIDGET", "MAIN", decimal.NewFromInt(-1), Backward); err == nil {
		t.Error("expected error for negative window")
	}
}

func TestInventory_SalesOrderLinesOrderedDeterministically(t *testing.T) {
	inv, err := NewInventory("WIDGET", "MAIN", decimal.Zero, Backward)
	if err != nil {
		t.Fatalf("NewInventory failed: %v", err)
	}

	late, _ := NewSalesOrderLineDistribution("SO-3", 1, "WIDGET", "MAIN", testDate(15), decimal.NewFromInt(5))
	earlyA, _ := NewSalesOrderLineDistribution("SO-1", 1, "WIDGET", "MAIN", testDate(10), decimal.NewFromInt(5))
	earlyB, _ := NewSalesOrderLineDistribution("SO-2", 1, "WIDGET", "MAIN", testDate(10), decimal.NewFromInt(5))

	inv.AddSalesOrderLine(late)
	inv.AddSalesOrderLine(earlyA)
	inv.AddSalesOrderLine(earlyB)

	ordered := inv.SalesOrderLineDistributions()
	want := []string{"SO-1", "SO-2", "SO-3"}
	for i, sod := range ordered {
		if sod.OrderRef != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], sod.OrderRef)
		}
	}
}

func TestInventory_ClearForecasts(t *testing.T) {
	inv, _ := NewInventory("WIDGET", "MAIN", decimal.Zero, Backward)
	shipment, _ := NewForecastShipment("WIDGET", "MAIN", testDate(10), decimal.NewFromInt(10))
	inv.AddForecastShipment(shipment)

	inv.ClearForecasts()
	if len(inv.ForecastShipments()) != 0 {
		t.Error("expected no shipments after clearing forecasts")
	}
}

func TestParseConsumptionPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    ConsumptionPolicy
		wantErr bool
	}{
		{"backward", Backward, false},
		{"forward", Forward, false},
		{"backward-then-forward", BackwardThenForward, false},
		{"spread", Spread, false},
		{"sideways", Backward, true},
	}

	for _, tt := range tests {
		got, err := ParseConsumptionPolicy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseConsumptionPolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseConsumptionPolicy(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
