package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testDate(day int) time.Time {
	return time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC)
}

func TestNewForecastShipment_Validation(t *testing.T) {
	tests := []struct {
		name      string
		itemID    string
		warehouse string
		qty       decimal.Decimal
		wantErr   bool
	}{
		{"valid", "WIDGET", "MAIN", decimal.NewFromInt(10), false},
		{"zero_qty_valid", "WIDGET", "MAIN", decimal.Zero, false},
		{"empty_item", "", "MAIN", decimal.NewFromInt(10), true},
		{"empty_warehouse", "WIDGET", "", decimal.NewFromInt(10), true},
		{"negative_qty", "WIDGET", "MAIN", decimal.NewFromInt(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewForecastShipment(tt.itemID, tt.warehouse, testDate(10), tt.qty)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewForecastShipment() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestForecastShipment_ConsumeSalesOrderAccumulates(t *testing.T) {
	shipment, err := NewForecastShipment("WIDGET", "MAIN", testDate(10), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("NewForecastShipment failed: %v", err)
	}
	sod, err := NewSalesOrderLineDistribution("SO-1", 1, "WIDGET", "MAIN", testDate(12), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("NewSalesOrderLineDistribution failed: %v", err)
	}

	shipment.ConsumeSalesOrder(sod, decimal.NewFromInt(30))
	shipment.ConsumeSalesOrder(sod, decimal.NewFromInt(20))

	if !shipment.ConsumedQty().Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected consumed 50, got %s", shipment.ConsumedQty())
	}
	if !shipment.UnconsumedQty().Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected unconsumed 50, got %s", shipment.UnconsumedQty())
	}
	if !shipment.ConsumedBy(sod).Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected 50 recorded for the line, got %s", shipment.ConsumedBy(sod))
	}
}

func TestForecastShipment_OverConsumptionPanics(t *testing.T) {
	shipment, _ := NewForecastShipment("WIDGET", "MAIN", testDate(10), decimal.NewFromInt(10))
	sod, _ := NewSalesOrderLineDistribution("SO-1", 1, "WIDGET", "MAIN", testDate(12), decimal.NewFromInt(100))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on over-consumption")
		}
	}()
	shipment.ConsumeSalesOrder(sod, decimal.NewFromInt(11))
}

func TestForecastShipment_NegativeConsumptionPanics(t *testing.T) {
	shipment, _ := NewForecastShipment("WIDGET", "MAIN", testDate(10), decimal.NewFromInt(10))
	sod, _ := NewSalesOrderLineDistribution("SO-1", 1, "WIDGET", "MAIN", testDate(12), decimal.NewFromInt(100))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on negative consumption")
		}
	}()
	shipment.ConsumeSalesOrder(sod, decimal.NewFromInt(-1))
}
