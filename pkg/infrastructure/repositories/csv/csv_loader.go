package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantive/mrplan/pkg/domain/entities"
)

// Loader handles loading planning scenario data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForecastShipments loads published forecast shipments from a CSV file
func (l *Loader) LoadForecastShipments(filename string) ([]*entities.ForecastShipment, error) {
	records, err := readAll(filename, "forecasts")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"item_id", "warehouse", "required_at", "forecasted_qty"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("forecasts CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var shipments []*entities.ForecastShipment
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("forecasts CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		requiredAt, err := parseDate(record[2])
		if err != nil {
			return nil, fmt.Errorf("forecasts CSV row %d: %w", i+2, err)
		}
		qty, err := decimal.NewFromString(record[3])
		if err != nil {
			return nil, fmt.Errorf("forecasts CSV row %d: invalid forecasted_qty %q", i+2, record[3])
		}

		shipment, err := entities.NewForecastShipment(record[0], record[1], requiredAt, qty)
		if err != nil {
			return nil, fmt.Errorf("forecasts CSV row %d: %w", i+2, err)
		}
		shipments = append(shipments, shipment)
	}

	return shipments, nil
}

// LoadSalesOrderLines loads open sales-order line distributions from a CSV file
func (l *Loader) LoadSalesOrderLines(filename string) ([]*entities.SalesOrderLineDistribution, error) {
	records, err := readAll(filename, "sales orders")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"order_ref", "line_number", "item_id", "warehouse", "required_available_at", "qty_open_to_ship"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("sales orders CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var sods []*entities.SalesOrderLineDistribution
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("sales orders CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		lineNumber, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("sales orders CSV row %d: invalid line_number %q", i+2, record[1])
		}
		requiredAt, err := parseDate(record[4])
		if err != nil {
			return nil, fmt.Errorf("sales orders CSV row %d: %w", i+2, err)
		}
		qty, err := decimal.NewFromString(record[5])
		if err != nil {
			return nil, fmt.Errorf("sales orders CSV row %d: invalid qty_open_to_ship %q", i+2, record[5])
		}

		sod, err := entities.NewSalesOrderLineDistribution(record[0], lineNumber, record[2], record[3], requiredAt, qty)
		if err != nil {
			return nil, fmt.Errorf("sales orders CSV row %d: %w", i+2, err)
		}
		sods = append(sods, sod)
	}

	return sods, nil
}

// Helper functions for parsing CSV records

func readAll(filename, label string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", label, filename, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", label, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", label)
	}
	return records, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if actual[i] != col {
			return false
		}
	}
	return true
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or RFC3339)", value)
	}
	return t, nil
}
