package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantive/mrplan/pkg/application/services"
)

// Config holds configuration for output generation
type Config struct {
	Format          string
	Verbose         bool
	ConsumptionTime time.Duration
}

// Generate creates output in the specified format
func Generate(results []services.InventoryResult, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(results, config)
	case "json":
		return generateJSONOutput(results)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(results []services.InventoryResult, config Config) error {
	totalLinks := 0
	totalConsumed := decimal.Zero
	for _, res := range results {
		if res.Result == nil {
			continue
		}
		totalLinks += len(res.Result.Links)
		totalConsumed = totalConsumed.Add(res.Result.TotalConsumed())
	}

	fmt.Printf("Forecast Consumption Summary\n")
	fmt.Printf("============================\n\n")
	fmt.Printf("Inventories: %d\n", len(results))
	fmt.Printf("Consumption Links: %d\n", totalLinks)
	fmt.Printf("Total Consumed: %s\n", totalConsumed)
	fmt.Printf("Consumption Time: %v\n\n", config.ConsumptionTime)

	fmt.Printf("%-25s %-22s %-8s %-12s %-12s\n",
		"Inventory", "Policy", "Links", "Consumed", "Remainder")
	fmt.Printf("%-25s %-22s %-8s %-12s %-12s\n",
		"-------------------------", "----------------------", "--------", "------------", "------------")

	for _, res := range results {
		if res.Inventory == nil {
			continue
		}
		links, consumed, remainder := 0, decimal.Zero, decimal.Zero
		if res.Result != nil {
			links = len(res.Result.Links)
			consumed = res.Result.TotalConsumed()
			for _, line := range res.Result.PerSOD {
				remainder = remainder.Add(line.Remainder)
			}
		}
		fmt.Printf("%-25s %-22s %-8d %-12s %-12s\n",
			res.Inventory.Key(), res.Inventory.Policy, links, consumed, remainder)
	}

	if config.Verbose {
		fmt.Printf("\nConsumption Links:\n")
		for _, res := range results {
			if res.Result == nil {
				continue
			}
			for _, link := range res.Result.Links {
				fmt.Printf("  %s line %d <- forecast due %s: %s\n",
					link.SOD.OrderRef, link.SOD.LineNumber,
					link.Shipment.RequiredAt.Format("2006-01-02"), link.Qty)
			}
		}
	}

	return nil
}

// jsonInventoryResult is the wire shape of one inventory's outcome
type jsonInventoryResult struct {
	Inventory string     `json:"inventory"`
	Policy    string     `json:"policy"`
	Consumed  string     `json:"consumed"`
	Links     []jsonLink `json:"links"`
}

type jsonLink struct {
	OrderRef   string `json:"order_ref"`
	LineNumber int    `json:"line_number"`
	ForecastAt string `json:"forecast_at"`
	Qty        string `json:"qty"`
}

// generateJSONOutput creates machine-readable JSON output
func generateJSONOutput(results []services.InventoryResult) error {
	out := make([]jsonInventoryResult, 0, len(results))
	for _, res := range results {
		if res.Inventory == nil {
			continue
		}
		jr := jsonInventoryResult{
			Inventory: res.Inventory.Key(),
			Policy:    res.Inventory.Policy.String(),
			Consumed:  "0",
		}
		if res.Result != nil {
			jr.Consumed = res.Result.TotalConsumed().String()
			for _, link := range res.Result.Links {
				jr.Links = append(jr.Links, jsonLink{
					OrderRef:   link.SOD.OrderRef,
					LineNumber: link.SOD.LineNumber,
					ForecastAt: link.Shipment.RequiredAt.Format(time.RFC3339),
					Qty:        link.Qty.String(),
				})
			}
		}
		out = append(out, jr)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
