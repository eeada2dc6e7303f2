package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantive/mrplan/pkg/application/services"
	"github.com/quantive/mrplan/pkg/domain/entities"
	"github.com/quantive/mrplan/pkg/infrastructure/repositories/csv"
	"github.com/quantive/mrplan/pkg/interfaces/cli/output"
)

// Config holds configuration for the consume command
type Config struct {
	ScenarioDir     string
	ForecastsFile   string
	SalesOrdersFile string
	Policy          string
	WindowDays      string
	Workers         int
	Format          string
	Verbose         bool
	Help            bool
}

// ConsumeCommand runs one forecast consumption pass over a CSV scenario
type ConsumeCommand struct {
	config  Config
	planner *services.Planner
}

// NewConsumeCommand creates a consume command with the given configuration
func NewConsumeCommand(config Config, planner *services.Planner) *ConsumeCommand {
	return &ConsumeCommand{config: config, planner: planner}
}

// Execute runs the consume command
func (c *ConsumeCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	policy, err := entities.ParseConsumptionPolicy(c.config.Policy)
	if err != nil {
		return err
	}
	windowDays, err := decimal.NewFromString(c.config.WindowDays)
	if err != nil || windowDays.IsNegative() {
		return fmt.Errorf("invalid consumption window %q (expected days >= 0)", c.config.WindowDays)
	}

	files := c.resolveInputFiles()

	if c.config.Verbose {
		fmt.Println("Loading scenario data...")
	}

	csvLoader := csv.NewLoader()
	shipments, err := csvLoader.LoadForecastShipments(files["Forecasts"])
	if err != nil {
		return fmt.Errorf("error loading forecasts: %w", err)
	}
	sods, err := csvLoader.LoadSalesOrderLines(files["SalesOrders"])
	if err != nil {
		return fmt.Errorf("error loading sales orders: %w", err)
	}

	inventories, err := services.BuildInventories(shipments, sods, windowDays, policy)
	if err != nil {
		return fmt.Errorf("error building inventories: %w", err)
	}

	if c.config.Verbose {
		fmt.Printf("Data loaded successfully:\n")
		fmt.Printf("  Forecast Shipments: %d\n", len(shipments))
		fmt.Printf("  Sales Order Lines: %d\n", len(sods))
		fmt.Printf("  Inventories: %d\n", len(inventories))
	}

	start := time.Now()
	results := c.planner.ConsumeAllForecasts(ctx, inventories)
	elapsed := time.Since(start)

	return output.Generate(results, output.Config{
		Format:          c.config.Format,
		Verbose:         c.config.Verbose,
		ConsumptionTime: elapsed,
	})
}

func (c *ConsumeCommand) validateInputs() error {
	if c.config.ScenarioDir == "" && (c.config.ForecastsFile == "" || c.config.SalesOrdersFile == "") {
		return fmt.Errorf("either -scenario or both -forecasts and -sales-orders must be provided")
	}
	if c.config.ScenarioDir != "" {
		if _, err := os.Stat(c.config.ScenarioDir); err != nil {
			return fmt.Errorf("scenario directory not accessible: %w", err)
		}
	}
	return nil
}

func (c *ConsumeCommand) resolveInputFiles() map[string]string {
	if c.config.ScenarioDir != "" {
		return map[string]string{
			"Forecasts":   filepath.Join(c.config.ScenarioDir, "forecasts.csv"),
			"SalesOrders": filepath.Join(c.config.ScenarioDir, "sales_orders.csv"),
		}
	}
	return map[string]string{
		"Forecasts":   c.config.ForecastsFile,
		"SalesOrders": c.config.SalesOrdersFile,
	}
}

func (c *ConsumeCommand) showHelp() {
	fmt.Println(`planner - forecast consumption over a CSV scenario

Usage:
  planner -scenario <dir>                      Load forecasts.csv and sales_orders.csv from <dir>
  planner -forecasts <file> -sales-orders <file>

Options:
  -policy string     Consumption policy: backward, forward, backward-then-forward, spread (default "backward")
  -window string     Consumption window in days, 0 = unbounded (default "0")
  -workers int       Worker pool size, 0 = number of CPUs
  -format string     Output format: text, json (default "text")
  -verbose           Verbose output`)
}
