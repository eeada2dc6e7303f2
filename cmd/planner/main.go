package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/quantive/mrplan/pkg/application/services"
	"github.com/quantive/mrplan/pkg/domain/entities"
	"github.com/quantive/mrplan/pkg/infrastructure/messaging"
	"github.com/quantive/mrplan/pkg/infrastructure/repositories/csv"
	"github.com/quantive/mrplan/pkg/infrastructure/repositories/memory"
	"github.com/quantive/mrplan/pkg/infrastructure/scheduler"
	"github.com/quantive/mrplan/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		scenarioDir = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing CSV files",
		)
		forecastsFile   = flag.String("forecasts", "", "Path to forecast shipments CSV file")
		salesOrdersFile = flag.String("sales-orders", "", "Path to sales order lines CSV file")
		policy          = flag.String("policy", "backward", "Consumption policy: backward, forward, backward-then-forward, spread")
		window          = flag.String("window", "0", "Consumption window in days (0 = unbounded)")
		workers         = flag.Int("workers", 0, "Worker pool size (0 = number of CPUs)")
		format          = flag.String("format", "text", "Output format: text, json")
		verbose         = flag.Bool("verbose", false, "Enable verbose output")
		serve           = flag.Bool("serve", false, "Stay resident: consume replan requests and run scheduled passes")
		help            = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	planner := services.NewPlanner(entities.DefaultScenarioOptions(), *workers, log.Logger)

	config := commands.Config{
		ScenarioDir:     *scenarioDir,
		ForecastsFile:   *forecastsFile,
		SalesOrdersFile: *salesOrdersFile,
		Policy:          *policy,
		WindowDays:      *window,
		Workers:         *workers,
		Format:          *format,
		Verbose:         *verbose,
		Help:            *help,
	}

	ctx := context.Background()

	if *serve {
		if err := runServe(ctx, config, planner); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cmd := commands.NewConsumeCommand(config, planner)
	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runServe loads the scenario once, then keeps replanning it: on demand via
// the import queue and periodically via cron.
func runServe(ctx context.Context, config commands.Config, planner *services.Planner) error {
	env := LoadEnvConfig()

	parsedPolicy, err := entities.ParseConsumptionPolicy(config.Policy)
	if err != nil {
		return err
	}
	windowDays, err := decimal.NewFromString(config.WindowDays)
	if err != nil {
		return fmt.Errorf("invalid consumption window %q: %w", config.WindowDays, err)
	}

	csvLoader := csv.NewLoader()
	shipments, err := csvLoader.LoadForecastShipments(config.ScenarioDir + "/forecasts.csv")
	if err != nil {
		return err
	}
	sods, err := csvLoader.LoadSalesOrderLines(config.ScenarioDir + "/sales_orders.csv")
	if err != nil {
		return err
	}
	inventories, err := services.BuildInventories(shipments, sods, windowDays, parsedPolicy)
	if err != nil {
		return err
	}

	repo := memory.NewInventoryRepository()
	if err := repo.LoadInventories(inventories); err != nil {
		return err
	}
	log.Info().Int("inventories", len(inventories)).Msg("scenario loaded")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rabbit, err := messaging.NewRabbit(messaging.Config{
		URL:          env.RabbitURL,
		QConsumeReq:  env.QConsumeReq,
		QConsumeDone: env.QConsumeDone,
	}, planner, repo)
	if err != nil {
		return fmt.Errorf("rabbit setup failed: %w", err)
	}
	defer rabbit.Close()
	if err := rabbit.StartConsumer(ctx); err != nil {
		return fmt.Errorf("rabbit consumer failed: %w", err)
	}
	log.Info().Str("queue", env.QConsumeReq).Msg("replan consumer started")

	sched := scheduler.New(planner, repo, log.Logger)
	if err := sched.Start(env.CronSpec); err != nil {
		return err
	}
	defer sched.Stop()

	// Wait for shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Warn().Msg("shutting down...")
	return nil
}
