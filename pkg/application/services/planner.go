package services

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quantive/mrplan/pkg/domain/entities"
	domainservices "github.com/quantive/mrplan/pkg/domain/services"
)

// InventoryResult pairs one inventory with the outcome of its consumption
// pass.
type InventoryResult struct {
	Inventory *entities.Inventory
	Result    *domainservices.ConsumptionResult
}

// Planner runs forecast consumption as a parallel batch: one independent
// unit of work per inventory, dispatched across a worker pool. Units share
// no mutable state, so no locking is needed between them; inside a unit the
// pass is strictly sequential because later lines depend on the residual
// unconsumed quantities left by earlier ones. Whole passes, however, mutate
// shipment state, so concurrent callers are serialized one pass at a time.
type Planner struct {
	options entities.ScenarioOptions
	workers int
	logger  zerolog.Logger

	passMu sync.Mutex
}

// NewPlanner creates a planner. A non-positive worker count falls back to
// the number of CPUs.
func NewPlanner(options entities.ScenarioOptions, workers int, logger zerolog.Logger) *Planner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if options == nil {
		options = entities.DefaultScenarioOptions()
	}
	return &Planner{options: options, workers: workers, logger: logger}
}

// ConsumeAllForecasts consumes forecasts for every inventory and returns the
// results in the input order regardless of scheduling. A cancelled context
// stops dispatching new inventories; units already running always complete.
func (p *Planner) ConsumeAllForecasts(ctx context.Context, inventories []*entities.Inventory) []InventoryResult {
	p.passMu.Lock()
	defer p.passMu.Unlock()

	results := make([]InventoryResult, len(inventories))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.consumeInventory(inventories[i])
			}
		}()
	}

	for i := range inventories {
		select {
		case <-ctx.Done():
			p.logger.Warn().Err(ctx.Err()).Msg("consumption batch cut short")
			close(jobs)
			wg.Wait()
			return results
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	p.logBatch(results)
	return results
}

func (p *Planner) consumeInventory(inv *entities.Inventory) InventoryResult {
	consumer := domainservices.NewForecastConsumer(inv.Policy, inv.ConsumptionWindowDays, p.options)
	result := consumer.ConsumeForecasts(inv.SalesOrderLineDistributions(), inv.ForecastShipments())

	p.logger.Debug().
		Str("inventory", inv.Key()).
		Str("policy", inv.Policy.String()).
		Int("links", len(result.Links)).
		Str("consumed", result.TotalConsumed().String()).
		Msg("forecast consumption done")

	return InventoryResult{Inventory: inv, Result: result}
}

func (p *Planner) logBatch(results []InventoryResult) {
	links := 0
	for _, r := range results {
		if r.Result != nil {
			links += len(r.Result.Links)
		}
	}
	p.logger.Info().
		Int("inventories", len(results)).
		Int("links", links).
		Msg("forecast consumption batch complete")
}
