package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/quantive/mrplan/pkg/application/services"
	"github.com/quantive/mrplan/pkg/domain/repositories"
)

// Scheduler runs periodic consumption passes over every inventory. It covers
// scenarios where demand trickles in outside the import pipeline and a
// standing replan keeps forecasts honest.
type Scheduler struct {
	cron        *cron.Cron
	planner     *services.Planner
	inventories repositories.InventoryRepository
	logger      zerolog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a scheduler around the given planner
func New(planner *services.Planner, inventories repositories.InventoryRepository, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		// A slow pass skips the next tick instead of stacking behind it.
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		planner:     planner,
		inventories: inventories,
		logger:      logger,
	}
}

// Start registers the pass at the given cron spec and begins ticking
func (s *Scheduler) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(spec, s.runPass); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Str("spec", spec).Msg("scheduled consumption pass registered")
	return nil
}

// Stop halts the ticker and waits for a running pass to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
}

func (s *Scheduler) runPass() {
	inventories, err := s.inventories.GetAllInventories()
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled pass could not load inventories")
		return
	}
	results := s.planner.ConsumeAllForecasts(context.Background(), inventories)
	s.logger.Info().Int("inventories", len(results)).Msg("scheduled consumption pass complete")
}
