package scheduler

import (
	"context"
	"fmt"

	"PriceLabeler/internal/config"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler re-runs the pipeline on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *Pipeline
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p *Pipeline) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithParser(config.CronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Pipeline: p,
		Ctx:      ctx,
	}
}

// Register adds the pipeline run under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runTask); err != nil {
		return fmt.Errorf("register pipeline task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the pipeline immediately.
func (s *Scheduler) RunNow() {
	s.runTask()
}

// runTask logs failures instead of exiting so the next tick still fires.
func (s *Scheduler) runTask() {
	if s.Ctx.Err() != nil {
		return
	}
	log.Info().Msg("running scheduled pipeline")
	if _, err := s.Pipeline.Run(s.Ctx); err != nil {
		log.Error().Err(err).Msg("scheduled run failed")
	}
}
