// Package scheduler runs the background maintenance jobs on cron
// schedules: the hourly order-type registry refresh and the periodic
// tick-cache cleanup.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/pkg/logger"
)

// Job is a named unit of scheduled work.
type Job interface {
	Name() string
	Run()
}

// Scheduler wraps the cron runner with logging per job.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  logger.ForComponent(log, "scheduler"),
	}
}

// Register adds a job on the given cron spec ("@hourly", "@every 10m", ...).
func (s *Scheduler) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Running scheduled job")
		job.Run()
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("job", job.Name()).Str("spec", spec).Msg("Registered scheduled job")
	return nil
}

// Start begins running registered jobs in their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}
