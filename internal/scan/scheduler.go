package scan

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler triggers periodic scans from a cron expression. The coordinator's
// sentinel makes overlapping triggers harmless.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// AddScan registers a periodic scan trigger.
// Schedule examples:
//   - "0 */10 9-16 * * MON-FRI" - every 10 minutes during market hours
//   - "@every 10m"              - every 10 minutes
func (s *Scheduler) AddScan(schedule string, coordinator *Coordinator) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if coordinator.Schedule() {
			s.logger.Debug().Msg("Scheduled scan enqueued")
		}
	})
	return err
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for a running trigger to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}
