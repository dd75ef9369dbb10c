package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/webfonts/internal/logfields"
)

// Scheduler wraps gocron scheduler for managing periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// SchedulePeriodic runs task every interval, starting immediately when
// immediate is set. Overlapping runs are skipped.
// Returns the job ID for later management.
func (s *Scheduler) SchedulePeriodic(name string, interval time.Duration, immediate bool, task func()) (string, error) {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if immediate {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Debug("Executing scheduled job", logfields.JobName(name))
			task()
		}),
		opts...,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic job %s: %w", name, err)
	}
	return job.ID().String(), nil
}

// JobCount returns the number of scheduled jobs.
func (s *Scheduler) JobCount() int {
	return len(s.scheduler.Jobs())
}
