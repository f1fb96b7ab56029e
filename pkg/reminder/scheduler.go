package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs reminders daily at 9 AM.
const DefaultSchedule = "0 9 * * *"

// Scheduler runs a Reminder on a cron schedule.
type Scheduler struct {
	reminder *Reminder
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
	onRun    func(*Result, error)
}

// NewScheduler creates a scheduler for the given standard cron expression.
func NewScheduler(r *Reminder, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		reminder: r,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "reminder.scheduler"),
	}
}

// Start schedules reminder runs and stops them when ctx is cancelled. An empty
// schedule leaves the scheduler idle.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("reminder schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("reminder scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}

	s.cron = c
	s.cron.Start()
	s.running = true
	s.logger.Info("reminder scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.stop(c)
	}()
	return nil
}

// OnRun registers a callback invoked after every scheduled run. It must be
// called before Start.
func (s *Scheduler) OnRun(fn func(*Result, error)) {
	s.onRun = fn
}

func (s *Scheduler) run(ctx context.Context) {
	res, err := s.reminder.Run(ctx)
	if s.onRun != nil {
		s.onRun(res, err)
	}
	if err != nil {
		s.logger.Error("scheduled reminder failed", "error", err)
		return
	}
	if res.Disabled {
		s.logger.Debug("scheduled reminder skipped, notifications disabled")
	}
}

// Stop stops the scheduler and waits for a running reminder to finish. The
// scheduler can be started again afterwards.
func (s *Scheduler) Stop() {
	s.stop(nil)
}

// stop halts the active cron. A non-nil c only stops that instance, so a
// cancelled context from an earlier Start leaves a later one running.
func (s *Scheduler) stop(c *cron.Cron) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || (c != nil && c != s.cron) {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("reminder scheduler stopped")
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled run, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
