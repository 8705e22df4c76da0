package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher reloads cached data
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler runs the stock snapshot refresh on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	refresher Refresher
	timeout   time.Duration
	logger    *zap.Logger
}

// NewScheduler creates a scheduler refreshing on schedule, a standard
// 5-field cron expression.
func NewScheduler(schedule string, refresher Refresher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:      cron.New(),
		schedule:  schedule,
		refresher: refresher,
		timeout:   time.Minute,
		logger:    logger.Named("scheduler"),
	}
}

// Start registers the refresh job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.refresh); err != nil {
		return fmt.Errorf("failed to schedule snapshot refresh %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Error("failed to refresh stock snapshot", zap.Error(err))
	}
}
