package steward

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// Scheduler runs bulk chain propagation on a cron schedule over the
// configured namespaces.
type Scheduler struct {
	service    *Service
	cron       *cron.Cron
	schedule   string
	namespaces []string
	logger     *slog.Logger
}

// NewScheduler creates a scheduler. An empty schedule disables it; Start
// then does nothing.
func NewScheduler(service *Service, schedule string, namespaces []string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		service:    service,
		cron:       cron.New(),
		schedule:   schedule,
		namespaces: namespaces,
		logger:     logger.With("component", "scheduler"),
	}
}

// Start registers the propagation job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info("propagation schedule not set, scheduler disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.schedule, "namespaces", s.namespaces)
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runOnce chains propagation through every table of the configured
// namespaces. Per-table failures are logged and the run continues.
func (s *Scheduler) runOnce() {
	ctx := context.Background()
	for _, namespace := range s.namespaces {
		tables, err := s.service.schema.ListTables(ctx, namespace)
		if err != nil {
			s.logger.Error("scheduled run: list tables failed", "namespace", namespace, "error", err)
			continue
		}
		for _, table := range tables {
			outcomes, err := s.service.Chain(ctx, table, false)
			if err != nil {
				s.logger.Error("scheduled run: chain failed", "table", table.FQN(), "error", err)
				continue
			}
			s.logger.Info("scheduled run: chain finished",
				"table", table.FQN(), "outcomes", len(outcomes), "applied", countStatus(outcomes, domain.ApplyApplied))
		}
	}
}

func countStatus(outcomes []domain.ApplyOutcome, status domain.ApplyStatus) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
