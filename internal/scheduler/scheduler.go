// Package scheduler runs the recurring operational jobs of the server on
// cron expressions.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/saddleup/internal/notify"
)

// Snapshot is the operational summary a stats report works from.
type Snapshot struct {
	ConnectedClients    int
	KnownUsers          int
	SyntheticPopulation int
	CurrentRaceID       int
	Uptime              time.Duration
}

// SnapshotFunc produces a point-in-time summary of the running server.
type SnapshotFunc func() Snapshot

// Scheduler manages the recurring jobs. Jobs are registered before Start
// and run on the cron's own goroutine until Stop.
type Scheduler struct {
	cron            *cron.Cron
	log             *logrus.Logger
	notifier        *notify.Notifier
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. The notifier may be nil, in which
// case jobs only log.
func NewScheduler(log *logrus.Logger, notifier *notify.Notifier) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		log:             log,
		notifier:        notifier,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleStatsReport schedules a recurring operational summary. Each run
// logs the snapshot and, when a notifier is attached, pushes it as a
// status notification.
func (s *Scheduler) ScheduleStatsReport(cronExpression string, snap SnapshotFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		report := snap()
		s.log.WithFields(logrus.Fields{
			"connected_clients":    report.ConnectedClients,
			"known_users":          report.KnownUsers,
			"synthetic_population": report.SyntheticPopulation,
			"current_race_id":      report.CurrentRaceID,
			"uptime":               report.Uptime.Round(time.Second).String(),
		}).Info("Stats report")

		s.notifier.StatusReport(report.ConnectedClients, report.KnownUsers, report.SyntheticPopulation, report.CurrentRaceID)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.log.WithField("cron", cronExpression).Info("Scheduled stats report job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.log.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish
// up to the graceful timeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	select {
	case <-s.cron.Stop().Done():
	case <-time.After(s.gracefulTimeout):
		s.isRunning = false
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}

	s.isRunning = false
	s.log.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}
