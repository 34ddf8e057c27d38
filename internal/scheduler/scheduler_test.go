package scheduler

import (
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testSnapshot() Snapshot {
	return Snapshot{ConnectedClients: 2, KnownUsers: 5, SyntheticPopulation: 40, CurrentRaceID: 7}
}

// TestScheduleStatsReportRuns tests that a scheduled report fires
func TestScheduleStatsReportRuns(t *testing.T) {
	s := NewScheduler(testLogger(), nil)

	var runs int64
	err := s.ScheduleStatsReport("@every 100ms", func() Snapshot {
		atomic.AddInt64(&runs, 1)
		return testSnapshot()
	})
	if err != nil {
		t.Fatalf("expected no error scheduling, got %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("expected no error starting, got %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&runs) == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	if atomic.LoadInt64(&runs) == 0 {
		t.Fatal("expected the stats report job to run at least once")
	}
}

// TestScheduleWhileRunningFails tests the schedule-before-start rule
func TestScheduleWhileRunningFails(t *testing.T) {
	s := NewScheduler(testLogger(), nil)

	if err := s.ScheduleStatsReport("@every 1h", testSnapshot); err != nil {
		t.Fatalf("expected no error scheduling, got %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("expected no error starting, got %v", err)
	}
	defer s.Stop()

	if err := s.ScheduleStatsReport("@every 1h", testSnapshot); err == nil {
		t.Fatal("expected error scheduling while running")
	}
}

// TestStartWithoutJobsFails tests that an empty scheduler refuses to start
func TestStartWithoutJobsFails(t *testing.T) {
	s := NewScheduler(testLogger(), nil)

	if err := s.Start(); err == nil {
		t.Fatal("expected error starting with no jobs")
	}
}

// TestStartTwiceFails tests double-start protection
func TestStartTwiceFails(t *testing.T) {
	s := NewScheduler(testLogger(), nil)

	if err := s.ScheduleStatsReport("@every 1h", testSnapshot); err != nil {
		t.Fatalf("expected no error scheduling, got %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("expected no error starting, got %v", err)
	}
	defer s.Stop()

	if err := s.Start(); err == nil {
		t.Fatal("expected error on second start")
	}
}

// TestStopWithoutStart tests that stopping an idle scheduler is a no-op
func TestStopWithoutStart(t *testing.T) {
	s := NewScheduler(testLogger(), nil)

	if err := s.Stop(); err != nil {
		t.Fatalf("expected no error stopping idle scheduler, got %v", err)
	}
	if s.IsRunning() {
		t.Error("expected scheduler to report not running")
	}
}

// TestGetNextRun tests next-run reporting around the lifecycle
func TestGetNextRun(t *testing.T) {
	s := NewScheduler(testLogger(), nil)

	if !s.GetNextRun().IsZero() {
		t.Error("expected zero next run before start")
	}

	if err := s.ScheduleStatsReport("@every 1h", testSnapshot); err != nil {
		t.Fatalf("expected no error scheduling, got %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("expected no error starting, got %v", err)
	}
	defer s.Stop()

	next := s.GetNextRun()
	if next.IsZero() {
		t.Fatal("expected a next run time while running")
	}
	if !next.After(time.Now()) {
		t.Errorf("expected next run in the future, got %v", next)
	}
}
