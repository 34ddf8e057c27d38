// Package engine runs races and settles their betting pools.
package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/saddleup/internal/models"
)

// SimulatorConfig carries the physics and termination tuning for a race.
type SimulatorConfig struct {
	// TickInterval is the wall-clock gap between movement steps.
	TickInterval time.Duration
	// MovementScale converts strength into distance per second of race time.
	MovementScale float64
	// GracePeriod is how long trailing horses keep running after the third
	// finisher crosses the line.
	GracePeriod time.Duration
	// MaxDuration is the hard ceiling on a single race.
	MaxDuration time.Duration
}

// DefaultSimulatorConfig returns the standard race timing.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		TickInterval:  100 * time.Millisecond,
		MovementScale: 2.5,
		GracePeriod:   time.Second,
		MaxDuration:   60 * time.Second,
	}
}

// Observer is invoked after every movement tick, before the simulator
// sleeps. It runs on the simulation goroutine and must return promptly.
type Observer func(race *models.Race)

// Simulator advances a race tick by tick until enough horses have finished.
// One simulator drives one race at a time; the race itself guards its
// state, so observers may snapshot it from other goroutines.
type Simulator struct {
	cfg SimulatorConfig
	log *logrus.Logger
	rng *rand.Rand
}

// NewSimulator creates a simulator. A nil rng falls back to a time seeded
// source.
func NewSimulator(cfg SimulatorConfig, log *logrus.Logger, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{cfg: cfg, log: log, rng: rng}
}

// Run simulates the race to completion and returns the finish order. Every
// horse is guaranteed a finish position: when the grace period after the
// third finisher expires, when the safety ceiling hits, or when the context
// is cancelled, the stragglers are force finished in field order. The race
// leaves Run in the results phase.
func (s *Simulator) Run(ctx context.Context, race *models.Race, observe Observer) []*models.Horse {
	dt := s.cfg.TickInterval.Seconds()
	fieldSize := len(race.Horses)
	if fieldSize == 0 {
		race.SetPhase(models.PhaseResults)
		return nil
	}
	start := time.Now()
	var thirdCrossedAt time.Time

	s.log.WithFields(logrus.Fields{
		"race_id":    race.ID,
		"field_size": fieldSize,
		"distance":   race.Distance,
	}).Info("Race simulation started")

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	increments := make([]float64, fieldSize)
	ceilingHit := false

loop:
	for {
		for i, h := range race.Horses {
			jitter := 0.8 + s.rng.Float64()*0.4
			increments[i] = h.Strength() * jitter * dt * s.cfg.MovementScale
		}
		finished := race.AdvanceHorses(increments)

		if finished >= 3 && thirdCrossedAt.IsZero() {
			thirdCrossedAt = time.Now()
		}

		if observe != nil {
			observe(race)
		}

		if !thirdCrossedAt.IsZero() && time.Since(thirdCrossedAt) >= s.cfg.GracePeriod {
			break loop
		}
		if time.Since(start) >= s.cfg.MaxDuration {
			ceilingHit = true
			break loop
		}

		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
		}
	}

	race.ForceFinishRemaining()
	race.SetPhase(models.PhaseResults)

	order := race.FinishOrder()
	entry := s.log.WithFields(logrus.Fields{
		"race_id":  race.ID,
		"duration": time.Since(start).Round(time.Millisecond).String(),
		"winner":   order[0].Name,
	})
	if ceilingHit {
		entry.Warn("Race hit the safety ceiling before three finishers")
	} else {
		entry.Info("Race simulation complete")
	}
	return order
}
