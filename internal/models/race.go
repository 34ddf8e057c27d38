package models

import (
	"sync"
	"time"
)

// RacePhase tracks where a race is in its lifecycle. Transitions only run
// forward: betting, then racing, then results.
type RacePhase string

const (
	PhaseBetting RacePhase = "betting"
	PhaseRacing  RacePhase = "racing"
	PhaseResults RacePhase = "results"
)

func (p RacePhase) order() int {
	switch p {
	case PhaseBetting:
		return 0
	case PhaseRacing:
		return 1
	case PhaseResults:
		return 2
	}
	return -1
}

// Race represents one full cycle: a field of horses, the pool of bets taken
// while betting is open, and the order of finish once the race has run.
//
// The mutex guards phase, pool membership, horse race state and the finish
// list. Horse attributes and the field itself never change after creation
// and may be read without locking.
type Race struct {
	ID       int
	Horses   []*Horse
	Distance float64

	mu             sync.RWMutex
	phase          RacePhase
	pool           *BettingPool
	finished       []*Horse
	startedAt      time.Time
	bettingEndedAt time.Time
	racingEndedAt  time.Time
}

// NewRace creates a race in the betting phase with an empty pool.
func NewRace(id int, horses []*Horse, distance float64) *Race {
	return &Race{
		ID:        id,
		Horses:    horses,
		Distance:  distance,
		phase:     PhaseBetting,
		pool:      NewBettingPool(),
		startedAt: time.Now(),
	}
}

// Phase returns the current lifecycle phase.
func (r *Race) Phase() RacePhase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

// SetPhase advances the race to the next phase and timestamps the
// transition. Attempts to move backwards or skip are rejected.
func (r *Race) SetPhase(next RacePhase) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if next.order() != r.phase.order()+1 {
		return false
	}
	switch next {
	case PhaseRacing:
		r.bettingEndedAt = time.Now()
	case PhaseResults:
		r.racingEndedAt = time.Now()
	}
	r.phase = next
	return true
}

// AddBet files the bet into the pool if betting is still open. The phase
// check and the pool append happen under one lock so a bet can never land
// in a race that has already started.
func (r *Race) AddBet(bet *Bet) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseBetting {
		return false
	}
	r.pool.Add(bet)
	return true
}

// Pool exposes the betting pool. Only safe to walk once the race has left
// the betting phase; before that, use the aggregate helpers below.
func (r *Race) Pool() *BettingPool {
	return r.pool
}

// PoolTotal returns the summed stake for a bet type under the read lock.
func (r *Race) PoolTotal(betType BetType) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.Total(betType)
}

// PoolHorseTotal returns the stake on one horse for a bet type under the
// read lock.
func (r *Race) PoolHorseTotal(horseID int, betType BetType) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.HorseTotal(horseID, betType)
}

// HasBetOfType reports whether the user already bet this market.
func (r *Race) HasBetOfType(userID string, betType BetType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.HasBetOfType(userID, betType)
}

// HorseByID returns the horse with the given ID, or nil.
func (r *Race) HorseByID(id int) *Horse {
	for _, h := range r.Horses {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// HorseStrength returns the strength of the given horse, falling back to a
// neutral 1.0 when the ID is not part of the field.
func (r *Race) HorseStrength(id int) float64 {
	if h := r.HorseByID(id); h != nil {
		return h.Strength()
	}
	return 1.0
}

// AdvanceHorses applies one tick of movement. The increments slice is
// indexed like Horses; entries for already finished horses are ignored.
// Horses crossing the distance are granted the next finish position in
// field order. Returns the number of finished horses after the tick.
func (r *Race) AdvanceHorses(increments []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, h := range r.Horses {
		if h.Finished || i >= len(increments) {
			continue
		}
		h.Position += increments[i]
		if h.Position >= r.Distance {
			h.Position = r.Distance
			h.Finished = true
			h.FinishPosition = len(r.finished) + 1
			r.finished = append(r.finished, h)
		}
	}
	return len(r.finished)
}

// ForceFinishRemaining assigns finish positions to any horse still running,
// in field order. Used when the simulation hits its safety ceiling.
func (r *Race) ForceFinishRemaining() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.Horses {
		if h.Finished {
			continue
		}
		h.Finished = true
		h.FinishPosition = len(r.finished) + 1
		r.finished = append(r.finished, h)
	}
}

// FinishedCount returns how many horses have crossed the line.
func (r *Race) FinishedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.finished)
}

// FinishOrder returns the horses in finishing order. The returned slice is
// a copy; the horses themselves are shared.
func (r *Race) FinishOrder() []*Horse {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Horse, len(r.finished))
	copy(out, r.finished)
	return out
}

// HorseStates snapshots the mutable view of every horse in field order.
func (r *Race) HorseStates() []HorseState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	states := make([]HorseState, len(r.Horses))
	for i, h := range r.Horses {
		states[i] = h.State()
	}
	return states
}

// TimeRemaining reports the seconds left in the current phase given the
// configured betting and results durations. Racing has no fixed length, so
// it always reports zero.
func (r *Race) TimeRemaining(bettingDur, resultsDur time.Duration) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var remaining time.Duration
	switch r.phase {
	case PhaseBetting:
		remaining = bettingDur - time.Since(r.startedAt)
	case PhaseResults:
		remaining = resultsDur - time.Since(r.racingEndedAt)
	default:
		return 0
	}
	if remaining < 0 {
		return 0
	}
	return remaining.Seconds()
}
