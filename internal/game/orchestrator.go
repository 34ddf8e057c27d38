package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/saddleup/internal/engine"
	"github.com/yourusername/saddleup/internal/metrics"
	"github.com/yourusername/saddleup/internal/models"
	"github.com/yourusername/saddleup/internal/notify"
	"github.com/yourusername/saddleup/internal/odds"
	"github.com/yourusername/saddleup/internal/synthetic"
)

// Broadcaster pushes game events to every connected client. The hub in the
// server package implements it; tests substitute a recorder.
type Broadcaster interface {
	BroadcastRaceState(snapshot models.RaceSnapshot)
	BroadcastRaceUpdate(horses []models.HorseState)
	BroadcastOddsUpdate(board map[int]models.HorseOdds, timeRemaining float64)
	BroadcastPhaseUpdate(phase models.RacePhase, timeRemaining float64)
	BroadcastRaceResults(results models.RaceResults)
	BroadcastLeaderboard(entries []models.LeaderboardEntry)
}

// Config carries the timings of the race cycle together with the tuning of
// the components the orchestrator builds.
type Config struct {
	// BettingDuration is how long each race accepts bets.
	BettingDuration time.Duration
	// ResultsDuration is how long results stay on screen before the next race.
	ResultsDuration time.Duration
	// OddsInterval is the cadence of live odds broadcasts while betting is open.
	OddsInterval time.Duration
	// PhaseInterval is the countdown cadence during the results phase.
	PhaseInterval time.Duration
	// RecoveryBackoff is the pause after a crashed cycle before a new race starts.
	RecoveryBackoff time.Duration

	Race      engine.RaceConfig
	Simulator engine.SimulatorConfig
	Odds      odds.Params
}

// DefaultConfig returns the production cycle: thirty seconds of betting,
// ten of results, quarter second odds updates.
func DefaultConfig() Config {
	return Config{
		BettingDuration: 30 * time.Second,
		ResultsDuration: 10 * time.Second,
		OddsInterval:    250 * time.Millisecond,
		PhaseInterval:   time.Second,
		RecoveryBackoff: 5 * time.Second,
		Race:            engine.DefaultRaceConfig(),
		Simulator:       engine.DefaultSimulatorConfig(),
		Odds:            odds.DefaultParams(),
	}
}

// Orchestrator drives the endless betting, racing, results cycle. It owns
// the pricing engine, the simulator and the settler; the shared state, the
// synthetic pool and the broadcaster are injected.
type Orchestrator struct {
	cfg       Config
	state     *State
	bettors   *synthetic.Manager
	caster    Broadcaster
	pricing   *odds.Engine
	simulator *engine.Simulator
	settler   *engine.Settler
	log       *logrus.Logger
	rng       *rand.Rand
	notifier  *notify.Notifier

	mu      sync.RWMutex
	running bool
	done    chan struct{}
}

func NewOrchestrator(cfg Config, state *State, bettors *synthetic.Manager, caster Broadcaster, log *logrus.Logger, rng *rand.Rand) *Orchestrator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	pricing := odds.NewEngine(cfg.Odds)
	return &Orchestrator{
		cfg:       cfg,
		state:     state,
		bettors:   bettors,
		caster:    caster,
		pricing:   pricing,
		simulator: engine.NewSimulator(cfg.Simulator, log, rng),
		settler:   engine.NewSettler(pricing, log),
		log:       log,
		rng:       rng,
	}
}

// SetNotifier attaches an external event notifier. Must be called before
// Start. A nil notifier keeps notifications off.
func (o *Orchestrator) SetNotifier(n *notify.Notifier) {
	o.notifier = n
}

// Start launches the race cycle in the background. It fails if the
// orchestrator is already running.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already running")
	}
	o.running = true
	o.done = make(chan struct{})
	done := o.done
	o.mu.Unlock()

	o.log.WithFields(logrus.Fields{
		"betting_duration": o.cfg.BettingDuration,
		"results_duration": o.cfg.ResultsDuration,
		"odds_interval":    o.cfg.OddsInterval,
	}).Info("Game loop starting")

	go o.run(ctx, done)
	return nil
}

// Stop signals the race cycle to exit. The current phase finishes its
// in-flight broadcast and the loop ends before the next one.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running {
		return
	}
	o.running = false
	close(o.done)
	o.log.Info("Game loop stopped")
}

// IsRunning reports whether the race cycle is active.
func (o *Orchestrator) IsRunning() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.running
}

// SyntheticPopulation reports how many automated bettors are active.
func (o *Orchestrator) SyntheticPopulation() int {
	return o.bettors.Population()
}

// Snapshot captures the public view of a race: phase, field, odds board
// and the countdown for the current phase. The board is only quoted while
// betting is open; results carry their own closing odds.
func (o *Orchestrator) Snapshot(race *models.Race) models.RaceSnapshot {
	phase := race.Phase()
	snapshot := models.RaceSnapshot{
		ID:            race.ID,
		Phase:         phase,
		Horses:        race.HorseStates(),
		Odds:          map[int]models.HorseOdds{},
		TimeRemaining: race.TimeRemaining(o.cfg.BettingDuration, o.cfg.ResultsDuration),
	}
	if phase == models.PhaseBetting {
		snapshot.Odds = o.pricing.Board(race)
	}
	return snapshot
}

// CurrentSnapshot returns the snapshot of the race in progress, or false
// before the first race opens.
func (o *Orchestrator) CurrentSnapshot() (models.RaceSnapshot, bool) {
	race := o.state.CurrentRace()
	if race == nil {
		return models.RaceSnapshot{}, false
	}
	return o.Snapshot(race), true
}

// RunCycle drives one complete race from opening bets to the end of the
// results phase. It returns false when the context or a Stop call cut the
// cycle short.
func (o *Orchestrator) RunCycle(ctx context.Context) bool {
	o.mu.RLock()
	done := o.done
	o.mu.RUnlock()
	return o.cycle(ctx, done)
}

func (o *Orchestrator) run(ctx context.Context, done chan struct{}) {
	o.log.Info("Game loop started")
	for {
		select {
		case <-ctx.Done():
			o.log.Info("Game loop shutting down")
			return
		case <-done:
			return
		default:
		}

		if err := o.safeCycle(ctx, done); err != nil {
			metrics.RecordLoopRecovery()
			o.log.WithError(err).Error("Race cycle crashed, recovering with a new race")
			go o.notifier.LoopError(err)
			if !sleepCtx(ctx, done, o.cfg.RecoveryBackoff) {
				return
			}
		}
	}
}

// safeCycle converts a panic anywhere in the cycle into an error so one bad
// race cannot take the whole loop down.
func (o *Orchestrator) safeCycle(ctx context.Context, done chan struct{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("race cycle panic: %v", r)
		}
	}()
	o.cycle(ctx, done)
	return nil
}

func (o *Orchestrator) cycle(ctx context.Context, done chan struct{}) bool {
	race := o.openRace()
	if !o.bettingPhase(ctx, done, race) {
		return false
	}
	o.racingPhase(ctx, race)
	o.settleRace(race)
	return o.resultsPhase(ctx, done, race)
}

// openRace refreshes the synthetic pool, installs a fresh race and
// announces it.
func (o *Orchestrator) openRace() *models.Race {
	humans := o.state.ConnectedHumans()
	metrics.UpdateConnectedHumans(humans)
	o.bettors.Replenish(humans)
	o.bettors.CleanupBroke()

	race := engine.CreateRace(o.state.NextRaceID(), o.cfg.Race, o.rng)
	o.state.NextRace(race)
	scheduled := o.bettors.ScheduleRace(race, o.pricing, o.cfg.BettingDuration)

	o.log.WithFields(logrus.Fields{
		"race_id":        race.ID,
		"horses":         len(race.Horses),
		"humans":         humans,
		"synthetic":      o.bettors.Population(),
		"scheduled_bets": scheduled,
	}).Info("Race opened for betting")

	o.caster.BroadcastRaceState(o.Snapshot(race))
	return race
}

// bettingPhase feeds scheduled synthetic bets in and broadcasts the live
// board until the window closes.
func (o *Orchestrator) bettingPhase(ctx context.Context, done chan struct{}, race *models.Race) bool {
	deadline := time.Now().Add(o.cfg.BettingDuration)
	ticker := time.NewTicker(o.cfg.OddsInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false
		case <-done:
			return false
		case <-ticker.C:
			o.bettors.PlaceDueBets(time.Now())
			o.caster.BroadcastOddsUpdate(o.pricing.Board(race), race.TimeRemaining(o.cfg.BettingDuration, o.cfg.ResultsDuration))
		}
	}
	return true
}

// racingPhase freezes the pool and lets the simulator run the race,
// relaying every movement tick to the clients.
func (o *Orchestrator) racingPhase(ctx context.Context, race *models.Race) {
	race.SetPhase(models.PhaseRacing)
	o.caster.BroadcastRaceState(o.Snapshot(race))

	start := time.Now()
	o.simulator.Run(ctx, race, func(r *models.Race) {
		o.caster.BroadcastRaceUpdate(r.HorseStates())
	})
	metrics.RecordRaceCompleted(time.Since(start).Seconds())
}

// settleRace prices the finished race, pays everyone out and pushes the
// results and the refreshed leaderboard.
func (o *Orchestrator) settleRace(race *models.Race) {
	settlement := o.settler.Settle(race)
	o.state.ApplySettlement(race, settlement)

	results := o.state.BuildResults(race, settlement, o.pricing)
	o.caster.BroadcastRaceResults(results)
	o.caster.BroadcastLeaderboard(o.state.Leaderboard())
	o.caster.BroadcastRaceState(o.Snapshot(race))

	if len(results.Results) > 0 {
		go o.notifier.RaceCompleted(race.ID, results.Results[0].HorseName, settlement.TotalPaid())
	}
}

// resultsPhase counts the intermission down before the next race opens.
func (o *Orchestrator) resultsPhase(ctx context.Context, done chan struct{}, race *models.Race) bool {
	deadline := time.Now().Add(o.cfg.ResultsDuration)
	ticker := time.NewTicker(o.cfg.PhaseInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false
		case <-done:
			return false
		case <-ticker.C:
			o.caster.BroadcastPhaseUpdate(race.Phase(), race.TimeRemaining(o.cfg.BettingDuration, o.cfg.ResultsDuration))
		}
	}
	return true
}

func sleepCtx(ctx context.Context, done chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-done:
		return false
	case <-timer.C:
		return true
	}
}
