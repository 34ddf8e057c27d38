package synthetic

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/saddleup/internal/metrics"
	"github.com/yourusername/saddleup/internal/models"
	"github.com/yourusername/saddleup/internal/odds"
)

// Config carries the population and stake tuning for the synthetic pool.
type Config struct {
	// MaxPopulation is the target headcount of the whole table. The pool
	// fills the gap the connected humans leave.
	MaxPopulation int
	// StartingBalance for freshly created bettors.
	StartingBalance float64
	// BaseStake is the nominal bet before personal scaling and jitter.
	BaseStake float64
	// MinStake is the floor below which bets are discarded and bettors
	// are retired.
	MinStake float64
	// ScheduleMargin keeps scheduled bets away from the betting window
	// edges.
	ScheduleMargin time.Duration
}

// DefaultConfig returns the standard pool tuning.
func DefaultConfig() Config {
	return Config{
		MaxPopulation:   1000,
		StartingBalance: 10.0,
		BaseStake:       1.0,
		MinStake:        0.1,
		ScheduleMargin:  time.Second,
	}
}

// Registry is the slice of game state the pool needs: somewhere to create
// and retire users, and a way to put money on a race.
type Registry interface {
	RegisterSynthetic(user *models.User)
	RemoveUser(userID string)
	UserBalance(userID string) (float64, bool)
	PlaceSyntheticBet(userID string, betType models.BetType, amount float64, selection []int) error
}

// scheduledBet is one pending wager with the instant it falls due.
type scheduledBet struct {
	due       time.Time
	bettorID  string
	betType   models.BetType
	amount    float64
	selection []int
}

// Manager owns the synthetic bettor population and its betting schedule.
// The game loop drives it: replenish and schedule at betting open, place
// due bets while betting runs, clean up after settlement.
type Manager struct {
	cfg      Config
	log      *logrus.Logger
	registry Registry

	mu       sync.Mutex
	rng      *rand.Rand
	names    *nameGenerator
	bettors  map[string]*Bettor
	schedule []scheduledBet
}

// NewManager creates a pool backed by the given registry. A nil rng falls
// back to a time seeded source.
func NewManager(cfg Config, registry Registry, log *logrus.Logger, rng *rand.Rand) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		cfg:      cfg,
		log:      log,
		registry: registry,
		rng:      rng,
		names:    newNameGenerator(rng),
		bettors:  make(map[string]*Bettor),
	}
}

// Population returns the current bettor headcount.
func (m *Manager) Population() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bettors)
}

// Replenish tops the population up to the target implied by the number of
// connected humans. Returns how many bettors were created.
func (m *Manager) Replenish(connectedHumans int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := m.cfg.MaxPopulation - connectedHumans
	if target < 0 {
		target = 0
	}
	needed := target - len(m.bettors)
	for i := 0; i < needed; i++ {
		id := uuid.New()
		userID := fmt.Sprintf("%s%x", models.SyntheticIDPrefix, id[:4])
		username := m.names.Generate()

		user := models.NewUser(userID, username, m.cfg.StartingBalance)
		user.Connected = false
		m.registry.RegisterSynthetic(user)
		m.bettors[userID] = newBettor(userID, username, m.rng)
	}

	metrics.UpdateSyntheticPopulation(len(m.bettors))
	if needed <= 0 {
		return 0
	}
	m.log.WithFields(logrus.Fields{
		"created":    needed,
		"population": len(m.bettors),
		"humans":     connectedHumans,
	}).Info("Replenished synthetic bettors")
	return needed
}

// CleanupBroke retires bettors whose balance fell below the minimum stake,
// removing them from the registry as well. Returns how many were removed.
func (m *Manager) CleanupBroke() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id := range m.bettors {
		balance, ok := m.registry.UserBalance(id)
		if ok && balance >= m.cfg.MinStake {
			continue
		}
		delete(m.bettors, id)
		m.registry.RemoveUser(id)
		removed++
	}

	metrics.UpdateSyntheticPopulation(len(m.bettors))
	if removed > 0 {
		m.log.WithField("removed", removed).Info("Removed broke synthetic bettors")
	}
	return removed
}

// ScheduleRace discards any stale schedule and books this race's bets at
// random instants inside the betting window, clear of its edges. Bets that
// come out under the minimum stake are discarded. Returns how many bets
// were scheduled.
func (m *Manager) ScheduleRace(race *models.Race, pricing *odds.Engine, bettingWindow time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.schedule = m.schedule[:0]
	now := time.Now()
	span := bettingWindow - 2*m.cfg.ScheduleMargin
	if span < 0 {
		span = 0
	}

	for _, bettor := range m.bettors {
		if !bettor.shouldBet(m.rng) {
			continue
		}

		numBets := m.drawBetCount()
		for i := 0; i < numBets; i++ {
			due := now.Add(m.cfg.ScheduleMargin + time.Duration(m.rng.Float64()*float64(span)))

			betType := bettor.chooseBetType(m.rng)
			selection := bettor.chooseSelection(m.rng, race, pricing, betType)
			if len(selection) == 0 {
				continue
			}

			balance, ok := m.registry.UserBalance(bettor.UserID)
			if !ok {
				continue
			}
			amount := bettor.stake(m.rng, m.cfg.BaseStake, balance)
			if amount < m.cfg.MinStake {
				continue
			}

			m.schedule = append(m.schedule, scheduledBet{
				due:       due,
				bettorID:  bettor.UserID,
				betType:   betType,
				amount:    amount,
				selection: selection,
			})
		}
	}

	sort.Slice(m.schedule, func(i, j int) bool {
		return m.schedule[i].due.Before(m.schedule[j].due)
	})

	m.log.WithFields(logrus.Fields{
		"race_id":   race.ID,
		"scheduled": len(m.schedule),
	}).Debug("Scheduled synthetic bets")
	return len(m.schedule)
}

// drawBetCount picks 1 to 3 bets, weighted heavily toward a single bet.
func (m *Manager) drawBetCount() int {
	switch draw := m.rng.Float64(); {
	case draw < 0.70:
		return 1
	case draw < 0.95:
		return 2
	default:
		return 3
	}
}

// PlaceDueBets applies every scheduled bet whose time has come. Rejected
// bets are dropped; balances may have moved since scheduling. Returns how
// many bets were placed.
func (m *Manager) PlaceDueBets(now time.Time) int {
	m.mu.Lock()
	var due []scheduledBet
	for len(m.schedule) > 0 && !m.schedule[0].due.After(now) {
		due = append(due, m.schedule[0])
		m.schedule = m.schedule[1:]
	}
	m.mu.Unlock()

	placed := 0
	for _, sb := range due {
		err := m.registry.PlaceSyntheticBet(sb.bettorID, sb.betType, sb.amount, sb.selection)
		if err != nil {
			m.log.WithError(err).WithFields(logrus.Fields{
				"bettor":   sb.bettorID,
				"bet_type": sb.betType,
			}).Debug("Synthetic bet rejected")
			continue
		}
		metrics.RecordBetPlaced(string(sb.betType), "synthetic")
		placed++
	}
	return placed
}
