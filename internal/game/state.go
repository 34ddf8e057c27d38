// Package game holds the shared live state of the table and the loop that
// drives races through their phases.
package game

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/saddleup/internal/logger"
	"github.com/yourusername/saddleup/internal/metrics"
	"github.com/yourusername/saddleup/internal/models"
)

// StateConfig carries the account and stake rules for the table.
type StateConfig struct {
	// StartingBalance granted to every new user.
	StartingBalance float64
	// MinBet and MaxBet bound human stakes. Synthetic bettors have their
	// own floor and bypass these.
	MinBet float64
	MaxBet float64
}

// DefaultStateConfig returns the standard table rules.
func DefaultStateConfig() StateConfig {
	return StateConfig{
		StartingBalance: 10.0,
		MinBet:          1.0,
		MaxBet:          1000.0,
	}
}

// State is the single synchronization point for everything the connection
// layer and the game loop share: the user registry, the current race and
// the cached leaderboard. One mutex serializes every balance mutation, so
// debits and credits can never interleave per user.
//
// Lock order: State first, then the race's own lock. Nothing that holds
// the race lock may call back into State.
type State struct {
	cfg   StateConfig
	log   *logrus.Logger
	audit *logger.AuditLogger

	mu          sync.RWMutex
	users       map[string]*models.User
	byUsername  map[string]string
	race        *models.Race
	raceCounter int
	leaderboard []models.LeaderboardEntry
}

// NewState creates an empty table.
func NewState(cfg StateConfig, log *logrus.Logger) *State {
	return &State{
		cfg:        cfg,
		log:        log,
		audit:      logger.NewAuditLogger(log),
		users:      make(map[string]*models.User),
		byUsername: make(map[string]string),
	}
}

// Login resolves a username to a user, creating one with the starting
// balance on first sight. Logging in to an existing name reconnects that
// user; synthetic identities are never handed to humans. Returns a copy of
// the user.
func (s *State) Login(username string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, models.ErrUsernameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byUsername[username]; ok {
		if user := s.users[id]; user != nil && !user.IsSynthetic() {
			user.Connected = true
			s.refreshLeaderboardLocked()
			s.audit.LogUserLogin(user.ID, username, user.Balance, true)
			return *user, nil
		}
	}

	user := models.NewUser(uuid.New().String(), username, s.cfg.StartingBalance)
	s.users[user.ID] = user
	s.byUsername[username] = user.ID
	s.refreshLeaderboardLocked()

	s.log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": username,
	}).Info("New user created")
	s.audit.LogUserLogin(user.ID, username, user.Balance, false)
	return *user, nil
}

// Disconnect marks the user as offline. The account and its balance stay
// for a later login under the same name.
func (s *State) Disconnect(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.Connected = false
		s.refreshLeaderboardLocked()
	}
}

// User returns a copy of the user with the given ID.
func (s *State) User(userID string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		return *user, true
	}
	return models.User{}, false
}

// UserBalance returns the user's current balance.
func (s *State) UserBalance(userID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		return user.Balance, true
	}
	return 0, false
}

// UserCount returns the size of the registry, synthetic users included.
func (s *State) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// ConnectedHumans counts users with a live connection.
func (s *State) ConnectedHumans() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectedHumansLocked()
}

func (s *State) connectedHumansLocked() int {
	count := 0
	for _, user := range s.users {
		if user.Connected {
			count++
		}
	}
	return count
}

// RegisterSynthetic adds a pool-created user to the registry.
func (s *State) RegisterSynthetic(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	s.byUsername[user.Username] = user.ID
}

// RemoveUser deletes a user outright. Only the synthetic pool retires
// users; human accounts persist across disconnects.
func (s *State) RemoveUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return
	}
	if s.byUsername[user.Username] == userID {
		delete(s.byUsername, user.Username)
	}
	delete(s.users, userID)
}

// NextRace installs the given race as current, superseding any previous
// one, and returns it.
func (s *State) NextRace(race *models.Race) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.race = race
	metrics.UpdateCurrentRace(race.ID)
}

// NextRaceID increments and returns the monotonic race counter.
func (s *State) NextRaceID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raceCounter++
	return s.raceCounter
}

// CurrentRace returns the race in progress, or nil before the first one.
func (s *State) CurrentRace() *models.Race {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.race
}

// PlaceHumanBet validates and applies a bet from a connected client. On
// success the stake is debited and a copy of the updated user is returned
// along with the accepted bet. Validation failures leave state untouched.
func (s *State) PlaceHumanBet(userID, betTypeRaw string, amount float64, selection []int) (models.User, *models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, nil, models.ErrUserNotFound
	}

	race := s.race
	if race == nil || race.Phase() != models.PhaseBetting {
		return models.User{}, nil, models.ErrBettingClosed
	}

	betType, err := models.ParseBetType(betTypeRaw)
	if err != nil {
		return models.User{}, nil, err
	}
	if err := s.validateAmount(amount); err != nil {
		return models.User{}, nil, err
	}
	if err := validateSelection(race, betType, selection); err != nil {
		return models.User{}, nil, err
	}
	if race.HasBetOfType(userID, betType) {
		return models.User{}, nil, fmt.Errorf("%w: one %s bet per race", models.ErrDuplicateBet, betType)
	}

	// Small buffer tolerates float drift from earlier payouts.
	if user.Balance < amount-0.01 {
		return models.User{}, nil, models.ErrInsufficientBalance
	}

	bet := models.NewBet(userID, betType, amount, selection)
	if !race.AddBet(bet) {
		return models.User{}, nil, models.ErrBettingClosed
	}
	user.Balance -= amount
	s.refreshLeaderboardLocked()

	metrics.RecordBetPlaced(string(betType), "human")
	metrics.ObserveBetAmount(string(betType), amount)
	s.audit.LogBetPlaced(userID, user.Username, race.ID, string(betType), amount, selection)
	return *user, bet, nil
}

// PlaceSyntheticBet applies a bet from the synthetic pool. Pool bets were
// already shaped by their bettor, so only the balance and the phase gate
// are enforced here.
func (s *State) PlaceSyntheticBet(userID string, betType models.BetType, amount float64, selection []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	race := s.race
	if race == nil {
		return models.ErrNoActiveRace
	}
	if user.Balance < amount {
		return models.ErrInsufficientBalance
	}

	bet := models.NewBet(userID, betType, amount, selection)
	if !race.AddBet(bet) {
		return models.ErrBettingClosed
	}
	user.Balance -= amount
	s.refreshLeaderboardLocked()

	metrics.RecordBetPlaced(string(betType), "synthetic")
	metrics.ObserveBetAmount(string(betType), amount)
	return nil
}

func (s *State) validateAmount(amount float64) error {
	// NaN slips through ordered comparisons, so reject non-finite first.
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return models.ErrInvalidAmount
	}
	if amount <= 0 {
		return models.ErrAmountNotPositive
	}
	if amount > s.cfg.MaxBet {
		return models.ErrAmountTooLarge
	}
	if amount < s.cfg.MinBet {
		return fmt.Errorf("%w: minimum is %.2f", models.ErrAmountBelowMinimum, s.cfg.MinBet)
	}
	return nil
}

// validateSelection checks cardinality, distinctness and horse existence
// for the given market.
func validateSelection(race *models.Race, betType models.BetType, selection []int) error {
	if len(selection) == 0 {
		return models.ErrInvalidSelection
	}

	want := betType.SelectionSize()
	if len(selection) != want {
		if want == 1 {
			return fmt.Errorf("%w: must select exactly one horse", models.ErrInvalidSelection)
		}
		return fmt.Errorf("%w: must select exactly three horses", models.ErrInvalidSelection)
	}

	if betType == models.BetTypeTrifecta {
		seen := make(map[int]bool, len(selection))
		for _, id := range selection {
			if seen[id] {
				return fmt.Errorf("%w: must select three different horses", models.ErrInvalidSelection)
			}
			seen[id] = true
		}
	}

	for _, id := range selection {
		if race.HorseByID(id) == nil {
			return fmt.Errorf("%w: horse %d", models.ErrUnknownHorse, id)
		}
	}
	return nil
}
