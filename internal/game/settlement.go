package game

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/saddleup/internal/engine"
	"github.com/yourusername/saddleup/internal/metrics"
	"github.com/yourusername/saddleup/internal/models"
)

// ApplySettlement credits every payout to its bettor and marks the race as
// played for everyone who had money in the pool, winners and losers alike.
func (s *State) ApplySettlement(race *models.Race, settlement *engine.Settlement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paid := 0
	totalPaid := 0.0
	for betType, byUser := range settlement.Payouts {
		for userID, amount := range byUser {
			user, ok := s.users[userID]
			if !ok {
				continue
			}
			user.Balance += amount
			user.TotalWinnings += amount
			metrics.RecordPayout(string(betType), amount)
			paid++
			totalPaid += amount
		}
	}

	participants := make(map[string]struct{})
	for _, bet := range race.Pool().AllBets() {
		participants[bet.UserID] = struct{}{}
	}
	for userID := range participants {
		if user, ok := s.users[userID]; ok {
			user.RacesPlayed++
		}
	}

	s.refreshLeaderboardLocked()

	s.log.WithFields(logrus.Fields{
		"race_id":      race.ID,
		"payouts":      paid,
		"participants": len(participants),
	}).Info("Settlement applied")
	s.audit.LogRaceSettled(race.ID, totalPaid, paid, len(participants))
}
