package game

import (
	"sort"

	"github.com/yourusername/saddleup/internal/models"
)

// leaderboardSize caps the public ranking.
const leaderboardSize = 10

// Leaderboard returns the cached ranking, at most ten entries deep.
func (s *State) Leaderboard() []models.LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LeaderboardEntry, len(s.leaderboard))
	copy(out, s.leaderboard)
	return out
}

// refreshLeaderboardLocked recomputes the ranking from the registry. Only
// connected users and synthetic bettors are ranked; disconnected humans
// drop off until they return. Ties break by username so the ordering is
// deterministic.
func (s *State) refreshLeaderboardLocked() {
	eligible := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		if user.Connected || user.IsSynthetic() {
			eligible = append(eligible, user)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Balance != eligible[j].Balance {
			return eligible[i].Balance > eligible[j].Balance
		}
		return eligible[i].Username < eligible[j].Username
	})
	if len(eligible) > leaderboardSize {
		eligible = eligible[:leaderboardSize]
	}

	entries := make([]models.LeaderboardEntry, len(eligible))
	for i, user := range eligible {
		user.Rank = i + 1
		entries[i] = models.LeaderboardEntry{
			Username:      user.Username,
			Balance:       user.Balance,
			TotalWinnings: user.TotalWinnings,
			RacesPlayed:   user.RacesPlayed,
			Rank:          i + 1,
		}
	}
	s.leaderboard = entries
}
