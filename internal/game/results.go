package game

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourusername/saddleup/internal/engine"
	"github.com/yourusername/saddleup/internal/models"
	"github.com/yourusername/saddleup/internal/odds"
)

const topWinnersSize = 10

// BuildResults assembles the results payload for a settled race: the top
// three finishers with their closing odds, the trifecta summary, the ten
// biggest winners and the raw payout map.
func (s *State) BuildResults(race *models.Race, settlement *engine.Settlement, pricing *odds.Engine) models.RaceResults {
	board := pricing.Board(race)

	order := race.FinishOrder()
	podium := len(order)
	if podium > 3 {
		podium = 3
	}
	placed := make([]models.PlacedHorse, 0, podium)
	for _, horse := range order[:podium] {
		placed = append(placed, models.PlacedHorse{
			Position:   horse.FinishPosition,
			HorseID:    horse.ID,
			HorseName:  horse.Name,
			WinnerOdds: board[horse.ID].Winner,
			PlaceOdds:  board[horse.ID].Place,
		})
	}

	results := models.RaceResults{
		Results:      placed,
		TrifectaInfo: settlement.Trifecta,
		TopWinners:   s.topWinners(settlement),
		Payouts:      settlement.Payouts,
	}
	return results
}

// topWinners ranks bettors by what the race paid them, largest first.
func (s *State) topWinners(settlement *engine.Settlement) []models.RaceWinner {
	totals := make(map[string]float64)
	for _, byUser := range settlement.Payouts {
		for userID, amount := range byUser {
			totals[userID] += amount
		}
	}

	s.mu.RLock()
	winners := make([]models.RaceWinner, 0, len(totals))
	for userID, total := range totals {
		user, ok := s.users[userID]
		if !ok {
			continue
		}
		winners = append(winners, models.RaceWinner{
			UserID:        userID,
			Username:      user.Username,
			TotalWinnings: roundResult(total),
			Bets:          settlement.WinningBets[userID],
		})
	}
	s.mu.RUnlock()

	sort.Slice(winners, func(i, j int) bool {
		if winners[i].TotalWinnings != winners[j].TotalWinnings {
			return winners[i].TotalWinnings > winners[j].TotalWinnings
		}
		return winners[i].Username < winners[j].Username
	})
	if len(winners) > topWinnersSize {
		winners = winners[:topWinnersSize]
	}
	return winners
}

func roundResult(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
