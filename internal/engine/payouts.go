package engine

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/saddleup/internal/models"
	"github.com/yourusername/saddleup/internal/odds"
)

// Settlement is the outcome of resolving every market on a finished race.
type Settlement struct {
	// Payouts maps bet type to user ID to the total amount won.
	Payouts map[models.BetType]map[string]float64
	// Trifecta summarises the trifecta market, winners or not.
	Trifecta *models.TrifectaInfo
	// WinningBets lists each user's paying bets with their payout amounts.
	WinningBets map[string][]models.WinningBet
}

// UserTotal sums one user's winnings across all markets.
func (s *Settlement) UserTotal(userID string) float64 {
	var total float64
	for _, byUser := range s.Payouts {
		total += byUser[userID]
	}
	return total
}

// TotalPaid sums every payout across all markets and users.
func (s *Settlement) TotalPaid() float64 {
	var total float64
	for _, byUser := range s.Payouts {
		for _, amount := range byUser {
			total += amount
		}
	}
	return total
}

// Settler resolves betting pools against a finish order. Pools pay out
// pari-mutuel style: the house keeps its edge and the rest is shared among
// the winning stakes.
type Settler struct {
	pricing *odds.Engine
	log     *logrus.Logger
}

// NewSettler creates a settler priced by the given odds engine.
func NewSettler(pricing *odds.Engine, log *logrus.Logger) *Settler {
	return &Settler{pricing: pricing, log: log}
}

// Settle computes the payouts for a race that has finished running. The
// race pool is stable by then, so no locks are needed beyond the race's
// own accessors.
func (s *Settler) Settle(race *models.Race) *Settlement {
	settlement := &Settlement{
		Payouts: map[models.BetType]map[string]float64{
			models.BetTypeWinner:   {},
			models.BetTypePlace:    {},
			models.BetTypeTrifecta: {},
		},
		WinningBets: make(map[string][]models.WinningBet),
	}

	order := race.FinishOrder()
	if len(order) == 0 {
		return settlement
	}

	s.settleWinner(race, order[0], settlement)
	s.settlePlace(race, order, settlement)
	s.settleTrifecta(race, order, settlement)

	s.log.WithFields(logrus.Fields{
		"race_id":          race.ID,
		"winner_payouts":   len(settlement.Payouts[models.BetTypeWinner]),
		"place_payouts":    len(settlement.Payouts[models.BetTypePlace]),
		"trifecta_payouts": len(settlement.Payouts[models.BetTypeTrifecta]),
	}).Info("Race settled")

	return settlement
}

// settleWinner pays the full winner pool, less the edge, across the stakes
// on the winning horse at a per-unit rate never below the minimum odds.
func (s *Settler) settleWinner(race *models.Race, winner *models.Horse, out *Settlement) {
	pool := race.Pool()
	totalPool := pool.Total(models.BetTypeWinner)
	stakeOnWinner := pool.HorseTotal(winner.ID, models.BetTypeWinner)
	if stakeOnWinner <= 0 {
		return
	}

	perUnit := math.Max(s.pricing.MinOdds(), totalPool*s.pricing.PayoutRatio()/stakeOnWinner)
	for _, bet := range pool.WinnerBetsOn(winner.ID) {
		payout := round2(bet.Amount * perUnit)
		out.Payouts[models.BetTypeWinner][bet.UserID] += payout
		out.WinningBets[bet.UserID] = append(out.WinningBets[bet.UserID], models.WinningBet{
			Type:      models.BetTypeWinner,
			HorseID:   winner.ID,
			HorseName: winner.Name,
			Amount:    payout,
		})
	}
}

// settlePlace splits the place payout pool evenly across the three placed
// horses, then pays each third across the stakes on that horse.
func (s *Settler) settlePlace(race *models.Race, order []*models.Horse, out *Settlement) {
	pool := race.Pool()
	totalPool := pool.Total(models.BetTypePlace)
	if totalPool <= 0 {
		return
	}

	placed := order
	if len(placed) > 3 {
		placed = placed[:3]
	}
	payoutPool := totalPool * s.pricing.PayoutRatio()
	sharePerHorse := payoutPool / 3.0

	for _, horse := range placed {
		horsePool := pool.HorseTotal(horse.ID, models.BetTypePlace)
		if horsePool <= 0 {
			continue
		}
		perUnit := math.Max(s.pricing.MinOdds(), sharePerHorse/horsePool)
		for _, bet := range pool.PlaceBetsOn(horse.ID) {
			payout := round2(bet.Amount * perUnit)
			out.Payouts[models.BetTypePlace][bet.UserID] += payout
			out.WinningBets[bet.UserID] = append(out.WinningBets[bet.UserID], models.WinningBet{
				Type:      models.BetTypePlace,
				HorseID:   horse.ID,
				HorseName: horse.Name,
				Amount:    payout,
			})
		}
	}
}

// settleTrifecta pays the boxed trifecta: any bet naming the top three in
// any order shares the payout pool pro rata by stake.
func (s *Settler) settleTrifecta(race *models.Race, order []*models.Horse, out *Settlement) {
	pool := race.Pool()
	totalPool := pool.Total(models.BetTypeTrifecta)

	combination := make([]int, 0, 3)
	winningSet := make(map[int]bool, 3)
	for i, horse := range order {
		if i >= 3 {
			break
		}
		combination = append(combination, horse.ID)
		winningSet[horse.ID] = true
	}

	out.Trifecta = &models.TrifectaInfo{
		WinningCombination: combination,
		TotalPool:          round2(totalPool),
	}
	if len(combination) < 3 {
		return
	}

	var winners []*models.Bet
	var winningStakes float64
	for _, bet := range pool.TrifectaBets() {
		if matchesBox(bet.Selection, winningSet) {
			winners = append(winners, bet)
			winningStakes += bet.Amount
		}
	}
	out.Trifecta.WinnersCount = len(winners)
	if len(winners) == 0 || winningStakes <= 0 {
		return
	}

	payoutPool := totalPool * s.pricing.PayoutRatio()
	out.Trifecta.PayoutPerDollar = round2(payoutPool / winningStakes)

	for _, bet := range winners {
		payout := round2(payoutPool * bet.Amount / winningStakes)
		out.Payouts[models.BetTypeTrifecta][bet.UserID] += payout

		names := make([]string, 0, len(bet.Selection))
		for _, id := range bet.Selection {
			if h := race.HorseByID(id); h != nil {
				names = append(names, h.Name)
			}
		}
		out.WinningBets[bet.UserID] = append(out.WinningBets[bet.UserID], models.WinningBet{
			Type:       models.BetTypeTrifecta,
			Selection:  append([]int(nil), bet.Selection...),
			HorseNames: names,
			Amount:     payout,
		})
	}
}

// matchesBox reports whether the selection names exactly the winning set,
// in any order.
func matchesBox(selection []int, winning map[int]bool) bool {
	if len(selection) != len(winning) {
		return false
	}
	seen := make(map[int]bool, len(selection))
	for _, id := range selection {
		if !winning[id] || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
