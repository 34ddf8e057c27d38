package synthetic

import (
	"math/rand"

	"github.com/yourusername/saddleup/internal/models"
	"github.com/yourusername/saddleup/internal/odds"
)

// Bettor is one synthetic participant. Its style and temperament are fixed
// at creation; the manager drives all of its decisions from the game loop
// goroutine, so the bettor itself needs no locking.
type Bettor struct {
	UserID   string
	Username string
	Style    Style

	// frequency is the chance of betting on any given race.
	frequency float64
	// stakeScale is the personal multiplier applied to the base stake.
	stakeScale float64
}

func newBettor(userID, username string, rng *rand.Rand) *Bettor {
	styles := AllStyles()
	return &Bettor{
		UserID:     userID,
		Username:   username,
		Style:      styles[rng.Intn(len(styles))],
		frequency:  0.3 + rng.Float64()*0.5,
		stakeScale: 0.8 + rng.Float64()*0.4,
	}
}

// shouldBet decides whether this bettor participates in the current race.
func (b *Bettor) shouldBet(rng *rand.Rand) bool {
	return rng.Float64() < b.frequency
}

// chooseBetType samples the style's market distribution. If accumulated
// weights never cover the draw the bettor defaults to the winner market.
func (b *Bettor) chooseBetType(rng *rand.Rand) models.BetType {
	draw := rng.Float64()
	var cumulative float64
	for _, pref := range b.Style.betTypePreferences() {
		cumulative += pref.weight
		if draw <= cumulative {
			return pref.betType
		}
	}
	return models.BetTypeWinner
}

// chooseSelection picks the horses for a bet. Trifecta selections are three
// distinct horses drawn uniformly; single horse markets draw by the style's
// weighting over strength and opening odds.
func (b *Bettor) chooseSelection(rng *rand.Rand, race *models.Race, pricing *odds.Engine, betType models.BetType) []int {
	horses := race.Horses
	if len(horses) == 0 {
		return nil
	}

	if betType == models.BetTypeTrifecta {
		if len(horses) < 3 {
			return nil
		}
		picks := rng.Perm(len(horses))[:3]
		selection := make([]int, 3)
		for i, idx := range picks {
			selection[i] = horses[idx].ID
		}
		return selection
	}

	weights := make([]float64, len(horses))
	var total float64
	for i, h := range horses {
		w := b.Style.horseWeight(race.HorseStrength(h.ID), pricing.Initial(race, h.ID, betType))
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return []int{horses[rng.Intn(len(horses))].ID}
	}

	draw := rng.Float64() * total
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if draw <= cumulative {
			return []int{horses[i].ID}
		}
	}
	return []int{horses[0].ID}
}

// stake sizes a bet from the base amount, the bettor's personal scale and a
// per-bet jitter, capped at the available balance.
func (b *Bettor) stake(rng *rand.Rand, base, balance float64) float64 {
	amount := base * b.stakeScale * (0.8 + rng.Float64()*0.4)
	if amount > balance {
		return balance
	}
	return amount
}
