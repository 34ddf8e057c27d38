// Package synthetic maintains the pool of computer controlled bettors that
// keeps the betting pools liquid when few humans are online.
package synthetic

import (
	"math"

	"github.com/yourusername/saddleup/internal/models"
)

// Style shapes how a synthetic bettor picks markets and horses.
type Style string

const (
	StyleConservative Style = "conservative"
	StyleAggressive   Style = "aggressive"
	StyleBalanced     Style = "balanced"
	StyleLongshot     Style = "longshot"
)

// AllStyles lists the styles a new bettor can draw.
func AllStyles() []Style {
	return []Style{StyleConservative, StyleAggressive, StyleBalanced, StyleLongshot}
}

type betTypeWeight struct {
	betType models.BetType
	weight  float64
}

// betTypePreferences returns the categorical distribution over markets in a
// fixed winner, place, trifecta order so cumulative sampling is stable.
func (s Style) betTypePreferences() []betTypeWeight {
	switch s {
	case StyleConservative:
		return []betTypeWeight{
			{models.BetTypeWinner, 0.40},
			{models.BetTypePlace, 0.55},
			{models.BetTypeTrifecta, 0.05},
		}
	case StyleAggressive:
		return []betTypeWeight{
			{models.BetTypeWinner, 0.60},
			{models.BetTypePlace, 0.25},
			{models.BetTypeTrifecta, 0.15},
		}
	case StyleLongshot:
		return []betTypeWeight{
			{models.BetTypeWinner, 0.30},
			{models.BetTypePlace, 0.20},
			{models.BetTypeTrifecta, 0.50},
		}
	default:
		return []betTypeWeight{
			{models.BetTypeWinner, 0.45},
			{models.BetTypePlace, 0.40},
			{models.BetTypeTrifecta, 0.15},
		}
	}
}

// horseWeight scores a horse for selection. Conservative money chases
// strong favourites, longshot money chases price, aggressive money wants
// strength at a mid range price, balanced mixes both signals.
func (s Style) horseWeight(strength, initialOdds float64) float64 {
	switch s {
	case StyleConservative:
		return strength / math.Max(initialOdds, 1.0)
	case StyleLongshot:
		return initialOdds / math.Max(strength, 0.1)
	case StyleAggressive:
		if initialOdds >= 2.0 && initialOdds <= 5.0 {
			return strength * 2.0
		}
		return strength * 0.5
	default:
		return (strength + 1.0/math.Max(initialOdds, 1.0)) / 2.0
	}
}
