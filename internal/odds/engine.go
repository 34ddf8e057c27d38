// Package odds prices the three bet markets for a race. Opening quotes come
// from horse strength alone; once money is in the pool, quotes blend the
// pari-mutuel price with the opening line so thin pools stay sane.
package odds

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/yourusername/saddleup/internal/models"
)

const (
	// Exponent applied to raw win probability. Flattens the field so
	// outsiders stay backable.
	enhanceExponent = 0.7

	// Place terms: a horse places if it finishes top three, so its place
	// probability is scaled up from its win probability and capped.
	placeMultiplier = 4.0
	placeProbCap    = 0.85

	// Trifecta terms: naming the exact top three is harder than winning.
	trifectaFactor = 0.8

	// Quoted when the field is degenerate and no price can be derived.
	fallbackOdds = 2.0

	// Stakes below this are treated as an empty pool.
	minStake = 0.01
)

// Params carries the tunable pricing inputs.
type Params struct {
	// HouseEdge is the cut taken off fair odds, and off pools at payout.
	HouseEdge float64
	// MinOdds and MaxOdds clamp every quote.
	MinOdds float64
	MaxOdds float64
	// PoolWeight is the share of the live quote taken from the pool price;
	// the rest comes from the opening line.
	PoolWeight float64
}

// DefaultParams returns the standard house pricing.
func DefaultParams() Params {
	return Params{
		HouseEdge:  0.15,
		MinOdds:    1.01,
		MaxOdds:    50.0,
		PoolWeight: 0.7,
	}
}

// Engine computes odds for races. It holds no per-race state and is safe
// for concurrent use.
type Engine struct {
	params Params
}

// NewEngine creates an engine with the given pricing parameters.
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// PayoutRatio is the share of each pool returned to bettors.
func (e *Engine) PayoutRatio() float64 {
	return 1.0 - e.params.HouseEdge
}

// MinOdds returns the lower clamp applied to every quote and payout rate.
func (e *Engine) MinOdds() float64 {
	return e.params.MinOdds
}

// Initial returns the opening odds for one horse in one market, derived
// purely from relative strength. Degenerate fields quote fallback odds.
func (e *Engine) Initial(race *models.Race, horseID int, betType models.BetType) float64 {
	horse := race.HorseByID(horseID)
	if horse == nil {
		return fallbackOdds
	}

	var total float64
	for _, h := range race.Horses {
		total += h.Strength()
	}
	if total <= 0 {
		return fallbackOdds
	}

	rawProb := horse.Strength() / total
	if rawProb <= 0 {
		return fallbackOdds
	}
	enhanced := math.Pow(rawProb, enhanceExponent)

	var trueProb float64
	switch betType {
	case models.BetTypeWinner:
		trueProb = enhanced
	case models.BetTypePlace:
		trueProb = math.Min(placeProbCap, enhanced*placeMultiplier)
	case models.BetTypeTrifecta:
		trueProb = enhanced * trifectaFactor
	default:
		return fallbackOdds
	}
	if trueProb <= 0 || math.IsNaN(trueProb) || math.IsInf(trueProb, 0) {
		return fallbackOdds
	}

	fair := 1.0 / trueProb
	final := fair * (1.0 - e.params.HouseEdge)
	return round2(e.clamp(final))
}

// Live returns the current odds for every horse in one market. With no
// meaningful money in the pool the opening line stands; a backed pool is
// priced pari-mutuel and blended with the opening line. Any horse whose
// price cannot be derived falls back to its opening line.
func (e *Engine) Live(race *models.Race, betType models.BetType) map[int]float64 {
	quotes := make(map[int]float64, len(race.Horses))
	totalPool := race.PoolTotal(betType)
	for _, h := range race.Horses {
		quotes[h.ID] = e.liveHorse(race, h.ID, betType, totalPool)
	}
	return quotes
}

func (e *Engine) liveHorse(race *models.Race, horseID int, betType models.BetType, totalPool float64) float64 {
	initial := e.Initial(race, horseID, betType)
	if totalPool < minStake {
		return initial
	}

	horsePool := race.PoolHorseTotal(horseID, betType)
	if horsePool < minStake {
		// Unbacked horse in a backed pool drifts out.
		return math.Min(initial*2, e.params.MaxOdds)
	}

	payoutPool := math.Max(minStake, totalPool*e.PayoutRatio())
	poolOdds := math.Min(e.params.MaxOdds, payoutPool/horsePool)
	blended := poolOdds*e.params.PoolWeight + initial*(1.0-e.params.PoolWeight)
	if math.IsNaN(blended) || math.IsInf(blended, 0) {
		return initial
	}
	return round2(e.clamp(blended))
}

// Board returns the winner and place quotes for every horse, shaped for
// broadcast.
func (e *Engine) Board(race *models.Race) map[int]models.HorseOdds {
	winner := e.Live(race, models.BetTypeWinner)
	place := e.Live(race, models.BetTypePlace)
	board := make(map[int]models.HorseOdds, len(race.Horses))
	for _, h := range race.Horses {
		board[h.ID] = models.HorseOdds{
			Winner: winner[h.ID],
			Place:  place[h.ID],
		}
	}
	return board
}

func (e *Engine) clamp(v float64) float64 {
	return math.Max(e.params.MinOdds, math.Min(v, e.params.MaxOdds))
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
