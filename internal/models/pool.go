package models

// BettingPool aggregates the bets placed on one race, grouped the way
// settlement consumes them: winner and place stakes keyed by horse,
// trifecta stakes kept flat because they name a combination.
type BettingPool struct {
	winnerBets   map[int][]*Bet
	placeBets    map[int][]*Bet
	trifectaBets []*Bet
}

// NewBettingPool creates an empty pool.
func NewBettingPool() *BettingPool {
	return &BettingPool{
		winnerBets: make(map[int][]*Bet),
		placeBets:  make(map[int][]*Bet),
	}
}

// Add files the bet under its market. Validation happens before the bet is
// built; the pool only routes.
func (p *BettingPool) Add(bet *Bet) {
	switch bet.Type {
	case BetTypeWinner:
		horseID := bet.Selection[0]
		p.winnerBets[horseID] = append(p.winnerBets[horseID], bet)
	case BetTypePlace:
		horseID := bet.Selection[0]
		p.placeBets[horseID] = append(p.placeBets[horseID], bet)
	case BetTypeTrifecta:
		p.trifectaBets = append(p.trifectaBets, bet)
	}
}

// Total returns the summed stake across all horses for one bet type.
func (p *BettingPool) Total(betType BetType) float64 {
	var total float64
	switch betType {
	case BetTypeWinner:
		for _, bets := range p.winnerBets {
			for _, b := range bets {
				total += b.Amount
			}
		}
	case BetTypePlace:
		for _, bets := range p.placeBets {
			for _, b := range bets {
				total += b.Amount
			}
		}
	case BetTypeTrifecta:
		for _, b := range p.trifectaBets {
			total += b.Amount
		}
	}
	return total
}

// HorseTotal returns the stake riding on one horse for a bet type. Trifecta
// stakes are not horse specific, so the whole trifecta pool is returned.
func (p *BettingPool) HorseTotal(horseID int, betType BetType) float64 {
	var total float64
	switch betType {
	case BetTypeWinner:
		for _, b := range p.winnerBets[horseID] {
			total += b.Amount
		}
	case BetTypePlace:
		for _, b := range p.placeBets[horseID] {
			total += b.Amount
		}
	case BetTypeTrifecta:
		return p.Total(BetTypeTrifecta)
	}
	return total
}

// WinnerBetsOn returns the winner bets backing one horse.
func (p *BettingPool) WinnerBetsOn(horseID int) []*Bet {
	return p.winnerBets[horseID]
}

// PlaceBetsOn returns the place bets backing one horse.
func (p *BettingPool) PlaceBetsOn(horseID int) []*Bet {
	return p.placeBets[horseID]
}

// TrifectaBets returns every trifecta bet in the pool.
func (p *BettingPool) TrifectaBets() []*Bet {
	return p.trifectaBets
}

// HasBetOfType reports whether the user already holds a bet of this type,
// which the one-bet-per-market rule forbids doubling up on.
func (p *BettingPool) HasBetOfType(userID string, betType BetType) bool {
	for _, b := range p.AllBets() {
		if b.UserID == userID && b.Type == betType {
			return true
		}
	}
	return false
}

// AllBets returns every bet in the pool in no particular order.
func (p *BettingPool) AllBets() []*Bet {
	all := make([]*Bet, 0, len(p.trifectaBets))
	for _, bets := range p.winnerBets {
		all = append(all, bets...)
	}
	for _, bets := range p.placeBets {
		all = append(all, bets...)
	}
	all = append(all, p.trifectaBets...)
	return all
}
