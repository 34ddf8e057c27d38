package models

import (
	"fmt"
	"time"
)

// BetType represents one of the wager markets offered on a race.
type BetType string

const (
	BetTypeWinner   BetType = "winner"
	BetTypePlace    BetType = "place"
	BetTypeTrifecta BetType = "trifecta"
)

// ParseBetType converts a wire string into a BetType.
func ParseBetType(s string) (BetType, error) {
	switch bt := BetType(s); bt {
	case BetTypeWinner, BetTypePlace, BetTypeTrifecta:
		return bt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBetType, s)
	}
}

// SelectionSize returns the number of horses a bet of this type must name.
func (bt BetType) SelectionSize() int {
	if bt == BetTypeTrifecta {
		return 3
	}
	return 1
}

// Bet represents a single wager. Bets are immutable once created and belong
// to the betting pool of the race they were placed on.
type Bet struct {
	UserID    string    `json:"user_id"`
	Type      BetType   `json:"type"`
	Amount    float64   `json:"amount"`
	Selection []int     `json:"selection"`
	PlacedAt  time.Time `json:"placed_at"`
}

// NewBet creates a bet stamped with the current time. The selection slice is
// copied so callers cannot mutate it afterwards.
func NewBet(userID string, betType BetType, amount float64, selection []int) *Bet {
	return &Bet{
		UserID:    userID,
		Type:      betType,
		Amount:    amount,
		Selection: append([]int(nil), selection...),
		PlacedAt:  time.Now(),
	}
}
