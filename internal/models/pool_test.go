package models

import (
	"math"
	"testing"
)

func TestPoolTotals(t *testing.T) {
	pool := NewBettingPool()
	pool.Add(NewBet("u1", BetTypeWinner, 10.0, []int{1}))
	pool.Add(NewBet("u2", BetTypeWinner, 5.0, []int{1}))
	pool.Add(NewBet("u3", BetTypeWinner, 20.0, []int{4}))
	pool.Add(NewBet("u1", BetTypePlace, 3.0, []int{2}))
	pool.Add(NewBet("u2", BetTypeTrifecta, 2.0, []int{1, 2, 3}))
	pool.Add(NewBet("u3", BetTypeTrifecta, 4.0, []int{3, 2, 1}))

	if got := pool.Total(BetTypeWinner); math.Abs(got-35.0) > 1e-9 {
		t.Errorf("winner total = %v, want 35.0", got)
	}
	if got := pool.Total(BetTypePlace); math.Abs(got-3.0) > 1e-9 {
		t.Errorf("place total = %v, want 3.0", got)
	}
	if got := pool.Total(BetTypeTrifecta); math.Abs(got-6.0) > 1e-9 {
		t.Errorf("trifecta total = %v, want 6.0", got)
	}

	if got := pool.HorseTotal(1, BetTypeWinner); math.Abs(got-15.0) > 1e-9 {
		t.Errorf("winner total on horse 1 = %v, want 15.0", got)
	}
	if got := pool.HorseTotal(4, BetTypeWinner); math.Abs(got-20.0) > 1e-9 {
		t.Errorf("winner total on horse 4 = %v, want 20.0", got)
	}
	if got := pool.HorseTotal(9, BetTypeWinner); got != 0 {
		t.Errorf("winner total on unbacked horse = %v, want 0", got)
	}

	// Trifecta stakes are combination wide, not horse specific.
	if got := pool.HorseTotal(7, BetTypeTrifecta); math.Abs(got-6.0) > 1e-9 {
		t.Errorf("trifecta horse total = %v, want full pool 6.0", got)
	}
}

func TestPoolHasBetOfType(t *testing.T) {
	pool := NewBettingPool()
	pool.Add(NewBet("u1", BetTypeWinner, 10.0, []int{1}))

	if !pool.HasBetOfType("u1", BetTypeWinner) {
		t.Error("expected existing winner bet to be found")
	}
	if pool.HasBetOfType("u1", BetTypePlace) {
		t.Error("place bet should not be found for u1")
	}
	if pool.HasBetOfType("u2", BetTypeWinner) {
		t.Error("no bet should be found for u2")
	}
}

func TestPoolAllBets(t *testing.T) {
	pool := NewBettingPool()
	pool.Add(NewBet("u1", BetTypeWinner, 1.0, []int{1}))
	pool.Add(NewBet("u1", BetTypePlace, 1.0, []int{2}))
	pool.Add(NewBet("u1", BetTypeTrifecta, 1.0, []int{1, 2, 3}))

	if got := len(pool.AllBets()); got != 3 {
		t.Errorf("AllBets returned %d bets, want 3", got)
	}
}
