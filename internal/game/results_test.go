package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/saddleup/internal/engine"
	"github.com/yourusername/saddleup/internal/models"
	"github.com/yourusername/saddleup/internal/odds"
)

// finishInOrder runs the race so the field crosses the line in horse ID
// order.
func finishInOrder(t *testing.T, race *models.Race) {
	t.Helper()
	require.True(t, race.SetPhase(models.PhaseRacing))
	for _, horse := range race.Horses {
		increments := make([]float64, len(race.Horses))
		for i, h := range race.Horses {
			if h.ID == horse.ID {
				increments[i] = race.Distance + 1
			}
		}
		race.AdvanceHorses(increments)
	}
	require.True(t, race.SetPhase(models.PhaseResults))
}

// settledTable builds a state with two humans and one synthetic bettor,
// runs a race they all bet on and settles it. Horse 1 wins, so alice's
// winner bet and carol's place bet pay while bob loses.
func settledTable(t *testing.T) (*State, *models.Race, *engine.Settlement, *odds.Engine, models.User, models.User) {
	t.Helper()
	s := testState()
	alice, err := s.Login("alice")
	require.NoError(t, err)
	bob, err := s.Login("bob")
	require.NoError(t, err)
	s.RegisterSynthetic(&models.User{ID: "ai_c0de", Username: "carol", Balance: 25.0})

	race := bettingRace(1)
	s.NextRace(race)

	_, _, err = s.PlaceHumanBet(alice.ID, "winner", 2.0, []int{1})
	require.NoError(t, err)
	_, _, err = s.PlaceHumanBet(bob.ID, "winner", 3.0, []int{2})
	require.NoError(t, err)
	require.NoError(t, s.PlaceSyntheticBet("ai_c0de", models.BetTypePlace, 1.0, []int{1}))

	finishInOrder(t, race)

	pricing := odds.NewEngine(odds.DefaultParams())
	settlement := engine.NewSettler(pricing, testLogger()).Settle(race)
	return s, race, settlement, pricing, alice, bob
}

// TestApplySettlementCreditsWinners verifies payouts land on balances and
// total winnings.
func TestApplySettlementCreditsWinners(t *testing.T) {
	s, race, settlement, _, alice, _ := settledTable(t)

	s.ApplySettlement(race, settlement)

	// Winner pool 5.0 pays 4.25 after the edge, all to alice's 2.0 stake.
	won, ok := s.User(alice.ID)
	require.True(t, ok)
	assert.InDelta(t, 12.25, won.Balance, 1e-9)
	assert.InDelta(t, 4.25, won.TotalWinnings, 1e-9)

	// Place pool 1.0 floors at minimum odds for carol.
	carol, ok := s.User("ai_c0de")
	require.True(t, ok)
	assert.InDelta(t, 25.01, carol.Balance, 1e-9)
}

// TestApplySettlementCountsLosersAsPlayed verifies everyone in the pool is
// marked as having played the race, not just the winners.
func TestApplySettlementCountsLosersAsPlayed(t *testing.T) {
	s, race, settlement, _, alice, bob := settledTable(t)

	s.ApplySettlement(race, settlement)

	for _, id := range []string{alice.ID, bob.ID, "ai_c0de"} {
		user, ok := s.User(id)
		require.True(t, ok)
		assert.Equal(t, 1, user.RacesPlayed, "user %s", user.Username)
	}

	lost, _ := s.User(bob.ID)
	assert.Equal(t, 0.0, lost.TotalWinnings)
	assert.Equal(t, 7.0, lost.Balance)
}

// TestApplySettlementRefreshesLeaderboard verifies the ranking reflects the
// settled balances.
func TestApplySettlementRefreshesLeaderboard(t *testing.T) {
	s, race, settlement, _, _, _ := settledTable(t)

	s.ApplySettlement(race, settlement)

	board := s.Leaderboard()
	require.Len(t, board, 3)
	assert.Equal(t, "carol", board[0].Username)
	assert.Equal(t, "alice", board[1].Username)
	assert.Equal(t, "bob", board[2].Username)
}

// TestBuildResultsPodium verifies the top three finishers come back with
// their closing odds.
func TestBuildResultsPodium(t *testing.T) {
	s, race, settlement, pricing, _, _ := settledTable(t)
	s.ApplySettlement(race, settlement)

	results := s.BuildResults(race, settlement, pricing)

	require.Len(t, results.Results, 3)
	for i, placed := range results.Results {
		assert.Equal(t, i+1, placed.Position)
		assert.Equal(t, i+1, placed.HorseID)
		assert.GreaterOrEqual(t, placed.WinnerOdds, 1.01)
		assert.GreaterOrEqual(t, placed.PlaceOdds, 1.01)
	}
	assert.Equal(t, "Thunder Bolt", results.Results[0].HorseName)
}

// TestBuildResultsTopWinners verifies winners sort by payout with their
// paying bets attached.
func TestBuildResultsTopWinners(t *testing.T) {
	s, race, settlement, pricing, alice, _ := settledTable(t)
	s.ApplySettlement(race, settlement)

	results := s.BuildResults(race, settlement, pricing)

	require.Len(t, results.TopWinners, 2)
	assert.Equal(t, "alice", results.TopWinners[0].Username)
	assert.InDelta(t, 4.25, results.TopWinners[0].TotalWinnings, 1e-9)
	require.Len(t, results.TopWinners[0].Bets, 1)
	assert.Equal(t, models.BetTypeWinner, results.TopWinners[0].Bets[0].Type)
	assert.Equal(t, "Thunder Bolt", results.TopWinners[0].Bets[0].HorseName)
	assert.InDelta(t, 4.25, results.TopWinners[0].Bets[0].Amount, 1e-9)

	assert.Equal(t, "carol", results.TopWinners[1].Username)
	assert.InDelta(t, 1.01, results.TopWinners[1].TotalWinnings, 1e-9)

	assert.InDelta(t, 4.25, results.Payouts[models.BetTypeWinner][alice.ID], 1e-9)
}

// TestBuildResultsTrifectaSummary verifies the trifecta block reports the
// winning combination even when nobody bet the market.
func TestBuildResultsTrifectaSummary(t *testing.T) {
	s, race, settlement, pricing, _, _ := settledTable(t)

	results := s.BuildResults(race, settlement, pricing)

	require.NotNil(t, results.TrifectaInfo)
	assert.Equal(t, []int{1, 2, 3}, results.TrifectaInfo.WinningCombination)
	assert.Equal(t, 0.0, results.TrifectaInfo.TotalPool)
	assert.Equal(t, 0, results.TrifectaInfo.WinnersCount)
}
