// Package server exposes the game over websockets: one hub fans broadcasts
// out to every connection while per-client handlers run logins and bets
// against the shared game state.
package server

import (
	"encoding/json"

	"github.com/yourusername/saddleup/internal/models"
)

// Message types spoken on the wire.
const (
	// Inbound.
	TypeLogin          = "login"
	TypePlaceBet       = "place_bet"
	TypeGetRaceState   = "get_race_state"
	TypeGetLeaderboard = "get_leaderboard"

	// Outbound.
	TypeConnectionEstablished = "connection_established"
	TypeLoginSuccess          = "login_success"
	TypeRaceState             = "race_state"
	TypeRaceUpdate            = "race_update"
	TypeOddsUpdate            = "odds_update"
	TypePhaseUpdate           = "phase_update"
	TypeRaceResults           = "race_results"
	TypeBetPlaced             = "bet_placed"
	TypeLeaderboard           = "leaderboard"
	TypeError                 = "error"
)

// ClientMessage is the flat inbound envelope. Unused fields stay zero for
// message types that do not carry them.
type ClientMessage struct {
	Type      string  `json:"type"`
	Username  string  `json:"username,omitempty"`
	BetType   string  `json:"bet_type,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Selection []int   `json:"selection,omitempty"`
}

type connectionEstablishedMessage struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connection_id"`
}

type loginSuccessMessage struct {
	Type string      `json:"type"`
	User models.User `json:"user"`
}

type raceStateMessage struct {
	Type string              `json:"type"`
	Race models.RaceSnapshot `json:"race"`
}

type raceUpdateMessage struct {
	Type   string              `json:"type"`
	Horses []models.HorseState `json:"horses"`
}

type oddsUpdateMessage struct {
	Type          string                   `json:"type"`
	Odds          map[int]models.HorseOdds `json:"odds"`
	TimeRemaining float64                  `json:"time_remaining"`
}

type phaseUpdateMessage struct {
	Type          string           `json:"type"`
	Phase         models.RacePhase `json:"phase"`
	TimeRemaining float64          `json:"time_remaining"`
}

type raceResultsMessage struct {
	Type string `json:"type"`
	models.RaceResults
}

type betPlacedMessage struct {
	Type       string      `json:"type"`
	Bet        *models.Bet `json:"bet"`
	NewBalance float64     `json:"new_balance"`
}

type leaderboardMessage struct {
	Type    string                    `json:"type"`
	Leaders []models.LeaderboardEntry `json:"leaders"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func encodeMessage(v any) ([]byte, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return data, true
}
