package models

import "strings"

// SyntheticIDPrefix marks user IDs that belong to the synthetic bettor pool.
// Leaderboards treat these users as always present; everyone else must be
// connected to rank.
const SyntheticIDPrefix = "ai_"

// User represents a betting participant, human or synthetic. All mutable
// fields are guarded by the game state that owns the user registry.
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Balance       float64 `json:"balance"`
	Rank          int     `json:"rank,omitempty"`
	TotalWinnings float64 `json:"total_winnings"`
	RacesPlayed   int     `json:"races_played"`
	Connected     bool    `json:"connected"`
}

// NewUser creates a connected user with the given starting balance.
func NewUser(id, username string, startingBalance float64) *User {
	return &User{
		ID:        id,
		Username:  username,
		Balance:   startingBalance,
		Connected: true,
	}
}

// IsSynthetic reports whether the user was created by the synthetic pool.
func (u *User) IsSynthetic() bool {
	return strings.HasPrefix(u.ID, SyntheticIDPrefix)
}
