package models

// HorseState is the wire-facing view of one horse during a race.
type HorseState struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Position       float64 `json:"position"`
	Finished       bool    `json:"finished"`
	FinishPosition int     `json:"finish_position,omitempty"`
}

// HorseOdds carries the quoted winner and place odds for one horse.
type HorseOdds struct {
	Winner float64 `json:"winner"`
	Place  float64 `json:"place"`
}

// RaceSnapshot is the full client view of the current race.
type RaceSnapshot struct {
	ID            int               `json:"id"`
	Phase         RacePhase         `json:"phase"`
	Horses        []HorseState      `json:"horses"`
	Odds          map[int]HorseOdds `json:"odds"`
	TimeRemaining float64           `json:"time_remaining"`
}

// PlacedHorse is one row of the finishing order in a results summary.
type PlacedHorse struct {
	Position   int     `json:"position"`
	HorseID    int     `json:"horse_id"`
	HorseName  string  `json:"horse_name"`
	WinnerOdds float64 `json:"winner_odds"`
	PlaceOdds  float64 `json:"place_odds"`
}

// TrifectaInfo summarises how the trifecta market settled.
type TrifectaInfo struct {
	WinningCombination []int   `json:"winning_combination"`
	TotalPool          float64 `json:"total_pool"`
	WinnersCount       int     `json:"winners_count"`
	PayoutPerDollar    float64 `json:"payout_per_dollar"`
}

// WinningBet describes one paying bet inside a top-winner entry.
type WinningBet struct {
	Type       BetType  `json:"type"`
	HorseID    int      `json:"horse_id,omitempty"`
	HorseName  string   `json:"horse_name,omitempty"`
	Selection  []int    `json:"selection,omitempty"`
	HorseNames []string `json:"horse_names,omitempty"`
	Amount     float64  `json:"amount"`
}

// RaceWinner is one user's haul from a single race.
type RaceWinner struct {
	UserID        string       `json:"user_id"`
	Username      string       `json:"username"`
	TotalWinnings float64      `json:"total_winnings"`
	Bets          []WinningBet `json:"bets"`
}

// RaceResults is the full settlement summary broadcast when a race ends.
type RaceResults struct {
	Results      []PlacedHorse                  `json:"results"`
	TrifectaInfo *TrifectaInfo                  `json:"trifecta_info,omitempty"`
	TopWinners   []RaceWinner                   `json:"top_winners"`
	Payouts      map[BetType]map[string]float64 `json:"payouts"`
}

// LeaderboardEntry is one ranked row of the public leaderboard.
type LeaderboardEntry struct {
	Username      string  `json:"username"`
	Balance       float64 `json:"balance"`
	TotalWinnings float64 `json:"total_winnings"`
	RacesPlayed   int     `json:"races_played"`
	Rank          int     `json:"rank"`
}
