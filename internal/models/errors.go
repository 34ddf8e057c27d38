package models

import "errors"

// Domain errors shared across packages. Handlers compare against these with
// errors.Is to decide what to report back to the client.
var (
	// Bet validation errors.
	ErrInvalidBetType      = errors.New("invalid bet type")
	ErrInvalidAmount       = errors.New("invalid bet amount")
	ErrAmountNotPositive   = errors.New("bet amount must be positive")
	ErrAmountTooLarge      = errors.New("bet amount too large")
	ErrAmountBelowMinimum  = errors.New("bet amount below minimum")
	ErrInvalidSelection    = errors.New("invalid selection format")
	ErrUnknownHorse        = errors.New("horse not found in current race")
	ErrDuplicateBet        = errors.New("bet of this type already placed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBettingClosed       = errors.New("betting is closed")

	// Session errors.
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrUsernameRequired = errors.New("username required")
	ErrUserNotFound     = errors.New("user not found")

	// Race lifecycle errors.
	ErrNoActiveRace = errors.New("no active race")
)
