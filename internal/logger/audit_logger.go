package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger writes the money trail: every wager and every settlement,
// tagged so the audit stream can be split off from operational logs.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogUserLogin records a session start.
func (al *AuditLogger) LogUserLogin(userID, username string, balance float64, returning bool) {
	al.WithFields(logrus.Fields{
		"user_id":   userID,
		"username":  username,
		"balance":   balance,
		"returning": returning,
	}).Info("User login recorded")
}

// LogBetPlaced records a wager taken from a human player.
func (al *AuditLogger) LogBetPlaced(userID, username string, raceID int, betType string, amount float64, selection []int) {
	al.WithFields(logrus.Fields{
		"user_id":   userID,
		"username":  username,
		"race_id":   raceID,
		"bet_type":  betType,
		"amount":    amount,
		"selection": selection,
	}).Info("Bet placement recorded")
}

// LogRaceSettled records the outcome of one settlement pass.
func (al *AuditLogger) LogRaceSettled(raceID int, totalPaid float64, paidBets, participants int) {
	al.WithFields(logrus.Fields{
		"race_id":      raceID,
		"total_paid":   totalPaid,
		"paid_bets":    paidBets,
		"participants": participants,
	}).Info("Race settlement recorded")
}
