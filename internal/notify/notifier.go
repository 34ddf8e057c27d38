// Package notify pushes operational events to chat channels. The zero
// notifier is valid: every method on a nil *Notifier is a no-op, so the
// server only wires one in when a webhook is configured.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Event types accepted by the filter.
const (
	EventStatus = "status"
	EventUsers  = "users"
	EventRace   = "race"
	EventError  = "error"
)

const sendTimeout = 10 * time.Second

// Sender is one delivery channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier fans events out to its senders, dropping event types the
// operator did not ask for. Send failures are logged, never returned; a
// dead webhook must not disturb the game.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	log     *logrus.Entry
}

// NewNotifier builds a notifier delivering to the given senders. An empty
// events list allows every event type.
func NewNotifier(senders []Sender, events []string, log *logrus.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			allowed[e] = true
		}
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		log:     log.WithField("component", "notifier"),
	}
}

func (n *Notifier) post(event, title, message string) {
	if n == nil || len(n.senders) == 0 {
		return
	}
	if len(n.events) > 0 && !n.events[event] {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.log.WithError(err).WithField("sender", s.Name()).Warn("Notification delivery failed")
			continue
		}
		n.log.WithFields(logrus.Fields{
			"sender": s.Name(),
			"title":  title,
		}).Debug("Notification sent")
	}
}

// ServerStarted announces the listen address.
func (n *Notifier) ServerStarted(addr string) {
	n.post(EventStatus, "Server up", fmt.Sprintf("Taking bets on %s", addr))
}

// ServerStopping announces shutdown with the total uptime.
func (n *Notifier) ServerStopping(uptime time.Duration) {
	n.post(EventStatus, "Server down", fmt.Sprintf("Shutting down after %s", uptime.Round(time.Second)))
}

// StatusReport posts a periodic operational summary.
func (n *Notifier) StatusReport(clients, users, synthetic, raceID int) {
	n.post(EventStatus, "Status report", fmt.Sprintf(
		"%d clients connected, %d known users, %d synthetic bettors, race #%d",
		clients, users, synthetic, raceID))
}

// UserJoined announces a login.
func (n *Notifier) UserJoined(username string) {
	n.post(EventUsers, "User joined", fmt.Sprintf("%s is at the track", username))
}

// UserLeft announces a disconnect.
func (n *Notifier) UserLeft(username string) {
	n.post(EventUsers, "User left", fmt.Sprintf("%s left the track", username))
}

// RaceCompleted announces a settled race.
func (n *Notifier) RaceCompleted(raceID int, winnerName string, totalPaid float64) {
	n.post(EventRace, "Race finished", fmt.Sprintf(
		"Race #%d won by %s, %.2f paid out", raceID, winnerName, totalPaid))
}

// LoopError reports a crashed race cycle.
func (n *Notifier) LoopError(err error) {
	n.post(EventError, "Game loop error", err.Error())
}
