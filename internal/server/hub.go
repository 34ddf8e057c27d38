package server

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/saddleup/internal/game"
	"github.com/yourusername/saddleup/internal/metrics"
	"github.com/yourusername/saddleup/internal/models"
	"github.com/yourusername/saddleup/internal/notify"
)

// Hub tracks every live connection and fans broadcasts out to them. Sends
// never block: a connection whose buffer is full is evicted on the spot, so
// one slow client cannot stall the game loop or its peers.
//
// The hub also owns the user binding. A user logging in from a second
// connection takes the binding over and the older connection is dropped.
type Hub struct {
	log      *logrus.Logger
	state    *game.State
	notifier *notify.Notifier

	mu      sync.Mutex
	clients map[*Client]bool
	byUser  map[string]*Client
}

func NewHub(state *game.State, log *logrus.Logger) *Hub {
	return &Hub{
		log:     log,
		state:   state,
		clients: make(map[*Client]bool),
		byUser:  make(map[string]*Client),
	}
}

// SetNotifier attaches an external event notifier. Must be called before
// the first connection arrives. A nil notifier keeps notifications off.
func (h *Hub) SetNotifier(n *notify.Notifier) {
	h.notifier = n
}

// Add registers a connection and returns the new connection count.
func (h *Hub) Add(client *Client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	metrics.UpdateActiveConnections(len(h.clients))
	return len(h.clients)
}

// Remove unregisters a connection. It returns the user ID the connection
// was bound to, or empty if it was unbound, already gone, or had been
// replaced by a newer login.
func (h *Hub) Remove(client *Client) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[client] {
		return ""
	}
	return h.detachLocked(client)
}

// detachLocked takes the connection out of the hub, closes its queue and
// clears its user binding. Returns the bound user ID, if this connection
// still held the binding.
func (h *Hub) detachLocked(client *Client) string {
	delete(h.clients, client)
	close(client.send)
	metrics.UpdateActiveConnections(len(h.clients))

	userID := client.UserID()
	if userID != "" && h.byUser[userID] == client {
		delete(h.byUser, userID)
		return userID
	}
	return ""
}

// BindUser points the user's binding at this connection. Any older
// connection holding the binding is dropped; its pumps wind down on the
// closed queue.
func (h *Hub) BindUser(client *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A connection re-logging under a new name gives up its old binding.
	if prev := client.UserID(); prev != "" && prev != userID && h.byUser[prev] == client {
		delete(h.byUser, prev)
	}

	if old := h.byUser[userID]; old != nil && old != client {
		h.log.WithFields(logrus.Fields{
			"user_id":       userID,
			"replaced_conn": old.ID,
		}).Info("Login replaced an existing connection")
		h.detachLocked(old)
	}

	h.byUser[userID] = client
	client.bindUser(userID)
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// SendTo queues a message on one connection. False means the connection's
// buffer was full and the caller should evict it.
func (h *Hub) SendTo(client *Client, v any) bool {
	frame, ok := encodeMessage(v)
	if !ok {
		return true
	}
	return client.enqueue(frame)
}

// broadcast queues a frame on every connection, evicting the ones whose
// buffers are full. Returns how many connections received the frame and
// how many were evicted.
func (h *Hub) broadcast(messageType string, v any) (int, int) {
	frame, ok := encodeMessage(v)
	if !ok {
		return 0, 0
	}

	var orphaned []string
	h.mu.Lock()
	recipients, evicted := 0, 0
	for client := range h.clients {
		if client.enqueue(frame) {
			recipients++
			continue
		}
		client.log.WithField("message_type", messageType).Warn("Evicting slow client")
		if userID := h.detachLocked(client); userID != "" {
			orphaned = append(orphaned, userID)
		}
		client.conn.Close()
		evicted++
		metrics.RecordSlowClientEviction()
	}
	h.mu.Unlock()

	metrics.RecordBroadcast(messageType)
	for _, userID := range orphaned {
		h.disconnectUser(userID)
	}
	return recipients, evicted
}

// disconnectUser marks the user offline and lets everyone see the updated
// leaderboard. Never called with the hub lock held.
func (h *Hub) disconnectUser(userID string) {
	h.state.Disconnect(userID)
	h.BroadcastLeaderboard(h.state.Leaderboard())
	if user, ok := h.state.User(userID); ok {
		go h.notifier.UserLeft(user.Username)
	}
}

// The hub is the game loop's broadcaster.

func (h *Hub) BroadcastRaceState(snapshot models.RaceSnapshot) {
	h.broadcast(TypeRaceState, raceStateMessage{Type: TypeRaceState, Race: snapshot})
}

func (h *Hub) BroadcastRaceUpdate(horses []models.HorseState) {
	h.broadcast(TypeRaceUpdate, raceUpdateMessage{Type: TypeRaceUpdate, Horses: horses})
}

func (h *Hub) BroadcastOddsUpdate(board map[int]models.HorseOdds, timeRemaining float64) {
	h.broadcast(TypeOddsUpdate, oddsUpdateMessage{
		Type:          TypeOddsUpdate,
		Odds:          board,
		TimeRemaining: timeRemaining,
	})
}

func (h *Hub) BroadcastPhaseUpdate(phase models.RacePhase, timeRemaining float64) {
	h.broadcast(TypePhaseUpdate, phaseUpdateMessage{
		Type:          TypePhaseUpdate,
		Phase:         phase,
		TimeRemaining: timeRemaining,
	})
}

func (h *Hub) BroadcastRaceResults(results models.RaceResults) {
	h.broadcast(TypeRaceResults, raceResultsMessage{Type: TypeRaceResults, RaceResults: results})
}

func (h *Hub) BroadcastLeaderboard(entries []models.LeaderboardEntry) {
	h.broadcast(TypeLeaderboard, leaderboardMessage{Type: TypeLeaderboard, Leaders: entries})
}

// CloseAll drops every connection, for shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
		client.conn.Close()
	}
	h.byUser = make(map[string]*Client)
	metrics.UpdateActiveConnections(0)
}
