package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/saddleup/internal/game"
	"github.com/yourusername/saddleup/internal/metrics"
	"github.com/yourusername/saddleup/internal/models"
	"github.com/yourusername/saddleup/internal/notify"
)

// Config holds the listen address and admission control for the websocket
// server.
type Config struct {
	Host      string
	Port      int
	RateLimit RateLimitConfig
}

// DefaultConfig listens on all interfaces on the standard game port.
func DefaultConfig() Config {
	return Config{
		Host:      "0.0.0.0",
		Port:      8765,
		RateLimit: DefaultRateLimitConfig(),
	}
}

// Server accepts websocket connections and runs the client side of the
// protocol: logins, bets and state queries. Broadcast traffic flows through
// the hub, which the game loop drives directly.
type Server struct {
	cfg      Config
	log      *logrus.Logger
	state    *game.State
	loop     *game.Orchestrator
	hub      *Hub
	notifier *notify.Notifier

	limiter    *ipLimiter
	upgrader   websocket.Upgrader
	httpServer *http.Server
	startedAt  time.Time
}

// New wires a server around an existing hub. The hub is shared with the
// game loop, which uses it as its broadcaster.
func New(cfg Config, state *game.State, loop *game.Orchestrator, hub *Hub, log *logrus.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		log:     log,
		state:   state,
		loop:    loop,
		hub:     hub,
		limiter: newIPLimiter(cfg.RateLimit),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/stats", s.handleStats)

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	return s
}

// Hub returns the broadcast hub the server accepts connections into.
func (s *Server) Hub() *Hub {
	return s.hub
}

// SetNotifier attaches an external event notifier and shares it with the
// hub. Must be called before Start. A nil notifier keeps notifications off.
func (s *Server) SetNotifier(n *notify.Notifier) {
	s.notifier = n
	s.hub.SetNotifier(n)
}

// Start serves websocket traffic in the background until the context is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("Websocket server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Websocket server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()
	return nil
}

// Shutdown closes every connection and stops the listener.
func (s *Server) Shutdown() error {
	s.log.Info("Websocket server shutting down")
	s.hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// handleWebSocket admits a connection, announces it and starts its pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !s.limiter.Allow(ip) {
		metrics.RecordRateLimited()
		s.log.WithField("ip", ip).Warn("Connection rate limited")
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Error("Websocket upgrade failed")
		return
	}

	client := newClient(conn, s.log)
	total := s.hub.Add(client)
	client.log.WithFields(logrus.Fields{
		"ip":    ip,
		"total": total,
	}).Info("Client connected")

	go client.writePump()
	go client.readPump(s)

	s.sendTo(client, connectionEstablishedMessage{
		Type:         TypeConnectionEstablished,
		ConnectionID: client.ID,
	})
}

// handleStats reports a small operational summary.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"connected_clients":    s.hub.ClientCount(),
		"known_users":          s.state.UserCount(),
		"synthetic_population": s.loop.SyntheticPopulation(),
		"uptime_seconds":       int64(time.Since(s.startedAt).Seconds()),
	}
	if race := s.state.CurrentRace(); race != nil {
		stats["current_race_id"] = race.ID
		stats["current_phase"] = race.Phase()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// dropClient runs once when a connection dies: unregister, mark the user
// offline and let everyone see the refreshed leaderboard.
func (s *Server) dropClient(c *Client) {
	userID := s.hub.Remove(c)
	c.log.Info("Client disconnected")
	if userID != "" {
		s.hub.disconnectUser(userID)
		c.log.WithField("user_id", userID).Info("User disconnected")
	}
}

// handleFrame parses one inbound frame and dispatches it.
func (s *Server) handleFrame(c *Client, frame []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		s.sendError(c, "invalid message format")
		return
	}
	metrics.RecordMessageReceived(msg.Type)

	switch msg.Type {
	case TypeLogin:
		s.handleLogin(c, msg)
	case TypePlaceBet:
		s.handlePlaceBet(c, msg)
	case TypeGetRaceState:
		s.handleGetRaceState(c)
	case TypeGetLeaderboard:
		s.handleGetLeaderboard(c)
	default:
		s.sendError(c, fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (s *Server) handleLogin(c *Client, msg ClientMessage) {
	user, err := s.state.Login(msg.Username)
	if err != nil {
		s.sendError(c, err.Error())
		return
	}

	s.hub.BindUser(c, user.ID)
	c.log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User logged in")
	go s.notifier.UserJoined(user.Username)

	s.sendTo(c, loginSuccessMessage{Type: TypeLoginSuccess, User: user})
	if snapshot, ok := s.loop.CurrentSnapshot(); ok {
		s.sendTo(c, raceStateMessage{Type: TypeRaceState, Race: snapshot})
	}
	s.hub.BroadcastLeaderboard(s.state.Leaderboard())
}

func (s *Server) handlePlaceBet(c *Client, msg ClientMessage) {
	userID := c.UserID()
	if userID == "" {
		metrics.RecordBetRejected(rejectionReason(models.ErrNotLoggedIn))
		s.sendError(c, models.ErrNotLoggedIn.Error())
		return
	}

	user, bet, err := s.state.PlaceHumanBet(userID, msg.BetType, msg.Amount, msg.Selection)
	if err != nil {
		metrics.RecordBetRejected(rejectionReason(err))
		s.sendError(c, err.Error())
		return
	}

	s.sendTo(c, betPlacedMessage{
		Type:       TypeBetPlaced,
		Bet:        bet,
		NewBalance: user.Balance,
	})
	s.hub.BroadcastLeaderboard(s.state.Leaderboard())
}

func (s *Server) handleGetRaceState(c *Client) {
	snapshot, ok := s.loop.CurrentSnapshot()
	if !ok {
		s.sendError(c, models.ErrNoActiveRace.Error())
		return
	}
	s.sendTo(c, raceStateMessage{Type: TypeRaceState, Race: snapshot})
}

func (s *Server) handleGetLeaderboard(c *Client) {
	s.sendTo(c, leaderboardMessage{Type: TypeLeaderboard, Leaders: s.state.Leaderboard()})
}

// sendTo delivers directly to one connection, evicting it if its buffer is
// already full.
func (s *Server) sendTo(c *Client, v any) {
	if s.hub.SendTo(c, v) {
		return
	}
	c.log.Warn("Evicting unresponsive client")
	metrics.RecordSlowClientEviction()
	c.conn.Close()
	s.dropClient(c)
}

func (s *Server) sendError(c *Client, text string) {
	s.sendTo(c, errorMessage{Type: TypeError, Message: text})
}

// rejectionReason maps a validation error to a stable metrics label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, models.ErrBettingClosed):
		return "betting_closed"
	case errors.Is(err, models.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, models.ErrDuplicateBet):
		return "duplicate_bet"
	case errors.Is(err, models.ErrInvalidBetType):
		return "invalid_bet_type"
	case errors.Is(err, models.ErrUnknownHorse):
		return "unknown_horse"
	case errors.Is(err, models.ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, models.ErrAmountNotPositive),
		errors.Is(err, models.ErrAmountTooLarge),
		errors.Is(err, models.ErrAmountBelowMinimum),
		errors.Is(err, models.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, models.ErrNotLoggedIn):
		return "not_logged_in"
	case errors.Is(err, models.ErrUserNotFound):
		return "user_not_found"
	default:
		return "other"
	}
}
