package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds incoming frames.
	maxMessageSize = 4096

	// sendBufferSize is the outbound queue per client. A client that lets
	// this fill up is evicted rather than allowed to stall broadcasts.
	sendBufferSize = 64
)

// Client is one websocket connection. The user binding is set on login and
// cleared when the pool replaces it; everything else is owned by the two
// pump goroutines.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	log  *logrus.Entry

	mu     sync.RWMutex
	userID string
}

func newClient(conn *websocket.Conn, log *logrus.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		log:  log.WithField("connection_id", id),
	}
}

// UserID returns the bound user, or empty before login.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) bindUser(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
}

// enqueue queues a frame without blocking. False means the buffer is full
// and the caller should evict the connection.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// readPump consumes frames from the connection and hands them to the
// server until the connection dies. It runs on its own goroutine and owns
// connection teardown.
func (c *Client) readPump(s *Server) {
	defer func() {
		s.dropClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Debug("Connection closed unexpectedly")
			}
			return
		}
		s.handleFrame(c, frame)
	}
}

// writePump drains the outbound queue onto the wire and keeps the
// connection alive with pings. It exits when the hub closes the queue or a
// write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
