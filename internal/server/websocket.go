package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout  = 10 * time.Second
	sendQueueSize = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The demo stream is same-host; a deployment fronting real origins
	// replaces this check.
	CheckOrigin: func(*http.Request) bool { return true },
}

// client is one connected websocket consumer.
type client struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}

	// Seed the new client so it does not wait for the next world change.
	if payload, err := s.encodeSnapshot(); err == nil {
		c.send <- payload
	}

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.logger.Info("client connected",
		zap.String("client", c.id),
		zap.String("remote", conn.RemoteAddr().String()),
	)

	go s.writePump(c)
	s.readLoop(c)
}

// writePump drains the client's send queue onto the wire. It exits when the
// queue closes or a write fails, closing the connection either way.
func (s *Server) writePump(c *client) {
	defer func() { _ = c.conn.Close() }()

	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	// Queue closed: say goodbye before dropping the connection.
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "engine stopped"))
}

// readLoop discards inbound messages (the stream is one-way) and unregisters
// the client when the peer goes away.
func (s *Server) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	_, registered := s.clients[c.id]
	delete(s.clients, c.id)
	s.mu.Unlock()

	if registered {
		c.close()
	}
	s.logger.Info("client disconnected", zap.String("client", c.id))
}
