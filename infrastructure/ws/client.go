package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-relay/domain/event"
	apperrors "chat-relay/errors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 8192
)

// client owns one WebSocket connection: a read pump feeding the dispatcher
// and a write pump draining the send buffer. It doubles as the connection's
// EventSink; Consume enqueues without blocking so a stalled socket never
// holds up a broadcast.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	log  *slog.Logger
	send chan []byte
	done chan struct{}
}

func newClient(id uuid.UUID, conn *websocket.Conn, log *slog.Logger, bufferSize int) *client {
	return &client{
		id:   id,
		conn: conn,
		log:  log,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

// Consume implements contract.EventSink.
func (c *client) Consume(e event.Event) error {
	payload, err := json.Marshal(event.Wrap(e))
	if err != nil {
		return err
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return apperrors.ErrSendBufferFull
	}
}

func (c *client) readPump(s *Server) {
	defer func() {
		s.service.Disconnect(c.id)
		s.monitoring.ActiveConnections.Add(-1)
		close(c.done)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.log.Warn("Unexpected websocket close", "connection_id", c.id, "error", err)
			}
			return
		}
		s.dispatch(c, raw)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
