// Package ws exposes the chat service over a persistent WebSocket
// connection. Inbound frames are JSON envelopes {"type": ..., "payload": ...}
// validated before they reach the service; outbound events use the same
// envelope shape.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-relay/contract"
	"chat-relay/domain/chat"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/services"
)

type inboundType string

const (
	typeJoin          inboundType = "join"
	typeChatMessage   inboundType = "chat-message"
	typeDeleteMessage inboundType = "delete-message"
)

type inboundEnvelope struct {
	Type    inboundType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type Server struct {
	log        *slog.Logger
	service    services.IChatService
	hub        contract.IHub
	monitoring *observability.Monitoring
	validate   *validator.Validate
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewServer(log *slog.Logger, service services.IChatService, hub contract.IHub,
	monitoring *observability.Monitoring, bufferSize int) *Server {
	return &Server{
		log:        log,
		service:    service,
		hub:        hub,
		monitoring: monitoring,
		validate:   validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Identity is a non-goal; the rendering layer may be served
			// from anywhere.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bufferSize: bufferSize,
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("Websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	c := newClient(uuid.New(), conn, s.log, s.bufferSize)
	s.hub.Register(c.id, c)
	s.monitoring.ActiveConnections.Add(1)
	s.log.Info("Client connected", "connection_id", c.id, "remote_addr", r.RemoteAddr)

	go c.writePump()
	go c.readPump(s)
}

// dispatch routes one inbound frame. Malformed or invalid frames earn the
// sender an error-msg and are otherwise ignored; they never reach the
// service layer.
func (s *Server) dispatch(c *client, raw []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.reject(c, "malformed event")
		return
	}

	switch env.Type {
	case typeJoin:
		var cmd chat.JoinCommand
		if !s.decode(c, env.Payload, &cmd) {
			return
		}
		if err := s.service.Join(c.id, cmd.Username); err != nil {
			s.log.Debug("Join failed", "connection_id", c.id, "error", err)
		}
	case typeChatMessage:
		var cmd chat.PostMessageCommand
		if !s.decode(c, env.Payload, &cmd) {
			return
		}
		if err := s.service.PostMessage(c.id, cmd.Content); err != nil {
			s.log.Debug("Post failed", "connection_id", c.id, "error", err)
		}
	case typeDeleteMessage:
		var cmd chat.DeleteMessageCommand
		if !s.decode(c, env.Payload, &cmd) {
			return
		}
		// User-visible rejections are already unicast by the service.
		if err := s.service.DeleteMessage(c.id, cmd.MessageID); err != nil {
			s.log.Debug("Delete failed", "connection_id", c.id, "error", err)
		}
	default:
		s.log.Debug("Unknown event type", "connection_id", c.id, "type", env.Type)
		s.reject(c, "unknown event type")
	}
}

func (s *Server) decode(c *client, payload json.RawMessage, cmd any) bool {
	if err := json.Unmarshal(payload, cmd); err != nil {
		s.reject(c, "malformed payload")
		return false
	}
	if err := s.validate.Struct(cmd); err != nil {
		s.reject(c, "invalid payload")
		return false
	}
	return true
}

func (s *Server) reject(c *client, message string) {
	s.hub.Unicast(event.ErrorMsgEvent{Message: message}, c.id)
}
