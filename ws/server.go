// Package ws is the game transport: a websocket endpoint that authenticates
// players, keeps the connection registry, and routes paddle input and
// connection lifecycle events to the session layer.
package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/beka-birhanu/pong-arena/game"
	"github.com/beka-birhanu/pong-arena/logging"
	"github.com/beka-birhanu/pong-arena/service/i"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Inbound message kinds.
const (
	messagePaddleMove = "paddleMove"
)

// Tokenizer validates identity tokens presented at connection setup.
type Tokenizer interface {
	Decode(token string) (map[string]interface{}, error)
}

// inboundMessage is the JSON frame clients send.
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type paddleMovePayload struct {
	Y float64 `json:"y"`
}

// Server upgrades HTTP requests to player websockets. Connection setup
// requires an identity token and, for scheduled matches, a match identifier,
// both passed as query parameters. Bad credentials close the connection with
// a code distinct from normal closure.
type Server struct {
	registry  *Registry
	tokenizer Tokenizer
	upgrader  websocket.Upgrader
	logger    logging.Logger

	onConnect func(playerID, matchID uuid.UUID)
	onInput   func(playerID uuid.UUID, y float64)
	onClose   func(playerID uuid.UUID)
}

// NewServer creates a websocket server validating tokens with the given
// tokenizer.
func NewServer(tokenizer Tokenizer, logger logging.Logger) *Server {
	return &Server{
		registry:  NewRegistry(),
		tokenizer: tokenizer,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser client is served from a different origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// SetConnectHandler sets the handler called when an authenticated player
// connects.
func (s *Server) SetConnectHandler(f func(playerID, matchID uuid.UUID)) {
	s.onConnect = f
}

// SetInputHandler sets the handler for clamped paddle input.
func (s *Server) SetInputHandler(f func(playerID uuid.UUID, y float64)) {
	s.onInput = f
}

// SetCloseHandler sets the handler called once a live connection closes.
func (s *Server) SetCloseHandler(f func(playerID uuid.UUID)) {
	s.onClose = f
}

// Client returns the live connection of a player, if any.
func (s *Server) Client(playerID uuid.UUID) (i.Conn, bool) {
	c, ok := s.registry.Get(playerID)
	if !ok {
		return nil, false
	}
	return c, true
}

// Notify sends one event to a player, best-effort.
func (s *Server) Notify(playerID uuid.UUID, event string, payload any) {
	c, ok := s.registry.Get(playerID)
	if !ok {
		return
	}
	_ = c.Send(event, payload)
}

// Disconnect closes a player's connection with the given close code.
func (s *Server) Disconnect(playerID uuid.UUID, code int, reason string) {
	c, ok := s.registry.Get(playerID)
	if !ok {
		return
	}
	c.Close(code, reason)
}

// ServeHTTP upgrades the request and runs the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("upgrade failed: %v", err))
		return
	}

	playerID, err := s.authenticate(r.URL.Query().Get("token"))
	if err != nil {
		s.refuse(conn, CloseUnauthorized, "invalid token")
		return
	}

	matchID := uuid.Nil
	if raw := r.URL.Query().Get("match"); raw != "" {
		matchID, err = uuid.Parse(raw)
		if err != nil {
			s.refuse(conn, CloseInvalidMatch, "invalid match id")
			return
		}
	}

	client := newClient(playerID, conn)
	if replaced := s.registry.Register(client); replaced != nil {
		replaced.Close(CloseReplaced, "connection superseded")
	}
	go client.writePump()

	s.logger.Info(fmt.Sprintf("player connected: %s", playerID))
	if s.onConnect != nil {
		s.onConnect(playerID, matchID)
	}

	s.readPump(client)
}

// authenticate decodes the identity token and extracts the player id.
func (s *Server) authenticate(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, fmt.Errorf("missing token")
	}

	claims, err := s.tokenizer.Decode(token)
	if err != nil {
		return uuid.Nil, err
	}

	raw, ok := claims["userID"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("token has no user id claim")
	}
	return uuid.Parse(raw)
}

// refuse closes a connection that failed setup, before it was registered.
func (s *Server) refuse(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = conn.Close()
}

// deadline is the read deadline refreshed on every inbound frame and pong.
func deadline() time.Time {
	return time.Now().Add(pongWait)
}

// readPump consumes inbound frames until the connection drops. The close
// handler only fires if this connection was still the live one for its
// identity; a superseded connection closing must not tear down the state of
// its replacement.
func (s *Server) readPump(c *Client) {
	defer func() {
		wasLive := s.registry.Unregister(c)
		c.Close(websocket.CloseNormalClosure, "")
		if wasLive && s.onClose != nil {
			s.onClose(c.id)
		}
	}()

	_ = c.conn.SetReadDeadline(deadline())
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(deadline())
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(deadline())

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warning(fmt.Sprintf("malformed message from %s: %v", c.id, err))
			continue
		}

		switch msg.Type {
		case messagePaddleMove:
			var mv paddleMovePayload
			if err := json.Unmarshal(msg.Data, &mv); err != nil {
				s.logger.Warning(fmt.Sprintf("malformed paddleMove from %s: %v", c.id, err))
				continue
			}
			if s.onInput != nil {
				s.onInput(c.id, clampPaddleY(mv.Y))
			}
		default:
			s.logger.Warning(fmt.Sprintf("unknown message type %q from %s", msg.Type, c.id))
		}
	}
}

// clampPaddleY bounds a requested paddle position to the playing field.
func clampPaddleY(y float64) float64 {
	if y < 0 {
		return 0
	}
	if max := game.CanvasHeight - game.PaddleHeight; y > max {
		return max
	}
	return y
}
