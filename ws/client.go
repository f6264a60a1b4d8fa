package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Close codes beyond the normal closure, so clients can tell why they were
// dropped.
const (
	CloseReplaced     = 4000 // a newer connection took over this identity
	CloseUnauthorized = 4001 // missing or invalid identity token
	CloseInvalidMatch = 4002 // malformed or unknown scheduled-match id
	CloseQueueTimeout = 4003 // evicted from the matchmaking queue
)

// Client-related errors.
var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

const (
	sendBufferSize = 64

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// envelope is the outbound JSON frame: an event kind plus its payload.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Client wraps one authenticated player websocket. Outbound events go
// through a buffered channel drained by a single writer goroutine, so
// concurrent senders never interleave frames.
type Client struct {
	id   uuid.UUID
	conn *websocket.Conn

	send chan envelope
	done chan struct{}
	once sync.Once
}

func newClient(id uuid.UUID, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan envelope, sendBufferSize),
		done: make(chan struct{}),
	}
}

// ID returns the authenticated player identity behind the connection.
func (c *Client) ID() uuid.UUID {
	return c.id
}

// Send enqueues one outbound event. It never blocks: a closed connection or
// a full buffer returns an error the caller may ignore (best-effort sends).
func (c *Client) Send(event string, payload any) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- envelope{Type: event, Data: payload}:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		return ErrSendBufferFull
	}
}

// Close terminates the connection with the given close code. Safe to call
// more than once.
func (c *Client) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = c.conn.Close()
	})
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with pings. It exits when the client closes.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case e := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(e); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "ping failed")
				return
			}
		}
	}
}
