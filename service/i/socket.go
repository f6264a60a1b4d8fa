package i

import (
	"github.com/google/uuid"
)

// Conn is the live transport handle of a connected player.
type Conn interface {
	// ID returns the authenticated player identity behind the connection.
	ID() uuid.UUID

	// Send delivers one outbound event. Sending on a closed connection
	// returns an error; callers treat it as best-effort.
	Send(event string, payload any) error

	// Close terminates the connection with the given close code.
	Close(code int, reason string)
}

// Notifier pushes outbound events to connected players.
type Notifier interface {
	// Notify sends one event to a player, best-effort. Unknown players
	// and closed transports are skipped silently.
	Notify(playerID uuid.UUID, event string, payload any)

	// Disconnect closes a player's connection with the given close code.
	Disconnect(playerID uuid.UUID, code int, reason string)
}

// SocketManager manages player websocket connections and routes their
// inbound events to registered handlers.
type SocketManager interface {
	Notifier

	// SetConnectHandler sets the handler called when an authenticated
	// player connects. matchID is uuid.Nil unless the client asked to
	// join a scheduled tournament match.
	SetConnectHandler(func(playerID, matchID uuid.UUID))

	// SetInputHandler sets the handler for paddle input. The y value is
	// already clamped to the playing field.
	SetInputHandler(func(playerID uuid.UUID, y float64))

	// SetCloseHandler sets the handler called after a connection closes.
	SetCloseHandler(func(playerID uuid.UUID))

	// Client returns the live connection of a player, if any.
	Client(playerID uuid.UUID) (Conn, bool)
}
