package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// fakeConn records every event a session sends to it.
type fakeConn struct {
	id     uuid.UUID
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	event   string
	payload any
}

func newFakeConn() *fakeConn {
	return &fakeConn{id: uuid.New()}
}

func (c *fakeConn) ID() uuid.UUID { return c.id }

func (c *fakeConn) Send(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, recordedEvent{event: event, payload: payload})
	return nil
}

func (c *fakeConn) countOf(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.event == event {
			n++
		}
	}
	return n
}

func newTestSession(t *testing.T, onGameOver func(winnerID, loserID uuid.UUID)) (*Session, *fakeConn, *fakeConn) {
	t.Helper()
	a, b := newFakeConn(), newFakeConn()
	if onGameOver == nil {
		onGameOver = func(uuid.UUID, uuid.UUID) {}
	}
	s, err := NewSession(a, b, onGameOver)
	assert.NoError(t, err)
	return s, a, b
}

func TestNewSession(t *testing.T) {
	t.Run("rejects missing players", func(t *testing.T) {
		_, err := NewSession(nil, newFakeConn(), func(uuid.UUID, uuid.UUID) {})
		assert.ErrorIs(t, err, ErrMissingPlayer)

		_, err = NewSession(newFakeConn(), nil, func(uuid.UUID, uuid.UUID) {})
		assert.ErrorIs(t, err, ErrMissingPlayer)
	})

	t.Run("rejects the same player twice", func(t *testing.T) {
		a := newFakeConn()
		_, err := NewSession(a, a, func(uuid.UUID, uuid.UUID) {})
		assert.ErrorIs(t, err, ErrSamePlayer)
	})

	t.Run("rejects a missing callback", func(t *testing.T) {
		_, err := NewSession(newFakeConn(), newFakeConn(), nil)
		assert.ErrorIs(t, err, ErrMissingCallback)
	})
}

func TestSessionInput(t *testing.T) {
	t.Run("stores paddle position for a participant", func(t *testing.T) {
		s, a, _ := newTestSession(t, nil)

		s.HandleInput(a.id, 420)

		assert.Equal(t, 420.0, s.players[0].paddleY)
		assert.Equal(t, initialPaddleY, s.players[1].paddleY)
	})

	t.Run("ignores unknown identities", func(t *testing.T) {
		s, _, _ := newTestSession(t, nil)

		s.HandleInput(uuid.New(), 420)

		assert.Equal(t, initialPaddleY, s.players[0].paddleY)
		assert.Equal(t, initialPaddleY, s.players[1].paddleY)
	})

	t.Run("ignores input after the session is over", func(t *testing.T) {
		s, a, _ := newTestSession(t, nil)
		s.Stop(a.id)

		s.HandleInput(a.id, 420)

		assert.Equal(t, initialPaddleY, s.players[0].paddleY)
	})
}

func TestSessionPhysics(t *testing.T) {
	t.Run("reflects off the bottom wall", func(t *testing.T) {
		s, _, _ := newTestSession(t, nil)
		s.ball = ball{x: CanvasWidth / 2, y: CanvasHeight - BallRadius - 1, velX: 0, velY: 3}

		s.tick()

		assert.Equal(t, -3.0, s.ball.velY)
	})

	t.Run("reflects off the top wall", func(t *testing.T) {
		s, _, _ := newTestSession(t, nil)
		s.ball = ball{x: CanvasWidth / 2, y: BallRadius + 1, velX: 0, velY: -3}

		s.tick()

		assert.Equal(t, 3.0, s.ball.velY)
	})

	t.Run("reflects off a paddle within its vertical span", func(t *testing.T) {
		s, a, _ := newTestSession(t, nil)
		s.HandleInput(a.id, 200)
		s.ball = ball{x: PaddleWidth + BallRadius + 2, y: 250, velX: -5, velY: 0}

		s.tick()

		assert.Equal(t, 5.0, s.ball.velX)
	})

	t.Run("passes a paddle outside its vertical span", func(t *testing.T) {
		s, a, _ := newTestSession(t, nil)
		s.HandleInput(a.id, 400)
		s.ball = ball{x: PaddleWidth + BallRadius + 2, y: 100, velX: -5, velY: 0}

		s.tick()

		assert.Equal(t, -5.0, s.ball.velX)
	})

	t.Run("scores and recenters when the ball passes a baseline", func(t *testing.T) {
		s, _, _ := newTestSession(t, nil)
		s.ball = ball{x: 2, y: 300, velX: -5, velY: 3}

		s.tick()

		assert.Equal(t, 1, s.players[1].score)
		assert.Equal(t, 0, s.players[0].score)
		assert.Equal(t, CanvasWidth/2, s.ball.x)
		assert.Equal(t, CanvasHeight/2, s.ball.y)
		assert.Equal(t, 5.0, s.ball.velX, "horizontal direction inverts on reset")
		assert.Equal(t, 3.0, s.ball.velY, "vertical direction is unchanged on reset")
	})

	t.Run("a late left-paddle save cannot cancel a scored point", func(t *testing.T) {
		s, a, _ := newTestSession(t, nil)
		// Paddle span covers the ball, but the ball crosses the baseline
		// on this tick.
		s.HandleInput(a.id, 200)
		s.ball = ball{x: 4, y: 250, velX: -5, velY: 0}

		s.tick()

		assert.Equal(t, 1, s.players[1].score)
		assert.Equal(t, 5.0, s.ball.velX, "reset must invert the scoring direction")
		assert.Equal(t, CanvasWidth/2, s.ball.x)
	})

	t.Run("a late right-paddle save cannot cancel a scored point", func(t *testing.T) {
		s, _, b := newTestSession(t, nil)
		s.HandleInput(b.id, 200)
		s.ball = ball{x: CanvasWidth - 4, y: 250, velX: 5, velY: 0}

		s.tick()

		assert.Equal(t, 1, s.players[0].score)
		assert.Equal(t, -5.0, s.ball.velX, "reset must invert the scoring direction")
		assert.Equal(t, CanvasWidth/2, s.ball.x)
	})
}

func TestSessionWin(t *testing.T) {
	t.Run("reaching the winning score ends the game once", func(t *testing.T) {
		var calls []uuid.UUID
		s, a, b := newTestSession(t, func(winnerID, _ uuid.UUID) {
			calls = append(calls, winnerID)
		})

		s.players[1].score = winningScore - 1
		s.ball = ball{x: 2, y: 300, velX: -5, velY: 3}

		winner := s.tick()
		assert.Equal(t, b.id, winner)

		s.finish(winner)
		s.finish(winner)

		assert.Equal(t, []uuid.UUID{b.id}, calls)
		assert.Equal(t, 1, a.countOf(EventGameOver))
		assert.Equal(t, 1, b.countOf(EventGameOver))
	})

	t.Run("callback receives winner and loser", func(t *testing.T) {
		var gotWinner, gotLoser uuid.UUID
		s, a, b := newTestSession(t, func(winnerID, loserID uuid.UUID) {
			gotWinner, gotLoser = winnerID, loserID
		})

		s.Stop(b.id)

		assert.Equal(t, b.id, gotWinner)
		assert.Equal(t, a.id, gotLoser)
	})
}

func TestSessionStop(t *testing.T) {
	t.Run("forfeit declares the surviving player winner regardless of score", func(t *testing.T) {
		var gotWinner uuid.UUID
		s, _, b := newTestSession(t, func(winnerID, _ uuid.UUID) {
			gotWinner = winnerID
		})
		s.players[0].score = 10 // the forfeiting player leads

		s.Stop(b.id)

		assert.Equal(t, b.id, gotWinner)
	})

	t.Run("nil winner declares the current leader", func(t *testing.T) {
		var gotWinner uuid.UUID
		s, _, b := newTestSession(t, func(winnerID, _ uuid.UUID) {
			gotWinner = winnerID
		})
		s.players[1].score = 7

		s.Stop(uuid.Nil)

		assert.Equal(t, b.id, gotWinner)
	})

	t.Run("ties resolve to the first player", func(t *testing.T) {
		var gotWinner uuid.UUID
		s, a, _ := newTestSession(t, func(winnerID, _ uuid.UUID) {
			gotWinner = winnerID
		})

		s.Stop(uuid.Nil)

		assert.Equal(t, a.id, gotWinner)
	})

	t.Run("double stop fires the callback once", func(t *testing.T) {
		calls := 0
		s, a, b := newTestSession(t, func(uuid.UUID, uuid.UUID) {
			calls++
		})

		s.Stop(a.id)
		s.Stop(b.id)

		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, a.countOf(EventGameOver))
	})

	t.Run("no further ticks advance a finished game", func(t *testing.T) {
		s, a, _ := newTestSession(t, nil)
		s.Stop(a.id)
		before := s.ball

		winner := s.tick()

		assert.Equal(t, uuid.Nil, winner)
		assert.Equal(t, before, s.ball)
	})
}
