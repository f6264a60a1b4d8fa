// Package game implements the authoritative Pong match engine. A Session
// owns all ball, paddle, and score state for exactly two players and runs a
// fixed-rate update loop, broadcasting state to both transports every tick.
package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session-related errors.
var (
	ErrMissingPlayer   = errors.New("session requires two connected players")
	ErrSamePlayer      = errors.New("session players must be distinct")
	ErrMissingCallback = errors.New("session requires a completion callback")
)

// Playing-field geometry and game constants.
const (
	CanvasWidth  = 800.0
	CanvasHeight = 600.0
	PaddleHeight = 100.0
	PaddleWidth  = 10.0
	BallRadius   = 10.0

	winningScore = 11

	tickInterval = time.Second / 60

	initialBallVelX = 5.0
	initialBallVelY = 3.0
	initialPaddleY  = (CanvasHeight - PaddleHeight) / 2
)

// Outbound event kinds emitted by a session.
const (
	EventGameStart = "gameStart"
	EventGameState = "gameState"
	EventGameOver  = "gameOver"
)

// Conn is the transport handle a session broadcasts to. Sends are
// best-effort; a closed transport is skipped, never treated as an error.
type Conn interface {
	ID() uuid.UUID
	Send(event string, payload any) error
}

// StartPayload names both participants when a game begins.
type StartPayload struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

// BallState is the ball position inside a state broadcast.
type BallState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StatePayload is the per-tick snapshot sent to both players.
type StatePayload struct {
	Paddles map[string]float64 `json:"paddles"`
	Ball    BallState          `json:"ball"`
	Score   map[string]int     `json:"score"`
}

// OverPayload carries the winner and the final score.
type OverPayload struct {
	WinnerID string         `json:"winnerId"`
	Score    map[string]int `json:"score"`
}

type playerSlot struct {
	id      uuid.UUID
	conn    Conn
	paddleY float64
	score   int
}

type ball struct {
	x, y       float64
	velX, velY float64
}

// Session is a single match's physics and state engine. All mutation goes
// through the session mutex; ticks within a session are strictly sequential.
type Session struct {
	players    [2]*playerSlot
	ball       ball
	over       bool
	stop       chan struct{}
	onGameOver func(winnerID, loserID uuid.UUID)
	mu         sync.Mutex
}

// NewSession creates a session for two distinct connected players. The
// callback fires exactly once, after the loop has stopped, with the winner
// and loser identities.
func NewSession(playerA, playerB Conn, onGameOver func(winnerID, loserID uuid.UUID)) (*Session, error) {
	if playerA == nil || playerB == nil {
		return nil, ErrMissingPlayer
	}
	if playerA.ID() == playerB.ID() {
		return nil, ErrSamePlayer
	}
	if onGameOver == nil {
		return nil, ErrMissingCallback
	}

	return &Session{
		players: [2]*playerSlot{
			{id: playerA.ID(), conn: playerA, paddleY: initialPaddleY},
			{id: playerB.ID(), conn: playerB, paddleY: initialPaddleY},
		},
		ball: ball{
			x:    CanvasWidth / 2,
			y:    CanvasHeight / 2,
			velX: initialBallVelX,
			velY: initialBallVelY,
		},
		stop:       make(chan struct{}),
		onGameOver: onGameOver,
	}, nil
}

// Start broadcasts the gameStart event and runs the fixed-rate loop until
// the win condition is met or Stop is called. Run it on its own goroutine.
func (s *Session) Start() {
	s.broadcast(EventGameStart, StartPayload{
		Player1: s.players[0].id.String(),
		Player2: s.players[1].id.String(),
	})

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if winner := s.tick(); winner != uuid.Nil {
				s.finish(winner)
				return
			}
			s.broadcastState()
		}
	}
}

// HandleInput stores the supplied paddle y for the identified player.
// Input for unknown identities is ignored. The transport layer clamps y to
// the playing field before it reaches the session.
func (s *Session) HandleInput(playerID uuid.UUID, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over {
		return
	}
	for _, p := range s.players {
		if p.id == playerID {
			p.paddleY = y
			return
		}
	}
}

// Stop ends the session. A non-nil forfeitWinner is declared winner
// regardless of score; passing uuid.Nil declares the current leader.
// Stop is idempotent: racing natural-win and forfeit paths produce exactly
// one gameOver broadcast and one callback invocation.
func (s *Session) Stop(forfeitWinner uuid.UUID) {
	winner := forfeitWinner

	s.mu.Lock()
	if winner != s.players[0].id && winner != s.players[1].id {
		if s.players[0].score >= s.players[1].score {
			winner = s.players[0].id
		} else {
			winner = s.players[1].id
		}
	}
	s.mu.Unlock()

	s.finish(winner)
}

// tick advances the simulation one step and returns the winner identity
// once a side reaches the winning score, uuid.Nil otherwise.
func (s *Session) tick() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over {
		return uuid.Nil
	}

	b := &s.ball
	b.x += b.velX
	b.y += b.velY

	// Elastic reflection off the top and bottom walls.
	if b.y-BallRadius <= 0 && b.velY < 0 {
		b.velY = -b.velY
	}
	if b.y+BallRadius >= CanvasHeight && b.velY > 0 {
		b.velY = -b.velY
	}

	left, right := s.players[0], s.players[1]

	// Scoring resolves before paddle contact: a ball that crossed the
	// baseline this tick cannot also reflect off a late-moving paddle, so
	// the reset always inverts the direction the point was scored in.
	if b.x < 0 {
		right.score++
		s.resetBall()
		if right.score >= winningScore {
			return right.id
		}
		return uuid.Nil
	}
	if b.x > CanvasWidth {
		left.score++
		s.resetBall()
		if left.score >= winningScore {
			return left.id
		}
		return uuid.Nil
	}

	// Paddle contact: leading edge crosses the paddle plane while the ball
	// y is within the paddle's vertical span. Speed is preserved.
	if b.velX < 0 && b.x-BallRadius <= PaddleWidth && b.y >= left.paddleY && b.y <= left.paddleY+PaddleHeight {
		b.velX = -b.velX
	}
	if b.velX > 0 && b.x+BallRadius >= CanvasWidth-PaddleWidth && b.y >= right.paddleY && b.y <= right.paddleY+PaddleHeight {
		b.velX = -b.velX
	}

	return uuid.Nil
}

// resetBall recenters the ball after a point. Horizontal direction inverts
// relative to its pre-reset direction; vertical direction is unchanged.
// Callers must hold the session mutex.
func (s *Session) resetBall() {
	s.ball.x = CanvasWidth / 2
	s.ball.y = CanvasHeight / 2
	s.ball.velX = -s.ball.velX
}

// finish transitions the session to its terminal state exactly once.
func (s *Session) finish(winner uuid.UUID) {
	s.mu.Lock()
	if s.over {
		s.mu.Unlock()
		return
	}
	s.over = true
	close(s.stop)

	loser := s.players[0].id
	if loser == winner {
		loser = s.players[1].id
	}
	payload := OverPayload{
		WinnerID: winner.String(),
		Score:    s.scoreLocked(),
	}
	cb := s.onGameOver
	s.mu.Unlock()

	s.broadcast(EventGameOver, payload)
	cb(winner, loser)
}

func (s *Session) broadcastState() {
	s.mu.Lock()
	if s.over {
		s.mu.Unlock()
		return
	}
	payload := StatePayload{
		Paddles: map[string]float64{
			s.players[0].id.String(): s.players[0].paddleY,
			s.players[1].id.String(): s.players[1].paddleY,
		},
		Ball:  BallState{X: s.ball.x, Y: s.ball.y},
		Score: s.scoreLocked(),
	}
	s.mu.Unlock()

	s.broadcast(EventGameState, payload)
}

func (s *Session) scoreLocked() map[string]int {
	return map[string]int{
		s.players[0].id.String(): s.players[0].score,
		s.players[1].id.String(): s.players[1].score,
	}
}

func (s *Session) broadcast(event string, payload any) {
	for _, p := range s.players {
		// Best-effort: a closed transport is not an error.
		_ = p.conn.Send(event, payload)
	}
}
