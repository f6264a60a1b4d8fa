package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/beka-birhanu/pong-arena/game"
	"github.com/beka-birhanu/pong-arena/logging"
	"github.com/beka-birhanu/pong-arena/service/i"
	"github.com/google/uuid"
)

type sessionEntry struct {
	session *game.Session
	players [2]uuid.UUID
	matchID uuid.UUID // uuid.Nil for public games
}

// GameSessionManager wires the transport, matchmaker, and bracket engine
// together. It reacts to connect, input, and disconnect events, owns the
// table of active sessions, and persists results when sessions complete.
type GameSessionManager struct {
	socket     i.SocketManager
	users      i.UserRepo
	matchmaker i.Matchmaker
	bracket    i.BracketEngine
	logger     logging.Logger

	sessions        map[uuid.UUID]*sessionEntry
	playerToSession map[uuid.UUID]uuid.UUID
	mu              sync.RWMutex
}

// GameSessionManagerConfig carries the collaborators of a session manager.
type GameSessionManagerConfig struct {
	Socket     i.SocketManager
	Users      i.UserRepo
	Matchmaker i.Matchmaker
	Bracket    i.BracketEngine
	Logger     logging.Logger
}

// NewGameSessionManager creates the coordinator and registers itself on the
// socket manager and matchmaker.
func NewGameSessionManager(c *GameSessionManagerConfig) (*GameSessionManager, error) {
	gsm := &GameSessionManager{
		socket:          c.Socket,
		users:           c.Users,
		matchmaker:      c.Matchmaker,
		bracket:         c.Bracket,
		logger:          c.Logger,
		sessions:        make(map[uuid.UUID]*sessionEntry),
		playerToSession: make(map[uuid.UUID]uuid.UUID),
	}

	c.Socket.SetConnectHandler(gsm.handleConnect)
	c.Socket.SetInputHandler(gsm.handleInput)
	c.Socket.SetCloseHandler(gsm.handleDisconnect)
	c.Matchmaker.SetPairHandler(gsm.startSession)
	return gsm, nil
}

// handleConnect routes a fresh connection into matchmaking: the public
// queue, or the pending pair of a scheduled match. The transport allows one
// connection per identity, so a connect for a player holding an active
// session means their old handle was just replaced; the session lost its
// transport mid-game and is forfeited to the opponent before the new
// connection joins matchmaking.
func (g *GameSessionManager) handleConnect(playerID, matchID uuid.UUID) {
	g.forfeitSession(playerID)

	ctx := context.Background()
	var err error
	if matchID == uuid.Nil {
		err = g.matchmaker.JoinPublicQueue(ctx, playerID)
	} else {
		err = g.matchmaker.JoinScheduledMatch(ctx, playerID, matchID)
	}
	if err != nil {
		// The matchmaker notified the player already.
		g.logger.Warning(fmt.Sprintf("matchmaking join refused for %s: %v", playerID, err))
	}
}

// handleInput forwards paddle input to the player's session, if any.
func (g *GameSessionManager) handleInput(playerID uuid.UUID, y float64) {
	g.mu.RLock()
	sessionID, ok := g.playerToSession[playerID]
	var entry *sessionEntry
	if ok {
		entry = g.sessions[sessionID]
	}
	g.mu.RUnlock()

	if entry != nil {
		entry.session.HandleInput(playerID, y)
	}
}

// handleDisconnect clears all matchmaking state for the player and, if they
// own an active session, forfeits it to the opponent. Every step is
// idempotent so racing close paths resolve cleanly.
func (g *GameSessionManager) handleDisconnect(playerID uuid.UUID) {
	g.matchmaker.Remove(context.Background(), playerID)
	g.forfeitSession(playerID)
}

// forfeitSession ends the player's active session, if any, declaring the
// opponent the winner.
func (g *GameSessionManager) forfeitSession(playerID uuid.UUID) {
	g.mu.RLock()
	sessionID, ok := g.playerToSession[playerID]
	var entry *sessionEntry
	if ok {
		entry = g.sessions[sessionID]
	}
	g.mu.RUnlock()

	if entry == nil {
		return
	}

	opponent := entry.players[0]
	if opponent == playerID {
		opponent = entry.players[1]
	}
	g.logger.Info(fmt.Sprintf("player %s lost their transport mid-game, forfeiting to %s", playerID, opponent))
	entry.session.Stop(opponent)
}

// startSession builds and starts a session for a produced pairing. For
// scheduled matches the completion callback additionally records the match
// winner and advances the tournament.
func (g *GameSessionManager) startSession(player1, player2, matchID uuid.UUID) {
	connA, okA := g.socket.Client(player1)
	connB, okB := g.socket.Client(player2)
	if !okA || !okB {
		g.logger.Warning(fmt.Sprintf("pairing with missing connection: %s=%t %s=%t", player1, okA, player2, okB))
		if okA {
			g.socket.Notify(player1, eventError, errorPayload{Message: "opponent unavailable"})
		}
		if okB {
			g.socket.Notify(player2, eventError, errorPayload{Message: "opponent unavailable"})
		}
		return
	}

	sessionID := g.newSessionID()
	onGameOver := func(winnerID, loserID uuid.UUID) {
		g.clean(sessionID)
		if err := g.users.RecordWinLoss(winnerID, loserID); err != nil {
			g.logger.Error(fmt.Sprintf("recording win/loss for %s over %s: %v", winnerID, loserID, err))
		}
		if matchID != uuid.Nil {
			if err := g.bracket.ReportResult(context.Background(), matchID, winnerID); err != nil {
				g.logger.Error(fmt.Sprintf("reporting result of match %s: %v", matchID, err))
			}
		}
	}

	session, err := game.NewSession(connA, connB, onGameOver)
	if err != nil {
		g.logger.Error(fmt.Sprintf("creating session for %s vs %s: %v", player1, player2, err))
		return
	}

	g.mu.Lock()
	g.sessions[sessionID] = &sessionEntry{
		session: session,
		players: [2]uuid.UUID{player1, player2},
		matchID: matchID,
	}
	g.playerToSession[player1] = sessionID
	g.playerToSession[player2] = sessionID
	g.mu.Unlock()

	go session.Start()
	g.logger.Info(fmt.Sprintf("started session %s: %s vs %s", sessionID, player1, player2))
}

func (g *GameSessionManager) newSessionID() uuid.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	sessionID := uuid.New()
	for {
		if _, ok := g.sessions[sessionID]; !ok {
			break
		}
		sessionID = uuid.New()
	}
	return sessionID
}

func (g *GameSessionManager) clean(sessionID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.sessions[sessionID]
	if !ok {
		return
	}
	for _, playerID := range entry.players {
		if g.playerToSession[playerID] == sessionID {
			delete(g.playerToSession, playerID)
		}
	}
	delete(g.sessions, sessionID)
}

// StopAll force-stops every active session, declaring the current leaders
// winners. Used on shutdown.
func (g *GameSessionManager) StopAll() {
	g.mu.RLock()
	entries := make([]*sessionEntry, 0, len(g.sessions))
	for _, entry := range g.sessions {
		entries = append(entries, entry)
	}
	g.mu.RUnlock()

	for _, entry := range entries {
		entry.session.Stop(uuid.Nil)
	}
}
