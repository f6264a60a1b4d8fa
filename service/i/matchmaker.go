package i

import (
	"context"

	"github.com/google/uuid"
)

// PairHandler is called when two distinct players have been paired.
// matchID is uuid.Nil for public-queue pairings and the scheduled match's
// identifier for tournament pairings.
type PairHandler func(player1, player2, matchID uuid.UUID)

// Matchmaker pairs players from the public FIFO queue and from scheduled
// tournament matches.
type Matchmaker interface {
	JoinPublicQueue(ctx context.Context, playerID uuid.UUID) error
	JoinScheduledMatch(ctx context.Context, playerID, matchID uuid.UUID) error

	// Remove purges any queue entry and pending-pair slot held by the
	// player. Safe to call for players with no matchmaking state.
	Remove(ctx context.Context, playerID uuid.UUID)

	SetPairHandler(PairHandler)
}
