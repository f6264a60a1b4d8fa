package domain

import (
	"github.com/google/uuid"
)

// TournamentStatus is the lifecycle state of a tournament. Transitions are
// one-directional: pending -> in_progress -> completed.
type TournamentStatus string

const (
	TournamentPending    TournamentStatus = "pending"
	TournamentInProgress TournamentStatus = "in_progress"
	TournamentCompleted  TournamentStatus = "completed"
)

// MatchStatus is the lifecycle state of a single bracket match.
type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchCompleted MatchStatus = "completed"
)

// Tournament represents a single-elimination tournament and its roster.
type Tournament struct {
	ID           uuid.UUID        `bson:"_id"`
	Name         string           `bson:"name"`
	CreatorID    uuid.UUID        `bson:"creatorId"`
	Status       TournamentStatus `bson:"status"`
	Participants []uuid.UUID      `bson:"participants"`
}

// Match is one pairing inside a tournament round. A nil Player2 marks a bye:
// the match is persisted already completed with Player1 as its winner.
type Match struct {
	ID           uuid.UUID   `bson:"_id"`
	TournamentID uuid.UUID   `bson:"tournamentId"`
	Round        int         `bson:"round"`
	Player1      uuid.UUID   `bson:"player1"`
	Player2      *uuid.UUID  `bson:"player2,omitempty"`
	Winner       *uuid.UUID  `bson:"winner,omitempty"`
	Status       MatchStatus `bson:"status"`
}

// Bye reports whether the match has only one participant.
func (m *Match) Bye() bool {
	return m.Player2 == nil
}

// HasParticipant reports whether id is one of the assigned players.
func (m *Match) HasParticipant(id uuid.UUID) bool {
	if m.Player1 == id {
		return true
	}
	return m.Player2 != nil && *m.Player2 == id
}
