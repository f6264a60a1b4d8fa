package i

import (
	"context"

	dmn "github.com/beka-birhanu/pong-arena/domain"
	"github.com/google/uuid"
)

// UserRepo defines the interface for user persistence operations.
type UserRepo interface {
	// Save inserts or updates a user in the repository.
	// If the user already exists, it updates the record. Otherwise, it creates a new one.
	Save(user *dmn.User) error

	// ByID retrieves a user by their unique ID.
	// Returns an error if the user is not found or in case of an unexpected error.
	ByID(id uuid.UUID) (*dmn.User, error)

	// ByUsername retrieves a user by their username.
	// Returns an error if the user is not found or in case of an unexpected error.
	ByUsername(username string) (*dmn.User, error)

	// RecordWinLoss increments the winner's win count and the loser's loss count.
	RecordWinLoss(winnerID, loserID uuid.UUID) error
}

// TournamentRepo persists tournaments and their rosters.
type TournamentRepo interface {
	Create(ctx context.Context, t *dmn.Tournament) error
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Tournament, error)

	// AddParticipant adds a player to a pending tournament's roster.
	// Adding a player twice is a no-op. Returns an error if the tournament
	// does not exist or is no longer pending.
	AddParticipant(ctx context.Context, tournamentID, playerID uuid.UUID) error

	SetStatus(ctx context.Context, id uuid.UUID, status dmn.TournamentStatus) error
}

// MatchRepo persists bracket matches.
type MatchRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Match, error)

	// ByTournament returns all matches of a tournament, every round included.
	ByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*dmn.Match, error)

	// CreateRound persists a full round of matches.
	CreateRound(ctx context.Context, matches []*dmn.Match) error

	// SetWinner marks a match completed with the given winner.
	SetWinner(ctx context.Context, matchID, winnerID uuid.UUID) error
}
