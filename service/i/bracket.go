package i

import (
	"context"

	"github.com/google/uuid"
)

// BracketEngine drives single-elimination tournaments.
type BracketEngine interface {
	// Start builds and persists round one for a pending tournament and
	// moves it to in_progress. Only the tournament creator may start it.
	Start(ctx context.Context, tournamentID, callerID uuid.UUID) error

	// ReportResult records a match winner and advances the bracket.
	// Reporting on an already-completed match is a no-op success.
	ReportResult(ctx context.Context, matchID, winnerID uuid.UUID) error
}
