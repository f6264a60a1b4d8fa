package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/beka-birhanu/pong-arena/domain"
	"github.com/beka-birhanu/pong-arena/logging"
	"github.com/beka-birhanu/pong-arena/service/i"
	"github.com/google/uuid"
)

// Bracket errors.
var (
	ErrTournamentNotFound    = errors.New("tournament not found")
	ErrNotCreator            = errors.New("only the tournament creator can start it")
	ErrTournamentNotPending  = errors.New("tournament has already started")
	ErrNotEnoughParticipants = errors.New("tournament needs at least two participants")
	ErrWinnerNotInMatch      = errors.New("winner is not a participant of the match")
)

// Bracket is the single-elimination tournament state machine. All
// advancement for a tournament runs under a per-tournament lock so the
// round-completeness check and next-round generation are atomic under
// concurrent match completions.
type Bracket struct {
	tournaments i.TournamentRepo
	matches     i.MatchRepo
	locker      i.Locker
	logger      logging.Logger
}

// NewBracket creates a bracket engine over the given repositories.
func NewBracket(tournaments i.TournamentRepo, matches i.MatchRepo, locker i.Locker, logger logging.Logger) (*Bracket, error) {
	return &Bracket{
		tournaments: tournaments,
		matches:     matches,
		locker:      locker,
		logger:      logger,
	}, nil
}

// Start builds round one for a pending tournament and moves it to
// in_progress. Participants are shuffled uniformly and paired consecutively;
// an odd participant out receives a bye. A round that is entirely byes
// completes instantly and cascades without external events.
func (b *Bracket) Start(ctx context.Context, tournamentID, callerID uuid.UUID) error {
	unlock, err := b.locker.Lock(ctx, tournamentLockName(tournamentID))
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	t, err := b.tournaments.ByID(ctx, tournamentID)
	if err != nil {
		return ErrTournamentNotFound
	}
	if t.CreatorID != callerID {
		return ErrNotCreator
	}
	if t.Status != domain.TournamentPending {
		return ErrTournamentNotPending
	}
	if len(t.Participants) < 2 {
		return ErrNotEnoughParticipants
	}

	round := buildRound(tournamentID, 1, t.Participants)
	if err := b.matches.CreateRound(ctx, round); err != nil {
		return err
	}
	if err := b.tournaments.SetStatus(ctx, tournamentID, domain.TournamentInProgress); err != nil {
		return err
	}

	b.logger.Info(fmt.Sprintf("tournament %s started with %d participants", tournamentID, len(t.Participants)))
	return b.advance(ctx, tournamentID)
}

// ReportResult records a match winner and advances the bracket. Reporting
// on an already-completed match is a no-op success, guarding against
// duplicate completion callbacks from retried calls.
func (b *Bracket) ReportResult(ctx context.Context, matchID, winnerID uuid.UUID) error {
	match, err := b.matches.ByID(ctx, matchID)
	if err != nil {
		return ErrMatchNotFound
	}

	unlock, err := b.locker.Lock(ctx, tournamentLockName(match.TournamentID))
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	// Re-read under the lock: a concurrent report may have completed the
	// match between the first read and lock acquisition.
	match, err = b.matches.ByID(ctx, matchID)
	if err != nil {
		return ErrMatchNotFound
	}
	if match.Status == domain.MatchCompleted {
		return nil
	}
	if !match.HasParticipant(winnerID) {
		return ErrWinnerNotInMatch
	}

	if err := b.matches.SetWinner(ctx, matchID, winnerID); err != nil {
		return err
	}
	return b.advance(ctx, match.TournamentID)
}

// advance checks the current round and generates the next one, looping
// until the latest round is still being played or a champion remains.
// Callers must hold the tournament lock. The loop is bounded by the finite
// number of rounds a roster can produce.
func (b *Bracket) advance(ctx context.Context, tournamentID uuid.UUID) error {
	for {
		all, err := b.matches.ByTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			return nil
		}

		maxRound := 0
		for _, m := range all {
			if m.Round > maxRound {
				maxRound = m.Round
			}
		}

		winners := make([]uuid.UUID, 0)
		for _, m := range all {
			if m.Round != maxRound {
				continue
			}
			if m.Status != domain.MatchCompleted {
				return nil
			}
			if m.Winner == nil {
				return fmt.Errorf("completed match %s has no winner", m.ID)
			}
			winners = append(winners, *m.Winner)
		}

		if len(winners) == 1 {
			if err := b.tournaments.SetStatus(ctx, tournamentID, domain.TournamentCompleted); err != nil {
				return err
			}
			b.logger.Info(fmt.Sprintf("tournament %s completed, champion: %s", tournamentID, winners[0]))
			return nil
		}

		next := buildRound(tournamentID, maxRound+1, winners)
		if err := b.matches.CreateRound(ctx, next); err != nil {
			return err
		}
		b.logger.Info(fmt.Sprintf("tournament %s advanced to round %d with %d players", tournamentID, maxRound+1, len(winners)))
	}
}

// buildRound shuffles the players uniformly, pairs them consecutively, and
// gives an odd player out a bye persisted as already won.
func buildRound(tournamentID uuid.UUID, round int, playerIDs []uuid.UUID) []*domain.Match {
	shuffled := make([]uuid.UUID, len(playerIDs))
	copy(shuffled, playerIDs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	matches := make([]*domain.Match, 0, (len(shuffled)+1)/2)
	for idx := 0; idx+1 < len(shuffled); idx += 2 {
		p2 := shuffled[idx+1]
		matches = append(matches, &domain.Match{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Round:        round,
			Player1:      shuffled[idx],
			Player2:      &p2,
			Status:       domain.MatchPending,
		})
	}
	if len(shuffled)%2 == 1 {
		bye := shuffled[len(shuffled)-1]
		matches = append(matches, &domain.Match{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Round:        round,
			Player1:      bye,
			Winner:       &bye,
			Status:       domain.MatchCompleted,
		})
	}
	return matches
}

func tournamentLockName(tournamentID uuid.UUID) string {
	return "pong:tournament:" + tournamentID.String()
}
