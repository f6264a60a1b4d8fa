package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/pong-arena/domain"
	"github.com/beka-birhanu/pong-arena/logging"
	"github.com/beka-birhanu/pong-arena/service/i"
	"github.com/beka-birhanu/pong-arena/ws"
	"github.com/google/uuid"
)

const (
	defaultQueueKey      = "pong:queue:public"
	defaultQueueTimeout  = 60 * time.Second
	defaultSweepInterval = 5 * time.Second

	playersPerMatch = 2
)

// Matchmaking errors.
var (
	ErrAlreadyQueued  = errors.New("player already in queue")
	ErrMatchNotFound  = errors.New("match not found")
	ErrMatchDecided   = errors.New("match already decided")
	ErrNotParticipant = errors.New("player is not assigned to this match")
)

// Outbound event kinds emitted by matchmaking.
const (
	eventWaiting      = "waitingForOpponent"
	eventQueueTimeout = "queue_timeout"
	eventError        = "error"
)

type errorPayload struct {
	Message string `json:"message"`
}

// MatchmakerOptions tune queue behavior. Zero values fall back to defaults.
type MatchmakerOptions struct {
	// QueueKey is the sorted-queue key of the public FIFO.
	QueueKey string

	// QueueTimeout is how long an entry may wait before eviction.
	QueueTimeout time.Duration

	// SweepInterval is the cadence of the timeout sweep.
	SweepInterval time.Duration
}

// Matchmaker pairs players for new game sessions. The public queue is a
// strict FIFO on a sorted queue scored by enqueue time; scheduled tournament
// matches pair through an in-memory pending-pair table keyed by match id.
type Matchmaker struct {
	queue    i.SortedQueue
	matches  i.MatchRepo
	notifier i.Notifier
	logger   logging.Logger
	opts     *MatchmakerOptions

	handler i.PairHandler
	pending map[uuid.UUID]uuid.UUID // scheduled match id -> waiting player
	mu      sync.Mutex
}

// NewMatchmaker creates a Matchmaker. opts may be nil for defaults.
func NewMatchmaker(queue i.SortedQueue, matches i.MatchRepo, notifier i.Notifier, logger logging.Logger, opts *MatchmakerOptions) (*Matchmaker, error) {
	if opts == nil {
		opts = &MatchmakerOptions{}
	}
	if opts.QueueKey == "" {
		opts.QueueKey = defaultQueueKey
	}
	if opts.QueueTimeout <= 0 {
		opts.QueueTimeout = defaultQueueTimeout
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}

	return &Matchmaker{
		queue:    queue,
		matches:  matches,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
		pending:  make(map[uuid.UUID]uuid.UUID),
	}, nil
}

// SetPairHandler sets the function called with each produced pairing.
func (mm *Matchmaker) SetPairHandler(f i.PairHandler) {
	mm.handler = f
}

// JoinPublicQueue enqueues a player into the public FIFO and attempts a
// pairing. Joining while already queued changes nothing and yields a single
// error notification.
func (mm *Matchmaker) JoinPublicQueue(ctx context.Context, playerID uuid.UUID) error {
	score := float64(time.Now().UnixNano())
	added, err := mm.queue.Enqueue(ctx, mm.opts.QueueKey, score, playerID.String())
	if err != nil {
		mm.logger.Error(fmt.Sprintf("enqueueing player %s: %v", playerID, err))
		return err
	}
	if !added {
		mm.notifier.Notify(playerID, eventError, errorPayload{Message: "already in queue"})
		return ErrAlreadyQueued
	}

	mm.logger.Info(fmt.Sprintf("player queued: %s", playerID))
	mm.match(ctx)
	return nil
}

// match pops the two oldest entries and hands them to the pair handler.
// If the popped entries do not resolve to two distinct identities, both are
// pushed back at the front of the queue and the attempt is aborted; correct
// enqueue logic never reaches that path.
func (mm *Matchmaker) match(ctx context.Context) {
	if mm.queue.Count(ctx, mm.opts.QueueKey) < playersPerMatch {
		return
	}

	tops, err := mm.queue.DequeTops(ctx, mm.opts.QueueKey, playersPerMatch)
	if err != nil {
		mm.logger.Error(fmt.Sprintf("popping queue tops: %v", err))
		return
	}
	if len(tops) < playersPerMatch {
		return
	}

	p1, err1 := uuid.Parse(tops[0].Member)
	p2, err2 := uuid.Parse(tops[1].Member)
	if err1 != nil || err2 != nil || p1 == p2 {
		mm.logger.Error(fmt.Sprintf("pairing integrity violation, requeueing entries: %v", tops))
		if err := mm.queue.Requeue(ctx, mm.opts.QueueKey, tops...); err != nil {
			mm.logger.Error(fmt.Sprintf("requeueing entries: %v", err))
		}
		return
	}

	mm.logger.Info(fmt.Sprintf("paired from public queue: %s vs %s", p1, p2))
	if mm.handler != nil {
		mm.handler(p1, p2, uuid.Nil)
	}
}

// JoinScheduledMatch registers a player for their scheduled tournament
// match. The first joiner waits; a distinct second joiner consumes the
// pending pair and triggers pairing. A duplicate join by the waiting player
// is a silent no-op.
func (mm *Matchmaker) JoinScheduledMatch(ctx context.Context, playerID, matchID uuid.UUID) error {
	match, err := mm.matches.ByID(ctx, matchID)
	if err != nil {
		mm.notifier.Notify(playerID, eventError, errorPayload{Message: "match not found"})
		return ErrMatchNotFound
	}
	if match.Status != domain.MatchPending {
		mm.notifier.Notify(playerID, eventError, errorPayload{Message: "match already decided"})
		return ErrMatchDecided
	}
	if !match.HasParticipant(playerID) {
		mm.notifier.Notify(playerID, eventError, errorPayload{Message: "not a participant of this match"})
		return ErrNotParticipant
	}

	mm.mu.Lock()
	waiter, ok := mm.pending[matchID]
	if !ok {
		mm.pending[matchID] = playerID
		mm.mu.Unlock()
		mm.logger.Info(fmt.Sprintf("player %s waiting for scheduled match %s", playerID, matchID))
		mm.notifier.Notify(playerID, eventWaiting, nil)
		return nil
	}
	if waiter == playerID {
		mm.mu.Unlock()
		return nil
	}
	delete(mm.pending, matchID)
	mm.mu.Unlock()

	mm.logger.Info(fmt.Sprintf("paired for scheduled match %s: %s vs %s", matchID, waiter, playerID))
	if mm.handler != nil {
		mm.handler(waiter, playerID, matchID)
	}
	return nil
}

// Remove purges the player's queue entry and any pending-pair slot they
// hold. Safe to call for players with no matchmaking state.
func (mm *Matchmaker) Remove(ctx context.Context, playerID uuid.UUID) {
	if _, err := mm.queue.Remove(ctx, mm.opts.QueueKey, playerID.String()); err != nil {
		mm.logger.Error(fmt.Sprintf("removing player %s from queue: %v", playerID, err))
	}

	mm.mu.Lock()
	for matchID, waiter := range mm.pending {
		if waiter == playerID {
			delete(mm.pending, matchID)
		}
	}
	mm.mu.Unlock()
}

// StartSweeper evicts stale queue entries on a fixed interval until ctx is
// cancelled. Run it on its own goroutine.
func (mm *Matchmaker) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(mm.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			mm.sweep(ctx, now)
		}
	}
}

// sweep evicts every entry older than the queue timeout as of now, sending
// each evicted player a queue_timeout signal before disconnecting them.
func (mm *Matchmaker) sweep(ctx context.Context, now time.Time) {
	cutoff := float64(now.Add(-mm.opts.QueueTimeout).UnixNano())
	expired, err := mm.queue.DequeBelow(ctx, mm.opts.QueueKey, cutoff)
	if err != nil {
		mm.logger.Error(fmt.Sprintf("sweeping queue: %v", err))
		return
	}

	for _, entry := range expired {
		id, err := uuid.Parse(entry.Member)
		if err != nil {
			mm.logger.Warning(fmt.Sprintf("non-UUID value in queue: %s", entry.Member))
			continue
		}
		mm.logger.Info(fmt.Sprintf("queue timeout for player: %s", id))
		mm.notifier.Notify(id, eventQueueTimeout, nil)
		mm.notifier.Disconnect(id, ws.CloseQueueTimeout, "queue timeout")
	}
}
