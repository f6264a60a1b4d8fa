package i

import (
	"context"
)

// ScoredMember is a queue member together with its ordering score. Scores
// are enqueue timestamps, so re-adding a member with its original score
// restores its position in the queue.
type ScoredMember struct {
	Member string
	Score  float64
}

// SortedQueue is a score-ordered queue with set semantics per member.
// Implementations must make DequeTops and DequeBelow safe under concurrent
// callers (the Redis implementation holds a distributed lock while popping).
type SortedQueue interface {
	// Enqueue adds a member with the given score. Returns false without
	// modifying the queue if the member is already present.
	Enqueue(ctx context.Context, queueKey string, score float64, member string) (bool, error)

	// DequeTops removes and returns up to amount members with the lowest
	// scores, oldest first. Returns nil if fewer than amount are queued.
	DequeTops(ctx context.Context, queueKey string, amount int64) ([]ScoredMember, error)

	// Requeue re-adds members with their original scores.
	Requeue(ctx context.Context, queueKey string, members ...ScoredMember) error

	// Remove deletes a member. Returns false if it was not queued.
	Remove(ctx context.Context, queueKey string, member string) (bool, error)

	// DequeBelow removes and returns every member scoring strictly below
	// maxScore, oldest first.
	DequeBelow(ctx context.Context, queueKey string, maxScore float64) ([]ScoredMember, error)

	// Count returns the number of queued members.
	Count(ctx context.Context, queueKey string) int64
}
