package sortedstorage

import (
	"context"
	"strconv"

	"github.com/beka-birhanu/pong-arena/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedisSortedQueue manages a score-ordered queue in a Redis sorted set.
// Pop operations run under a distributed lock so concurrent consumers never
// split a pairing.
type RedisSortedQueue struct {
	client *redis.Client
	locker *redsync.Redsync
}

// NewRedisSortedQueue initializes a RedisSortedQueue with the provided Redis client.
func NewRedisSortedQueue(client *redis.Client) (i.SortedQueue, error) {
	queue := &RedisSortedQueue{
		client: client,
	}
	pool := goredis.NewPool(client)
	queue.locker = redsync.New(pool)
	return queue, nil
}

// Enqueue adds a member with the given score. Returns false without
// modifying the set if the member is already queued.
func (rsq *RedisSortedQueue) Enqueue(ctx context.Context, queueKey string, score float64, member string) (bool, error) {
	added, err := rsq.client.ZAddNX(ctx, queueKey, redis.Z{Score: score, Member: member}).Result()
	if err != nil {
		return false, err
	}
	return added > 0, nil
}

// DequeTops removes and returns up to amount members with the lowest
// scores. Returns nil if fewer than amount members are queued.
func (rsq *RedisSortedQueue) DequeTops(ctx context.Context, queueKey string, amount int64) ([]i.ScoredMember, error) {
	mutex := rsq.locker.NewMutex(queueKey + ":pop_lock")
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	var members []i.ScoredMember
	if rsq.client.ZCard(ctx, queueKey).Val() >= amount {
		for _, z := range rsq.client.ZPopMin(ctx, queueKey, amount).Val() {
			members = append(members, i.ScoredMember{
				Member: z.Member.(string),
				Score:  z.Score,
			})
		}
	}

	return members, nil
}

// Requeue re-adds members with their original scores, restoring their
// positions in the queue.
func (rsq *RedisSortedQueue) Requeue(ctx context.Context, queueKey string, members ...i.ScoredMember) error {
	if len(members) == 0 {
		return nil
	}

	zs := make([]redis.Z, 0, len(members))
	for _, m := range members {
		zs = append(zs, redis.Z{Score: m.Score, Member: m.Member})
	}
	return rsq.client.ZAdd(ctx, queueKey, zs...).Err()
}

// Remove deletes a member from the queue.
func (rsq *RedisSortedQueue) Remove(ctx context.Context, queueKey string, member string) (bool, error) {
	removed, err := rsq.client.ZRem(ctx, queueKey, member).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// DequeBelow removes and returns every member scoring strictly below
// maxScore, oldest first.
func (rsq *RedisSortedQueue) DequeBelow(ctx context.Context, queueKey string, maxScore float64) ([]i.ScoredMember, error) {
	mutex := rsq.locker.NewMutex(queueKey + ":pop_lock")
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	limit := "(" + strconv.FormatFloat(maxScore, 'f', -1, 64)
	zs, err := rsq.client.ZRangeByScoreWithScores(ctx, queueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: limit,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(zs) == 0 {
		return nil, nil
	}

	if err := rsq.client.ZRemRangeByScore(ctx, queueKey, "-inf", limit).Err(); err != nil {
		return nil, err
	}

	members := make([]i.ScoredMember, 0, len(zs))
	for _, z := range zs {
		members = append(members, i.ScoredMember{
			Member: z.Member.(string),
			Score:  z.Score,
		})
	}
	return members, nil
}

// Count returns the number of members in the queue.
func (rsq *RedisSortedQueue) Count(ctx context.Context, queueKey string) int64 {
	return rsq.client.ZCard(ctx, queueKey).Val()
}
