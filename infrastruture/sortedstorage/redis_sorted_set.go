package sortedstorage

import (
	"context"
	"time"

	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/redis/go-redis/v9"
)

var _ i.SortedSet = &RedisSortedSet{}

// RedisSortedSet manages sorted sets in Redis with TTL support.
type RedisSortedSet struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSortedSet initializes a RedisSortedSet with the provided Redis client and TTL.
// A zero TTL keeps keys forever.
func NewRedisSortedSet(client *redis.Client, ttlSeconds int) *RedisSortedSet {
	return &RedisSortedSet{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

// Add inserts member with score. An existing member only moves to a lower score.
func (rs *RedisSortedSet) Add(ctx context.Context, key string, score float64, member string) error {
	err := rs.client.ZAddArgs(ctx, key, redis.ZAddArgs{
		LT:      true,
		Members: []redis.Z{{Score: score, Member: member}},
	}).Err()
	if err != nil {
		return err
	}

	if rs.ttl <= 0 {
		return nil
	}
	// Set expiration only if it's not already set
	ttl, err := rs.client.TTL(ctx, key).Result()
	if err == nil && ttl == -1 {
		_ = rs.client.Expire(ctx, key, rs.ttl).Err()
	}
	return nil
}

// Lowest retrieves up to n members with the lowest scores, lowest first.
func (rs *RedisSortedSet) Lowest(ctx context.Context, key string, n int64) ([]i.ScoredMember, error) {
	if n <= 0 {
		return []i.ScoredMember{}, nil
	}
	zs, err := rs.client.ZRangeWithScores(ctx, key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	members := make([]i.ScoredMember, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		members = append(members, i.ScoredMember{Member: member, Score: z.Score})
	}
	return members, nil
}

// Count returns the number of members in the sorted set.
func (rs *RedisSortedSet) Count(ctx context.Context, key string) int64 {
	return rs.client.ZCard(ctx, key).Val()
}
