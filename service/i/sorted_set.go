package i

import "context"

// ScoredMember is a member of a sorted set with its score.
type ScoredMember struct {
	Member string
	Score  float64
}

// SortedSet stores members ordered by score.
type SortedSet interface {
	// Add inserts member, keeping the lowest score when it is already present.
	Add(ctx context.Context, key string, score float64, member string) error

	// Lowest returns up to n members with the lowest scores, lowest first.
	Lowest(ctx context.Context, key string, n int64) ([]ScoredMember, error)

	// Count returns the number of members in key.
	Count(ctx context.Context, key string) int64
}
