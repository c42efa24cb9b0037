package stores

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Sequence hands out monotonically increasing int64 ids from a Redis INCR
// counter. Ids are never reused, including across process restarts, because
// the counter itself is the persisted high-water mark.
type Sequence struct {
	redis redis.UniversalClient
	key   string
}

// NewSequence creates a Sequence named name under the given key prefix.
func NewSequence(redisClient redis.UniversalClient, prefix, name string) *Sequence {
	if prefix == "" {
		prefix = "gi"
	}
	return &Sequence{
		redis: redisClient,
		key:   prefix + ":seq:" + name,
	}
}

// Next returns the next id in the sequence.
func (s *Sequence) Next(ctx context.Context) (int64, error) {
	id, err := s.redis.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return id, nil
}
