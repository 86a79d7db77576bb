package counts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage caches the number of campaigns matching a keyword on a given day.
// The keyword scan runs on a short interval and many users share keywords,
// so recounting per run would hammer the campaigns table.
type Storage struct {
	redis *redis.Client
}

func NewStorage(r *redis.Client) *Storage {
	return &Storage{
		redis: r,
	}
}

func key(keyword string, day time.Time) string {
	return fmt.Sprintf("keyword_count:%s:%s", day.Format("2006-01-02"), keyword)
}

// Get returns the cached count for the keyword on the given day. The second
// return value is false on a cache miss.
func (s *Storage) Get(ctx context.Context, keyword string, day time.Time) (int64, bool, error) {
	count, err := s.redis.Get(ctx, key(keyword, day)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// Set caches the count with the given expiration (until end of day).
func (s *Storage) Set(ctx context.Context, keyword string, day time.Time, count int64, expiration time.Duration) error {
	return s.redis.Set(ctx, key(keyword, day), count, expiration).Err()
}
