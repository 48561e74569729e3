package cache

import (
	"context"
	"fmt"
	"time"

	apporder "github.com/marketplace/backend/internal/application/order"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sequenceKeyPrefix = "order_seq:"
	// keys outlive their day so late requests near midnight still see it
	sequenceTTL = 48 * time.Hour
)

// RedisSequence hands out the daily order sequence with INCR on order_seq:YYMMDD
type RedisSequence struct {
	client redis.UniversalClient
}

// NewRedisSequence creates a RedisSequence
func NewRedisSequence(client redis.UniversalClient) *RedisSequence {
	return &RedisSequence{client: client}
}

// SequenceKey returns the Redis key for day
func SequenceKey(day time.Time) string {
	return sequenceKeyPrefix + day.Format("060102")
}

// Next increments and returns the counter for day
func (s *RedisSequence) Next(ctx context.Context, day time.Time) (int, error) {
	key := SequenceKey(day)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, sequenceTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return int(incr.Val()), nil
}

// FallbackSequence asks primary first and falls back when it fails
type FallbackSequence struct {
	primary  apporder.SequenceSource
	fallback apporder.SequenceSource
	logger   *zap.Logger
}

// NewFallbackSequence creates a FallbackSequence
func NewFallbackSequence(primary, fallback apporder.SequenceSource, logger *zap.Logger) *FallbackSequence {
	return &FallbackSequence{primary: primary, fallback: fallback, logger: logger}
}

// Next implements apporder.SequenceSource
func (s *FallbackSequence) Next(ctx context.Context, day time.Time) (int, error) {
	seq, err := s.primary.Next(ctx, day)
	if err == nil {
		return seq, nil
	}
	s.logger.Warn("order sequence source unavailable, using fallback", zap.Error(err))
	return s.fallback.Next(ctx, day)
}

var (
	_ apporder.SequenceSource = (*RedisSequence)(nil)
	_ apporder.SequenceSource = (*FallbackSequence)(nil)
)
