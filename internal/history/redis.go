package history

import (
	"context"
	"fmt"
	"time"

	json "github.com/json-iterator/go"
	"github.com/zfogg/postcheck/internal/cache"
	"github.com/zfogg/postcheck/internal/logger"
	"github.com/zfogg/postcheck/internal/metrics"
	"go.uber.org/zap"
)

const keyPrefix = "history:"

// RedisStore keeps each caller's records in a capped list at history:<caller>
type RedisStore struct {
	redis *cache.RedisClient
	limit int64
	ttl   time.Duration
}

// NewRedisStore caps lists at limit entries and expires idle lists after ttl
func NewRedisStore(redis *cache.RedisClient, limit int, ttl time.Duration) *RedisStore {
	if limit <= 0 {
		limit = 50
	}
	return &RedisStore{redis: redis, limit: int64(limit), ttl: ttl}
}

func key(callerID string) string {
	return keyPrefix + callerID
}

func (s *RedisStore) Append(ctx context.Context, rec Record) error {
	raw, err := json.MarshalToString(rec)
	if err != nil {
		return fmt.Errorf("encode history record: %w", err)
	}
	if err := s.redis.PushCapped(ctx, key(rec.CallerID), raw, s.limit, s.ttl); err != nil {
		observe("append", err)
		return fmt.Errorf("append history: %w", err)
	}
	observe("append", nil)
	return nil
}

func (s *RedisStore) List(ctx context.Context, callerID string, limit int) ([]Record, error) {
	stop := s.limit - 1
	if limit > 0 && int64(limit) < s.limit {
		stop = int64(limit) - 1
	}
	rows, err := s.redis.LRange(ctx, key(callerID), 0, stop)
	if err != nil {
		observe("list", err)
		return nil, fmt.Errorf("list history: %w", err)
	}
	observe("list", nil)

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		var rec Record
		if err := json.UnmarshalFromString(row, &rec); err != nil {
			logger.Log.Warn("Skipping unreadable history record",
				logger.WithCallerID(callerID), zap.Error(err))
			continue
		}
		rec.CallerID = callerID
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) Delete(ctx context.Context, callerID string) error {
	err := s.redis.Del(ctx, key(callerID))
	observe("delete", err)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}

func observe(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.Get().HistoryOperationsTotal.WithLabelValues(op, status).Inc()
}
