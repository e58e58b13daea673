// Package worker consumes broker tasks and runs them to completion.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper claims a task id in Redis so each task runs once per TTL window.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger}
}

// AcquireOnce returns true when this is the first time the task is seen.
// When Redis is unreachable processing is allowed rather than blocked.
func (d *Deduper) AcquireOnce(ctx context.Context, scope, taskID string) bool {
	key := fmt.Sprintf("dedup:%s:%s", scope, taskID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("redis dedup check failed, allowing processing",
			zap.String("scope", scope),
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Info("skipped duplicated task",
			zap.String("scope", scope),
			zap.String("task_id", taskID),
			zap.String("dedup_key", key),
		)
	}
	return ok
}

// Release frees a claimed task id so the broker's redelivery of a failed
// task is processed instead of being skipped as a duplicate.
func (d *Deduper) Release(ctx context.Context, scope, taskID string) {
	key := fmt.Sprintf("dedup:%s:%s", scope, taskID)
	if err := d.rdb.Del(ctx, key).Err(); err != nil {
		d.logger.Warn("failed to release dedup key",
			zap.String("dedup_key", key),
			zap.Error(err),
		)
	}
}
