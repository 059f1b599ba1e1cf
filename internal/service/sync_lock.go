package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/talaria-app/talaria/pkg/database"
)

// releaseScript deletes the lock key only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// SyncLock serializes sync runs per athlete using a Redis lease. The lease
// expires on its own if a run dies without releasing it.
type SyncLock struct {
	redis *database.Redis
	ttl   time.Duration
}

// NewSyncLock creates a new sync lock
func NewSyncLock(redis *database.Redis, ttl time.Duration) *SyncLock {
	return &SyncLock{redis: redis, ttl: ttl}
}

// Acquire takes the athlete's lease. Returns ErrSyncInProgress when another
// run holds it. The returned token must be passed back to Release.
func (l *SyncLock) Acquire(ctx context.Context, athleteID int64) (string, error) {
	key := fmt.Sprintf("synclock:athlete:%d", athleteID)
	token := uuid.New().String()

	ok, err := l.redis.Client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return "", ErrSyncInProgress
	}

	return token, nil
}

// Release gives the lease back. A lease that already expired or was taken
// over is left alone.
func (l *SyncLock) Release(ctx context.Context, athleteID int64, token string) error {
	key := fmt.Sprintf("synclock:athlete:%d", athleteID)

	if err := releaseScript.Run(ctx, l.redis.Client, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release sync lock: %w", err)
	}
	return nil
}
