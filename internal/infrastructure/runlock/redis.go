package runlock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the lock key only when it still holds our token,
// so a run that outlived its TTL cannot release a successor's lock.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisLocker is a distributed Locker for multi-instance deployments.
// The TTL bounds how long a crashed run can keep its tenant locked.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisLocker creates a Redis-backed locker
func NewRedisLocker(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisLocker{client: client, ttl: ttl, log: log.Named("runlock")}
}

// Acquire takes the tenant's run lock without blocking
func (l *RedisLocker) Acquire(ctx context.Context, tenantID uuid.UUID) (func(), error) {
	key := lockKey(tenantID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}

	release := func() {
		// release runs on every exit path; use a fresh context so a
		// cancelled sync still frees the lock
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err(); err != nil {
			l.log.Warn("failed to release run lock",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		}
	}
	return release, nil
}

func lockKey(tenantID uuid.UUID) string {
	return "sync:run:" + tenantID.String()
}

var _ Locker = (*RedisLocker)(nil)
