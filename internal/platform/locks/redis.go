package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	rdb   goredis.UniversalClient
	log   *logger.Logger
	ttl   time.Duration
	retry time.Duration
}

// NewRedisLocker returns a lock backed by SET NX PX with a per-holder token.
// ttl bounds how long a crashed holder can keep the key.
func NewRedisLocker(rdb goredis.UniversalClient, log *logger.Logger, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &redisLocker{
		rdb:   rdb,
		log:   log.With("service", "RedisLocker"),
		ttl:   ttl,
		retry: 25 * time.Millisecond,
	}
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	if l == nil || l.rdb == nil {
		return nil, fmt.Errorf("redis locker not initialized")
	}
	token := uuid.NewString()
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrNotAcquired
		case <-ticker.C:
		}
	}
	return func() {
		// the caller's ctx may already be done; release on a fresh deadline
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil && err != goredis.Nil {
			l.log.Warn("redis lock release failed", "key", key, "error", err)
		}
	}, nil
}
