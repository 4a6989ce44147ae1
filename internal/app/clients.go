package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/levelup-backend/internal/platform/identity"
	"github.com/yungbote/levelup-backend/internal/platform/locks"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type Clients struct {
	Redis       goredis.UniversalClient
	Locker      locks.Locker
	LockBackend string
	Verifier    identity.Verifier
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	verifier, err := identity.NewVerifier(cfg.Auth)
	if err != nil {
		return Clients{}, fmt.Errorf("init identity verifier: %w", err)
	}
	out, err := wireWorkerClients(log, cfg)
	if err != nil {
		return out, err
	}
	out.Verifier = verifier
	return out, nil
}

// wireWorkerClients skips the token verifier, which only the HTTP surface needs.
func wireWorkerClients(log *logger.Logger, cfg Config) (Clients, error) {
	var out Clients

	// Redis
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set; submission locks are process-local")
		out.Locker = locks.NewMemoryLocker()
		out.LockBackend = "memory"
		return out, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return out, fmt.Errorf("redis ping: %w", err)
	}
	out.Redis = rdb
	out.Locker = locks.NewRedisLocker(rdb, log, cfg.SubmissionLockTTL)
	out.LockBackend = "redis"
	return out, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
