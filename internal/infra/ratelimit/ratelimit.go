package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter лимитер с фиксированным окном на базе Redis.
// Счетчик инкрементируется атомарно, TTL выставляется при создании ключа.
type Limiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

// fixed-window: INCR + PEXPIRE на первом обращении в окне
var incrScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// NewLimiter создает новый экземпляр Limiter
func NewLimiter(rdb *redis.Client, limit int64, window time.Duration) *Limiter {
	return &Limiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
	}
}

// Allow проверяет, укладывается ли ключ в лимит текущего окна
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	fullKey := fmt.Sprintf("ratelimit:%s", key)

	current, err := incrScript.Run(ctx, l.rdb, []string{fullKey}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("Allow - run script: %w", err)
	}

	return current <= l.limit, nil
}
