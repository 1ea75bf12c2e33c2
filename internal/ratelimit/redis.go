package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/golekaab-server/internal/model"
)

var _ model.RateLimiter = (*Redis)(nil)

var redisIncrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// Redis is a fixed-window limiter shared by every server instance.
type Redis struct {
	client redis.Scripter
	prefix string
	max    int
	window time.Duration
	now    func() time.Time
}

// NewRedis allows max attempts per key in each window-aligned bucket.
func NewRedis(client redis.Scripter, prefix string, max int, window time.Duration) *Redis {
	return &Redis{
		client: client,
		prefix: strings.TrimSpace(prefix),
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Allow increments the counter for key in the current window and reports
// whether it is still within the limit.
func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	if l.max <= 0 || l.window <= 0 || key == "" {
		return true, nil
	}

	bucket := l.now().UnixNano() / int64(l.window)
	res, err := redisIncrScript.Run(ctx, l.client, []string{l.buildKey(key, bucket)}, l.window.Milliseconds()).Result()
	if err != nil {
		return false, err
	}

	count, ok := res.(int64)
	if !ok {
		return false, errors.New("rate limit redis: unexpected response type")
	}

	return count <= int64(l.max), nil
}

func (l *Redis) buildKey(key string, bucket int64) string {
	b := strconv.FormatInt(bucket, 10)
	if l.prefix == "" {
		return key + ":" + b
	}
	return l.prefix + ":" + key + ":" + b
}
