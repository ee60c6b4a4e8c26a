// Package cache keeps bearer-token lookups in Redis so hot requests skip the
// sessions table.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	applog "storelaunch/internal/log"
)

const keyPrefix = "session:"

type Sessions struct {
	rdb *redis.Client
}

func NewSessions(rdb *redis.Client) *Sessions { return &Sessions{rdb: rdb} }

// Dial connects to addr and pings it once.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (s *Sessions) Get(ctx context.Context, token string) (string, bool) {
	uid, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if err != nil {
		if err != redis.Nil {
			applog.L().Warn("cache.session.get", zap.Error(err))
		}
		return "", false
	}
	return uid, uid != ""
}

func (s *Sessions) Set(ctx context.Context, token, userID string, ttl time.Duration) {
	if err := s.rdb.Set(ctx, keyPrefix+token, userID, ttl).Err(); err != nil {
		applog.L().Warn("cache.session.set", zap.Error(err))
	}
}

func (s *Sessions) Delete(ctx context.Context, tokens ...string) {
	if len(tokens) == 0 {
		return
	}
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = keyPrefix + t
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		applog.L().Warn("cache.session.del", zap.Error(err))
	}
}
