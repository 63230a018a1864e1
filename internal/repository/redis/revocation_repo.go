package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrRevokeFailed     = errors.New("token revoke failed")
)

const RevokedTokenPrefix = "login:token:revoked"

// TokenRevocationRepository 退出登录后把 token 的 jti 记入黑名单，保留到 token 过期为止
type TokenRevocationRepository struct {
	RDB *redis.Client
}

func (r *TokenRevocationRepository) key(jti string) string {
	return fmt.Sprintf("%s:%s", RevokedTokenPrefix, jti)
}

func (r *TokenRevocationRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// 已经过期，无需记录
		return nil
	}
	if err := r.RDB.Set(ctx, r.key(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRevokeFailed, err)
	}
	return nil
}

func (r *TokenRevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.RDB.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}
