package tokencache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Cache = (*RedisCache)(nil)

// RedisCache cache de tokens sobre Redis, um key por usuário.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache constrói o cache com um client já conectado.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func tokenKey(userID string) string {
	return fmt.Sprintf("sankhya:token:%s", userID)
}

// Get devolve o token do usuário ("" quando ausente ou expirado).
func (c *RedisCache) Get(ctx context.Context, userID string) (string, error) {
	val, err := c.client.Get(ctx, tokenKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return val, nil
}

// Set grava o token com TTL.
func (c *RedisCache) Set(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, tokenKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// Invalidate descarta o token do usuário (após 401/403 do upstream).
func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, tokenKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del token: %w", err)
	}
	return nil
}
