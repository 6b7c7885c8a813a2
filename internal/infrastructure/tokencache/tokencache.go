// Package tokencache guarda o bearerToken Sankhya por usuário com TTL.
// Duas implementações: Redis (compartilhada entre instâncias) e memória
// (fallback quando REDIS_ADDR não está configurado).
package tokencache

import (
	"context"
	"time"
)

// Cache porto consumido pelo client Sankhya.
type Cache interface {
	// Get devolve o token do usuário, ou "" se ausente/expirado.
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, token string, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}
