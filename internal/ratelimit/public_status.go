package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/routewise/routewise/internal/config"
)

const keyPublicStatus = "public:status:ip:%s"

// PublicStatusLimiter throttles the unauthenticated status endpoint per
// client IP. Disabled when redis is not configured.
type PublicStatusLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewPublicStatusLimiter(cfg config.Config) *PublicStatusLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &PublicStatusLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &PublicStatusLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    2,
		burst:   10,
	}
}

func (l *PublicStatusLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *PublicStatusLimiter) Allow(ctx context.Context, clientIP string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyPublicStatus, strings.TrimSpace(clientIP)), l.rate, l.burst)
}
