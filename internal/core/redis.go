// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/medassist/internal/config"
)

const redisPingTimeout = 5 * time.Second

// Redis is optional. A nil *Redis means no URL was configured; the rate
// limiter then runs on its in-process fallback. All methods accept a nil
// receiver.
type Redis struct {
	Client *redis.Client
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.ConnMaxIdleTime = 5 * time.Minute

	r := &Redis{Client: redis.NewClient(opts)}
	if err := r.Ping(ctx); err != nil {
		_ = r.Close() //nolint:errcheck // already failing
		return nil, err
	}

	return r, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if r == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	return r.Client.Close()
}

func (r *Redis) PoolStats() *redis.PoolStats {
	if r == nil {
		return nil
	}
	return r.Client.PoolStats()
}

// ClientOrNil returns the client, or nil when redis is not configured.
func (r *Redis) ClientOrNil() *redis.Client {
	if r == nil {
		return nil
	}
	return r.Client
}
