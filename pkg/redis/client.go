package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/glowday/api/config"
	"github.com/glowday/api/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps the redis connection used by the rate limiter. When redis is
// disabled the wrapper stays nil-backed and callers fall back to in-process
// state.
type Client struct {
	rdb *redis.Client
}

// NewClient connects and pings redis when enabled. A disabled configuration
// returns a usable client whose Enabled reports false.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.Database,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.GetLogger().Info("Redis connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
	)
	return &Client{rdb: rdb}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// CountRequest increments the request counter for a key, starting the window
// on first hit, and returns the running total.
func (c *Client) CountRequest(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}
