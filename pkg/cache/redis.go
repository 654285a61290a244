package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/libvisit-api/pkg/config"
)

const keyPrefix = "libvisit"

// NewRedis returns a configured Redis client, failing fast when the server is unreachable.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Key builds a namespaced cache key such as "libvisit:analytics:2024-01-01:2024-01-31".
func Key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}
