package redis

import (
	"context"
	"fmt"
	"time"

	"peerlink/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient creates a new Redis client with connection pooling.
// The initial ping is retried so that a relay starting alongside its
// Redis container does not die on the first connection refused.
func NewRedisClient(address, password string, db, poolSize, connectRetries int, dialTimeout time.Duration, logger *zap.SugaredLogger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         address,
		Password:     password,
		DB:           db,
		PoolSize:     poolSize,
		MinIdleConns: 5,
		DialTimeout:  dialTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = connectRetries

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout*time.Duration(connectRetries+1))
	defer cancel()

	err := retry.Retry(ctx, retryCfg, func() error {
		pingCtx, pingCancel := context.WithTimeout(ctx, dialTimeout)
		defer pingCancel()
		return client.Ping(pingCtx).Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger != nil {
		logger.Infow("connected to Redis",
			"address", address,
			"db", db,
			"pool_size", poolSize,
		)
	}

	return client, nil
}

// CloseRedisClient closes the Redis client connection
func CloseRedisClient(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
