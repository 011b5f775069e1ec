package redis

import (
	"context"
	"fmt"
	"time"

	"peerlink/internal/core/domain"
	"peerlink/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisRoomRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisRoomRepository(client *redis.Client) ports.RoomRepository {
	return &RedisRoomRepository{
		client: client,
		prefix: "peerlink:room:",
	}
}

func (r *RedisRoomRepository) roomKey(id domain.RoomID) string {
	return r.prefix + string(id)
}

// Ensure upserts the room. HSETNX on created_at means concurrent calls
// for the same id agree on a single creation time; updated_at is always
// refreshed.
func (r *RedisRoomRepository) Ensure(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	key := r.roomKey(id)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	pipe := r.client.TxPipeline()
	pipe.HSetNX(ctx, key, "created_at", now)
	pipe.HSet(ctx, key, "updated_at", now)
	createdCmd := pipe.HGet(ctx, key, "created_at")
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to upsert room in Redis: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, createdCmd.Val())
	if err != nil {
		return nil, fmt.Errorf("failed to parse room created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, now)
	if err != nil {
		return nil, fmt.Errorf("failed to parse room updated_at: %w", err)
	}

	return &domain.Room{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt}, nil
}

func (r *RedisRoomRepository) Get(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	fields, err := r.client.HGetAll(ctx, r.roomKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room from Redis: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrRoomNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse room created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse room updated_at: %w", err)
	}

	return &domain.Room{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt}, nil
}
