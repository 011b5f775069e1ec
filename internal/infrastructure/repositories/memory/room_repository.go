package memory

import (
	"context"
	"sync"
	"time"

	"peerlink/internal/core/domain"
	"peerlink/internal/core/ports"
)

// MemoryRoomRepository keeps the room registry in process memory. Used
// for tests and single-node development runs; production deployments
// point the registry at Redis.
type MemoryRoomRepository struct {
	rooms map[domain.RoomID]*domain.Room
	mu    sync.Mutex
}

func NewMemoryRoomRepository() ports.RoomRepository {
	return &MemoryRoomRepository{
		rooms: make(map[domain.RoomID]*domain.Room),
	}
}

func (r *MemoryRoomRepository) Ensure(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if room, exists := r.rooms[id]; exists {
		room.UpdatedAt = now
		cp := *room
		return &cp, nil
	}

	room := &domain.Room{ID: id, CreatedAt: now, UpdatedAt: now}
	r.rooms[id] = room
	cp := *room
	return &cp, nil
}

func (r *MemoryRoomRepository) Get(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[id]
	if !exists {
		return nil, domain.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}
