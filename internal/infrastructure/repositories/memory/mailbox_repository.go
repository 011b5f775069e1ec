package memory

import (
	"context"
	"sync"

	"peerlink/internal/core/domain"
	"peerlink/internal/core/ports"
)

type listEntry struct {
	role    domain.Role
	payload []byte
}

// MemoryMailboxRepository is the volatile in-process backend. Its
// contents live for the lifetime of the process and vanish on restart.
// All mutation goes through the repository's own methods; nothing else
// may touch the maps.
type MemoryMailboxRepository struct {
	slots map[string][]byte
	lists map[string][]listEntry
	mu    sync.Mutex
}

func NewMemoryMailboxRepository() ports.MailboxRepository {
	return &MemoryMailboxRepository{
		slots: make(map[string][]byte),
		lists: make(map[string][]listEntry),
	}
}

func slotKey(kind domain.MessageKind, key string) string {
	return string(kind) + ":" + key
}

func (r *MemoryMailboxRepository) Put(ctx context.Context, kind domain.MessageKind, key string, role domain.Role, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy so a caller reusing its buffer cannot mutate a stored entry.
	buf := make([]byte, len(payload))
	copy(buf, payload)

	k := slotKey(kind, key)
	if kind == domain.KindCandidate {
		r.lists[k] = append(r.lists[k], listEntry{role: role, payload: buf})
		return nil
	}

	r.slots[k] = buf
	return nil
}

func (r *MemoryMailboxRepository) TakeOne(ctx context.Context, kind domain.MessageKind, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := slotKey(kind, key)
	payload, exists := r.slots[k]
	if !exists {
		return nil, nil
	}
	delete(r.slots, k)
	return payload, nil
}

func (r *MemoryMailboxRepository) TakeMany(ctx context.Context, kind domain.MessageKind, key string, excludeRole domain.Role) ([][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := slotKey(kind, key)
	entries := r.lists[k]
	if len(entries) == 0 {
		return nil, nil
	}

	var delivered [][]byte
	var kept []listEntry
	for _, e := range entries {
		if e.role == excludeRole {
			kept = append(kept, e)
		} else {
			delivered = append(delivered, e.payload)
		}
	}

	if len(kept) == 0 {
		delete(r.lists, k)
	} else {
		r.lists[k] = kept
	}
	return delivered, nil
}
