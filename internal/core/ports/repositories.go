package ports

import (
	"context"

	"peerlink/internal/core/domain"
)

// MailboxRepository is a single mailbox backend (durable or volatile).
// Slots hold opaque payloads keyed by message kind plus an entity key;
// candidate-kind puts append to an ordered list instead of overwriting.
type MailboxRepository interface {
	// Put overwrites the slot for (kind, key), or appends when the kind
	// is list-valued. role tags list entries with the posting agent's
	// role; it is ignored for single-slot kinds.
	Put(ctx context.Context, kind domain.MessageKind, key string, role domain.Role, payload []byte) error

	// TakeOne atomically removes and returns the slot payload. Returns
	// (nil, nil) when the slot is absent. Two concurrent calls for the
	// same key must not both receive the payload.
	TakeOne(ctx context.Context, kind domain.MessageKind, key string) ([]byte, error)

	// TakeMany removes and returns, in arrival order, every list entry
	// not posted by excludeRole. Entries posted by excludeRole stay.
	TakeMany(ctx context.Context, kind domain.MessageKind, key string, excludeRole domain.Role) ([][]byte, error)
}

// Mailbox is the dual-backend store the relay service talks to. Every
// operation additionally reports which backend served it so degraded
// mode can be surfaced without failing the request.
type Mailbox interface {
	Put(ctx context.Context, kind domain.MessageKind, key string, role domain.Role, payload []byte) (domain.BackendMode, error)
	TakeOne(ctx context.Context, kind domain.MessageKind, key string) ([]byte, domain.BackendMode, error)
	TakeMany(ctx context.Context, kind domain.MessageKind, key string, excludeRole domain.Role) ([][]byte, domain.BackendMode, error)
}

// RoomRepository tracks which rooms exist. Durable storage only; a
// backend failure here is surfaced to the caller, not absorbed.
type RoomRepository interface {
	// Ensure creates the room if absent, otherwise only refreshes its
	// updated-at timestamp. Concurrent calls for the same id must agree
	// on a single creation time.
	Ensure(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	Get(ctx context.Context, id domain.RoomID) (*domain.Room, error)
}
