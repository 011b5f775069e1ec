package domain

import "time"

type RoomID string
type AgentID string

// Room is a logical namespace under which a host/viewer pair rendezvous.
// It carries no negotiation payloads itself; those live in mailbox slots
// keyed by room and message kind.
type Room struct {
	ID        RoomID    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
