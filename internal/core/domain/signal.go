package domain

import (
	"fmt"
	"time"
)

// Role identifies which side of the session an agent plays.
type Role string

const (
	RoleHost   Role = "host"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	return r == RoleHost || r == RoleViewer
}

// Other returns the opposite role of a two-party session.
func (r Role) Other() Role {
	if r == RoleHost {
		return RoleViewer
	}
	return RoleHost
}

// MessageKind is the mailbox slot family a payload belongs to.
type MessageKind string

const (
	KindOffer     MessageKind = "offer"
	KindAnswer    MessageKind = "answer"
	KindCandidate MessageKind = "candidate"
)

// BackendMode reports which mailbox backend served an operation.
type BackendMode string

const (
	ModeDurable  BackendMode = "durable"
	ModeVolatile BackendMode = "volatile"
)

// SessionDescription is an opaque negotiation payload. The relay never
// inspects the SDP beyond classifying it as offer or answer.
type SessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// Offer occupies the single pending offer slot of a room.
type Offer struct {
	RoomID      RoomID             `json:"room_id"`
	HostID      AgentID            `json:"host_id"`
	Description SessionDescription `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Answer occupies the pending answer slot keyed by (room, target host).
type Answer struct {
	RoomID      RoomID             `json:"room_id"`
	HostID      AgentID            `json:"host_id"`
	Description SessionDescription `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Candidate is an incremental connectivity-path descriptor. Candidates
// are idempotent to re-apply, so delivery is at-least-once.
type Candidate struct {
	Candidate     string `json:"candidate"`
	SDPMid        string `json:"sdp_mid"`
	SDPMLineIndex uint16 `json:"sdp_mline_index"`
}

// Key returns the composite identity used to deduplicate re-delivered
// candidates on the consuming side.
func (c Candidate) Key() string {
	return fmt.Sprintf("%d|%s|%s", c.SDPMLineIndex, c.SDPMid, c.Candidate)
}

// CandidateEntry is a candidate tagged with the role that posted it.
type CandidateEntry struct {
	RoomID    RoomID    `json:"room_id"`
	Role      Role      `json:"role"`
	Candidate Candidate `json:"candidate"`
	PostedAt  time.Time `json:"posted_at"`
}
