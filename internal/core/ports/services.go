package ports

import (
	"context"

	"peerlink/internal/core/domain"
)

type RoomService interface {
	// Ensure upserts a room. With an empty id it generates a fresh short
	// identifier; with an existing id it only refreshes the timestamp.
	Ensure(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	Get(ctx context.Context, id domain.RoomID) (*domain.Room, error)
}

// RelayService is the signaling boundary the browser-side agents call.
// Consume operations return nil when nothing is pending; absence is not
// an error.
type RelayService interface {
	PublishOffer(ctx context.Context, room domain.RoomID, host domain.AgentID, desc domain.SessionDescription) (domain.BackendMode, error)
	ConsumeOffer(ctx context.Context, room domain.RoomID) (*domain.Offer, domain.BackendMode, error)

	PublishAnswer(ctx context.Context, room domain.RoomID, host domain.AgentID, desc domain.SessionDescription) (domain.BackendMode, error)
	ConsumeAnswer(ctx context.Context, room domain.RoomID, host domain.AgentID) (*domain.Answer, domain.BackendMode, error)

	PublishCandidate(ctx context.Context, room domain.RoomID, role domain.Role, cand domain.Candidate) (domain.BackendMode, error)
	ConsumeCandidates(ctx context.Context, room domain.RoomID, role domain.Role) ([]domain.Candidate, domain.BackendMode, error)
}

// MetricsRecorder receives relay traffic counters. Implementations must
// be safe for concurrent use.
type MetricsRecorder interface {
	RecordPublish(kind domain.MessageKind, mode domain.BackendMode)
	RecordConsume(kind domain.MessageKind, mode domain.BackendMode, delivered int)
	RecordFallback(op string)
	RecordRoomEnsured()
}
