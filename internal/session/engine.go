package session

import (
	"context"

	"peerlink/internal/core/domain"
)

// Engine abstracts the peer-connection machinery the controllers drive.
// The production implementation wraps pion/webrtc; tests substitute a
// scripted fake.
type Engine interface {
	// CreateOffer produces the local offer and starts candidate gathering.
	CreateOffer(ctx context.Context) (domain.SessionDescription, error)
	// CreateAnswer produces the local answer to a previously applied
	// remote offer and starts candidate gathering.
	CreateAnswer(ctx context.Context) (domain.SessionDescription, error)
	// SetRemoteDescription applies the remote side's offer or answer.
	SetRemoteDescription(desc domain.SessionDescription) error
	// AddCandidate applies a remote connectivity candidate. Re-applying
	// a candidate is harmless.
	AddCandidate(cand domain.Candidate) error
	// OnCandidate registers the callback invoked for each locally
	// gathered candidate. Must be set before CreateOffer/CreateAnswer.
	OnCandidate(fn func(domain.Candidate))
	// OnConnected registers the callback invoked once the transport
	// reaches the connected state.
	OnConnected(fn func())
	// OnFailure registers the callback invoked when the transport fails.
	OnFailure(fn func(error))
	// Close releases the underlying connection. Idempotent.
	Close() error
}

// MediaSource is the capture pipeline a host must hold open for the
// duration of a session. Acquire failures abort session startup.
type MediaSource interface {
	Acquire(ctx context.Context) error
	Release()
}

// RelayAPI is the slice of the relay HTTP client the controllers use.
type RelayAPI interface {
	PublishOffer(ctx context.Context, room domain.RoomID, host domain.AgentID, desc domain.SessionDescription) (domain.BackendMode, error)
	ConsumeOffer(ctx context.Context, room domain.RoomID) (*domain.Offer, domain.BackendMode, error)
	PublishAnswer(ctx context.Context, room domain.RoomID, host domain.AgentID, desc domain.SessionDescription) (domain.BackendMode, error)
	ConsumeAnswer(ctx context.Context, room domain.RoomID, host domain.AgentID) (*domain.Answer, domain.BackendMode, error)
	PublishCandidate(ctx context.Context, room domain.RoomID, role domain.Role, cand domain.Candidate) (domain.BackendMode, error)
	ConsumeCandidates(ctx context.Context, room domain.RoomID, role domain.Role) ([]domain.Candidate, domain.BackendMode, error)
}
