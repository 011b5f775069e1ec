package testutils

import (
	"context"
	"fmt"
	"sync"

	"peerlink/internal/core/domain"
)

// FakeEngine is a scripted negotiation engine for tests that exercise
// the session controllers without real peer connections. It can emit
// local candidates on demand and report connection events.
type FakeEngine struct {
	Name string

	mu          sync.Mutex
	remoteDescs []domain.SessionDescription
	added       []domain.Candidate
	closes      int

	onCandidate func(domain.Candidate)
	onConnected func()
	onFailure   func(error)
}

func NewFakeEngine(name string) *FakeEngine {
	return &FakeEngine{Name: name}
}

func (f *FakeEngine) CreateOffer(ctx context.Context) (domain.SessionDescription, error) {
	return domain.SessionDescription{Type: "offer", SDP: "v=0 offer-from-" + f.Name}, nil
}

func (f *FakeEngine) CreateAnswer(ctx context.Context) (domain.SessionDescription, error) {
	return domain.SessionDescription{Type: "answer", SDP: "v=0 answer-from-" + f.Name}, nil
}

func (f *FakeEngine) SetRemoteDescription(desc domain.SessionDescription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remoteDescs = append(f.remoteDescs, desc)
	return nil
}

func (f *FakeEngine) AddCandidate(cand domain.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, cand)
	return nil
}

func (f *FakeEngine) OnCandidate(fn func(domain.Candidate)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onCandidate = fn
}

func (f *FakeEngine) OnConnected(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onConnected = fn
}

func (f *FakeEngine) OnFailure(fn func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFailure = fn
}

func (f *FakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

// EmitCandidate simulates the engine gathering a local candidate.
func (f *FakeEngine) EmitCandidate(n int) {
	f.mu.Lock()
	fn := f.onCandidate
	f.mu.Unlock()
	if fn != nil {
		fn(domain.Candidate{
			Candidate: fmt.Sprintf("candidate:%d 1 udp 2130706431 10.0.0.%d 5000 typ host", n, n),
			SDPMid:    "0",
		})
	}
}

// EmitConnected simulates the transport reaching the connected state.
func (f *FakeEngine) EmitConnected() {
	f.mu.Lock()
	fn := f.onConnected
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// RemoteDescriptions returns a copy of every applied remote description.
func (f *FakeEngine) RemoteDescriptions() []domain.SessionDescription {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.SessionDescription, len(f.remoteDescs))
	copy(out, f.remoteDescs)
	return out
}

// AddedCandidates returns a copy of every applied remote candidate.
func (f *FakeEngine) AddedCandidates() []domain.Candidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Candidate, len(f.added))
	copy(out, f.added)
	return out
}

// Closes reports how many times Close was called.
func (f *FakeEngine) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}
