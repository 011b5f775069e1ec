package session

import (
	"context"
	"fmt"
	"sync"

	"peerlink/internal/core/domain"

	"github.com/pion/webrtc/v3"
)

// PionEngine is the production Engine backed by a pion PeerConnection.
type PionEngine struct {
	pc *webrtc.PeerConnection

	mu          sync.Mutex
	onCandidate func(domain.Candidate)
	closed      bool
}

// NewPionEngine creates a peer connection with the given configuration.
// Use DefaultICEConfiguration when a plain STUN setup is enough.
func NewPionEngine(config webrtc.Configuration) (*PionEngine, error) {
	pc, err := webrtc.NewPeerConnection(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create peer connection: %w", err)
	}

	e := &PionEngine{pc: pc}
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return // end of gathering
		}
		e.mu.Lock()
		fn := e.onCandidate
		e.mu.Unlock()
		if fn == nil {
			return
		}
		init := c.ToJSON()
		cand := domain.Candidate{Candidate: init.Candidate}
		if init.SDPMid != nil {
			cand.SDPMid = *init.SDPMid
		}
		if init.SDPMLineIndex != nil {
			cand.SDPMLineIndex = *init.SDPMLineIndex
		}
		fn(cand)
	})
	return e, nil
}

// DefaultICEConfiguration returns a configuration pointed at the public
// Google STUN server. Deployments behind symmetric NAT need a TURN
// server instead.
func DefaultICEConfiguration() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	}
}

// PeerConnection exposes the underlying connection so a host can attach
// its outgoing tracks before creating the offer.
func (e *PionEngine) PeerConnection() *webrtc.PeerConnection {
	return e.pc
}

func (e *PionEngine) CreateOffer(ctx context.Context) (domain.SessionDescription, error) {
	offer, err := e.pc.CreateOffer(nil)
	if err != nil {
		return domain.SessionDescription{}, fmt.Errorf("failed to create offer: %w", err)
	}
	if err := e.pc.SetLocalDescription(offer); err != nil {
		return domain.SessionDescription{}, fmt.Errorf("failed to set local description: %w", err)
	}
	return domain.SessionDescription{Type: offer.Type.String(), SDP: offer.SDP}, nil
}

func (e *PionEngine) CreateAnswer(ctx context.Context) (domain.SessionDescription, error) {
	answer, err := e.pc.CreateAnswer(nil)
	if err != nil {
		return domain.SessionDescription{}, fmt.Errorf("failed to create answer: %w", err)
	}
	if err := e.pc.SetLocalDescription(answer); err != nil {
		return domain.SessionDescription{}, fmt.Errorf("failed to set local description: %w", err)
	}
	return domain.SessionDescription{Type: answer.Type.String(), SDP: answer.SDP}, nil
}

func (e *PionEngine) SetRemoteDescription(desc domain.SessionDescription) error {
	sdpType := webrtc.NewSDPType(desc.Type)
	if err := e.pc.SetRemoteDescription(webrtc.SessionDescription{Type: sdpType, SDP: desc.SDP}); err != nil {
		return fmt.Errorf("failed to set remote description: %w", err)
	}
	return nil
}

func (e *PionEngine) AddCandidate(cand domain.Candidate) error {
	mid := cand.SDPMid
	idx := cand.SDPMLineIndex
	init := webrtc.ICECandidateInit{
		Candidate:     cand.Candidate,
		SDPMid:        &mid,
		SDPMLineIndex: &idx,
	}
	if err := e.pc.AddICECandidate(init); err != nil {
		return fmt.Errorf("failed to add remote candidate: %w", err)
	}
	return nil
}

func (e *PionEngine) OnCandidate(fn func(domain.Candidate)) {
	e.mu.Lock()
	e.onCandidate = fn
	e.mu.Unlock()
}

func (e *PionEngine) OnConnected(fn func()) {
	e.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		if state == webrtc.PeerConnectionStateConnected {
			fn()
		}
	})
}

func (e *PionEngine) OnFailure(fn func(error)) {
	e.pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		if state == webrtc.ICEConnectionStateFailed {
			fn(fmt.Errorf("peer transport failed"))
		}
	})
}

func (e *PionEngine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()
	return e.pc.Close()
}
