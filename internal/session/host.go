package session

import (
	"context"
	"fmt"

	"peerlink/internal/core/domain"
	"peerlink/pkg/poll"
)

// HostController runs the host side of a session: acquire local media,
// publish an offer, then poll for the viewer's answer and candidates.
type HostController struct {
	controller
}

// NewHost builds a host controller. cfg.Media is required; a host
// without a capture pipeline has nothing to share.
func NewHost(cfg Config) (*HostController, error) {
	if cfg.Engine == nil || cfg.API == nil {
		return nil, fmt.Errorf("session: engine and relay API are required")
	}
	if cfg.Media == nil {
		return nil, fmt.Errorf("session: host requires a media source")
	}
	return &HostController{controller: newController(cfg, domain.RoleHost)}, nil
}

// Start drives the host through media acquisition and offer publication,
// then hands off to the polling loops. Start returns once the offer is
// accepted by the relay; connection establishment continues in the
// background and is reported through OnStateChange.
func (h *HostController) Start(ctx context.Context) error {
	if h.State() != StateIdle {
		return fmt.Errorf("session: host already started")
	}

	if err := h.cfg.Media.Acquire(ctx); err != nil {
		err = fmt.Errorf("failed to acquire local media: %w", err)
		h.fail(err)
		return err
	}
	h.setState(StateLocalMediaReady, "local media acquired")

	h.cfg.Engine.OnCandidate(h.publishLocalCandidate)
	h.cfg.Engine.OnConnected(func() {
		h.setState(StateConnected, "peer transport connected")
	})
	h.cfg.Engine.OnFailure(h.fail)

	desc, err := h.cfg.Engine.CreateOffer(ctx)
	if err != nil {
		err = fmt.Errorf("failed to create offer: %w", err)
		h.fail(err)
		return err
	}

	mode, err := h.cfg.API.PublishOffer(ctx, h.cfg.Room, h.cfg.AgentID, desc)
	if err != nil {
		err = fmt.Errorf("failed to publish offer: %w", err)
		h.fail(err)
		return err
	}
	h.setState(StateOfferSent, fmt.Sprintf("offer published (%s)", mode))

	h.startAnswerPoller()
	h.startCandidatePoller()
	return nil
}

// startAnswerPoller waits for the viewer's answer. The answer slot is
// destructive-read and keyed to this host, so the first successful poll
// wins and the poller stops itself.
func (h *HostController) startAnswerPoller() {
	var p *poll.Poller
	p = poll.New(h.cfg.PollInterval, func(ctx context.Context) {
		answer, _, err := h.cfg.API.ConsumeAnswer(ctx, h.cfg.Room, h.cfg.AgentID)
		if err != nil {
			h.cfg.Logger.Debugw("answer poll failed", "room", h.cfg.Room, "error", err)
			return
		}
		if answer == nil || !h.active() {
			return
		}
		if err := h.cfg.Engine.SetRemoteDescription(answer.Description); err != nil {
			h.fail(fmt.Errorf("failed to apply answer: %w", err))
			return
		}
		h.setState(StateAnswerReceived, "answer applied")
		p.Stop()
	})
	h.addPoller(p)
}
