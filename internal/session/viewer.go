package session

import (
	"context"
	"fmt"

	"peerlink/internal/core/domain"
	"peerlink/pkg/poll"
)

// ViewerController runs the viewer side of a session: poll the room for
// a pending offer, answer it, then exchange candidates until connected.
type ViewerController struct {
	controller
}

func NewViewer(cfg Config) (*ViewerController, error) {
	if cfg.Engine == nil || cfg.API == nil {
		return nil, fmt.Errorf("session: engine and relay API are required")
	}
	return &ViewerController{controller: newController(cfg, domain.RoleViewer)}, nil
}

// Begin starts polling for the host's offer. It returns immediately;
// progress is reported through OnStateChange.
func (v *ViewerController) Begin(ctx context.Context) error {
	if v.State() != StateIdle {
		return fmt.Errorf("session: viewer already started")
	}

	v.cfg.Engine.OnCandidate(v.publishLocalCandidate)
	v.cfg.Engine.OnConnected(func() {
		v.setState(StateConnected, "peer transport connected")
	})
	v.cfg.Engine.OnFailure(v.fail)

	v.setState(StateWaitingOffer, "waiting for a pending offer")
	v.startOfferPoller()
	return nil
}

// startOfferPoller claims the room's pending offer. The offer slot is
// destructive-read, so the first viewer to poll wins it; later viewers
// keep seeing an empty slot.
func (v *ViewerController) startOfferPoller() {
	var p *poll.Poller
	p = poll.New(v.cfg.PollInterval, func(ctx context.Context) {
		offer, _, err := v.cfg.API.ConsumeOffer(ctx, v.cfg.Room)
		if err != nil {
			v.cfg.Logger.Debugw("offer poll failed", "room", v.cfg.Room, "error", err)
			return
		}
		if offer == nil || !v.active() {
			return
		}
		v.answer(ctx, offer)
		p.Stop()
	})
	v.addPoller(p)
}

// answer applies the claimed offer and publishes the local answer back
// to the host that posted it.
func (v *ViewerController) answer(ctx context.Context, offer *domain.Offer) {
	if err := v.cfg.Engine.SetRemoteDescription(offer.Description); err != nil {
		v.fail(fmt.Errorf("failed to apply offer: %w", err))
		return
	}

	desc, err := v.cfg.Engine.CreateAnswer(ctx)
	if err != nil {
		v.fail(fmt.Errorf("failed to create answer: %w", err))
		return
	}

	mode, err := v.cfg.API.PublishAnswer(ctx, v.cfg.Room, offer.HostID, desc)
	if err != nil {
		v.fail(fmt.Errorf("failed to publish answer: %w", err))
		return
	}
	v.setState(StateAnswerSent, fmt.Sprintf("answer published (%s)", mode))

	v.startCandidatePoller()
}
