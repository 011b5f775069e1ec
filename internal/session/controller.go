package session

import (
	"context"
	"sync"
	"time"

	"peerlink/internal/core/domain"
	"peerlink/pkg/poll"

	"go.uber.org/zap"
)

// State is the coarse lifecycle phase a session controller is in. State
// changes are surfaced through the OnStateChange callback so a UI can
// render progress without polling the controller.
type State string

const (
	StateIdle            State = "idle"
	StateLocalMediaReady State = "local-media-ready"
	StateOfferSent       State = "offer-sent"
	StateWaitingOffer    State = "waiting-offer"
	StateAnswerReceived  State = "answer-received"
	StateAnswerSent      State = "answer-sent"
	StateConnected       State = "connected"
	StateClosed          State = "closed"
	StateError           State = "error"
)

// DefaultPollInterval paces the mailbox polling loops. The interval is
// fixed; there is no backoff, the relay is expected to be close.
const DefaultPollInterval = 1500 * time.Millisecond

// Config carries the collaborators a controller needs. Engine and API
// are required; Media is required for hosts only.
type Config struct {
	Room    domain.RoomID
	AgentID domain.AgentID
	Engine  Engine
	API     RelayAPI
	Media   MediaSource

	// PollInterval defaults to DefaultPollInterval when zero.
	PollInterval time.Duration

	Logger *zap.SugaredLogger

	// OnStateChange, if set, is invoked after every state transition
	// with the new state and a short human-readable note.
	OnStateChange func(State, string)
}

func (c *Config) defaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
}

// controller holds the state machine shared by both roles. Terminal
// states absorb every later event: results that arrive after Close or
// a failure are discarded, never applied.
type controller struct {
	cfg  Config
	role domain.Role

	mu      sync.Mutex
	state   State
	pollers []*poll.Poller
	seen    *candidateSet
	closed  bool
}

func newController(cfg Config, role domain.Role) controller {
	cfg.defaults()
	return controller{
		cfg:   cfg,
		role:  role,
		state: StateIdle,
		seen:  newCandidateSet(),
	}
}

// State returns the current lifecycle phase.
func (c *controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// setState transitions unless the controller already reached a terminal
// state. It reports whether the transition was applied.
func (c *controller) setState(next State, note string) bool {
	c.mu.Lock()
	if c.state == StateClosed || c.state == StateError {
		c.mu.Unlock()
		return false
	}
	c.state = next
	cb := c.cfg.OnStateChange
	c.mu.Unlock()

	c.cfg.Logger.Debugw("session state changed", "room", c.cfg.Room, "role", c.role, "state", next, "note", note)
	if cb != nil {
		cb(next, note)
	}
	return true
}

// active reports whether the controller should still apply poll results.
func (c *controller) active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateClosed && c.state != StateError
}

func (c *controller) addPoller(p *poll.Poller) {
	c.mu.Lock()
	c.pollers = append(c.pollers, p)
	alreadyClosed := c.closed
	c.mu.Unlock()

	if alreadyClosed {
		p.Stop()
		return
	}
	p.Start()
}

// fail moves the controller to the error state and stops polling. Like
// Close it is absorbing; the first failure wins.
func (c *controller) fail(err error) {
	c.mu.Lock()
	if c.state == StateClosed || c.state == StateError {
		c.mu.Unlock()
		return
	}
	c.state = StateError
	pollers := c.pollers
	cb := c.cfg.OnStateChange
	c.mu.Unlock()

	c.cfg.Logger.Errorw("session failed", "room", c.cfg.Room, "role", c.role, "error", err)
	for _, p := range pollers {
		p.Stop()
	}
	if cb != nil {
		cb(StateError, err.Error())
	}
}

// Close tears the session down: polling stops, the engine connection is
// released, and for hosts the media source is released. Close is
// idempotent and safe to call from any state, including after an error.
func (c *controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	wasError := c.state == StateError
	if !wasError {
		c.state = StateClosed
	}
	pollers := c.pollers
	cb := c.cfg.OnStateChange
	c.mu.Unlock()

	for _, p := range pollers {
		p.Stop()
	}
	if err := c.cfg.Engine.Close(); err != nil {
		c.cfg.Logger.Warnw("engine close failed", "room", c.cfg.Room, "error", err)
	}
	if c.cfg.Media != nil {
		c.cfg.Media.Release()
	}
	if !wasError && cb != nil {
		cb(StateClosed, "session closed")
	}
}

// applyCandidates feeds freshly drained candidates to the engine,
// skipping any the deduplication set has already seen. Relay delivery
// is at-least-once, so re-deliveries are expected occasionally.
func (c *controller) applyCandidates(cands []domain.Candidate) {
	for _, cand := range cands {
		if !c.active() {
			return
		}
		if !c.seen.Add(cand) {
			continue
		}
		if err := c.cfg.Engine.AddCandidate(cand); err != nil {
			// A single malformed candidate is not fatal; the engine
			// can still connect over the remaining paths.
			c.cfg.Logger.Warnw("failed to apply remote candidate", "room", c.cfg.Room, "error", err)
		}
	}
}

// publishLocalCandidate pushes a locally gathered candidate to the
// relay. Network errors are logged and dropped; trickle candidates are
// advisory and the next gathering event will try again.
func (c *controller) publishLocalCandidate(cand domain.Candidate) {
	if !c.active() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.cfg.API.PublishCandidate(ctx, c.cfg.Room, c.role, cand); err != nil {
		c.cfg.Logger.Warnw("failed to publish local candidate", "room", c.cfg.Room, "role", c.role, "error", err)
	}
}

// startCandidatePoller begins draining the other side's candidates.
func (c *controller) startCandidatePoller() {
	p := poll.New(c.cfg.PollInterval, func(ctx context.Context) {
		cands, _, err := c.cfg.API.ConsumeCandidates(ctx, c.cfg.Room, c.role)
		if err != nil {
			// Missed poll; the candidates stay queued for the next tick.
			c.cfg.Logger.Debugw("candidate poll failed", "room", c.cfg.Room, "error", err)
			return
		}
		c.applyCandidates(cands)
	})
	c.addPoller(p)
}
