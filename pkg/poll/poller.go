package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Poller invokes a function at a fixed interval until stopped. A tick
// that fires while the previous invocation is still running is dropped,
// never queued, so a slow round trip cannot pile up concurrent fetches
// for the same mailbox key.
type Poller struct {
	interval time.Duration
	fn       func(ctx context.Context)

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	inflight atomic.Bool
	wg       sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a poller that calls fn every interval. fn receives a
// context that is cancelled when the poller stops.
func New(interval time.Duration, fn func(ctx context.Context)) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		interval: interval,
		fn:       fn,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins ticking. The first invocation fires immediately rather
// than one interval in. Start is idempotent.
func (p *Poller) Start() {
	p.startOnce.Do(func() {
		go p.loop()
	})
}

func (p *Poller) loop() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.run()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.run()
		}
	}
}

func (p *Poller) run() {
	// Drop the tick if the previous invocation is still in flight.
	if !p.inflight.CompareAndSwap(false, true) {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inflight.Store(false)
		p.fn(p.ctx)
	}()
}

// Stop cancels the timer synchronously. An invocation already in flight
// is allowed to finish against a cancelled context; callers are expected
// to discard its result. Stop is idempotent and safe from any state.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.startOnce.Do(func() { close(p.done) }) // never started
		<-p.done
	})
}

// Wait blocks until the in-flight invocation, if any, has returned.
// Mainly useful in tests and teardown paths that need quiescence.
func (p *Poller) Wait() {
	p.wg.Wait()
}
