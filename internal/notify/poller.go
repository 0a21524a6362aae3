// Package notify polls the unread notification count.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const DefaultInterval = 30 * time.Second

type CountFunc func(ctx context.Context) (int64, error)

// Poller issues a count request on every tick without waiting for the
// previous one. Requests may overlap and nothing orders their results: the
// stored count is whichever response resolved last.
type Poller struct {
	fetch    CountFunc
	interval time.Duration
	log      *slog.Logger
	onUpdate func(int64)

	mu    sync.RWMutex
	count int64
	known bool

	// updateMu orders store-then-notify so onUpdate sees values in the
	// same order Count does.
	updateMu sync.Mutex

	wg sync.WaitGroup
}

type Option func(*Poller)

func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.log = l }
}

// WithUpdateFunc is called after each successful response, from the
// goroutine that received it. Calls never run concurrently, and the value of
// the last call always equals Count.
func WithUpdateFunc(fn func(int64)) Option {
	return func(p *Poller) { p.onUpdate = fn }
}

func NewPoller(fetch CountFunc, interval time.Duration, opts ...Option) (*Poller, error) {
	if fetch == nil {
		return nil, fmt.Errorf("count func is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be > 0")
	}
	p := &Poller{fetch: fetch, interval: interval, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Count returns the last resolved value and whether any request succeeded.
func (p *Poller) Count() (int64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.count, p.known
}

// Poll starts one request and returns immediately.
func (p *Poller) Poll(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		n, err := p.fetch(ctx)
		if err != nil {
			p.log.Debug("notification count poll failed", "error", err)
			return
		}
		p.updateMu.Lock()
		defer p.updateMu.Unlock()
		p.mu.Lock()
		p.count, p.known = n, true
		p.mu.Unlock()
		if p.onUpdate != nil {
			p.onUpdate(n)
		}
	}()
}

// Run polls once immediately, then on every tick until ctx is done. It
// waits for requests still in flight before returning.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Wait blocks until every started request has resolved.
func (p *Poller) Wait() {
	p.wg.Wait()
}
