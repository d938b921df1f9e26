package location

import (
	"context"
	"sync"
	"time"
)

// Provider is the platform location source. The host application supplies
// an implementation; the engine never captures position itself.
type Provider interface {
	// Current returns the most recent position fix. Implementations return
	// ErrLocationUnavailable when no fix can be obtained; callers degrade
	// rather than block on it.
	Current(ctx context.Context) (*Sample, error)

	// Watch delivers position fixes on the returned channel until ctx is
	// cancelled. The channel is closed by the provider on cancellation.
	Watch(ctx context.Context) (<-chan Sample, error)
}

// Pusher receives externally supplied position fixes.
type Pusher interface {
	Push(sample Sample)
}

// PushProvider is a Provider fed by pushed fixes, for hosts that post
// positions over the transport instead of exposing a native stream.
type PushProvider struct {
	maxAge time.Duration

	mu       sync.Mutex
	last     *Sample
	watchers map[chan Sample]struct{}
}

// NewPushProvider creates a push-fed provider. maxAge bounds how stale a
// fix Current may return; zero means any cached fix is acceptable.
func NewPushProvider(maxAge time.Duration) *PushProvider {
	return &PushProvider{
		maxAge:   maxAge,
		watchers: make(map[chan Sample]struct{}),
	}
}

// Push records a fix and fans it out to watchers. Slow watchers drop
// samples rather than block the caller.
func (p *PushProvider) Push(sample Sample) {
	if !sample.Valid() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	s := sample
	p.last = &s
	for ch := range p.watchers {
		select {
		case ch <- sample:
		default:
		}
	}
}

// Current returns the most recently pushed fix, or ErrLocationUnavailable
// when nothing fresh enough has been pushed.
func (p *PushProvider) Current(_ context.Context) (*Sample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last == nil {
		return nil, ErrLocationUnavailable
	}
	if p.maxAge > 0 && time.Since(p.last.Timestamp) > p.maxAge {
		return nil, ErrLocationUnavailable
	}
	s := *p.last
	return &s, nil
}

// Watch delivers pushed fixes until ctx is cancelled.
func (p *PushProvider) Watch(ctx context.Context) (<-chan Sample, error) {
	ch := make(chan Sample, 16)
	p.mu.Lock()
	p.watchers[ch] = struct{}{}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		delete(p.watchers, ch)
		p.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// Ensure PushProvider implements Provider interface.
var _ Provider = (*PushProvider)(nil)
