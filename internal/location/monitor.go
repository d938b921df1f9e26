package location

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MonitorConfig holds configuration for the location monitor.
type MonitorConfig struct {
	// PollInterval is used when the provider stream has to be polled.
	// Default: 30 seconds.
	PollInterval time.Duration
}

// DefaultMonitorConfig returns the default monitor configuration.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{PollInterval: 30 * time.Second}
}

// Monitor consumes the provider's position stream and fans samples out to
// registered handlers. Handlers run on the monitor goroutine; samples from
// a single provider are delivered in submission order.
type Monitor struct {
	provider Provider
	config   MonitorConfig
	logger   zerolog.Logger

	mu       sync.Mutex
	handlers []func(Sample)
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewMonitor creates a location monitor for the given provider.
func NewMonitor(provider Provider, cfg MonitorConfig, logger zerolog.Logger) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultMonitorConfig().PollInterval
	}
	return &Monitor{
		provider: provider,
		config:   cfg,
		logger:   logger,
	}
}

// OnSample registers a handler invoked for every incoming sample.
// Must be called before Start.
func (m *Monitor) OnSample(fn func(Sample)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, fn)
}

// Start begins consuming the provider stream. It returns immediately;
// Stop cancels the stream and waits for the monitor goroutine to exit.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done != nil {
		return nil // already started
	}

	ctx, cancel := context.WithCancel(ctx)
	stream, err := m.provider.Watch(ctx)
	if err != nil {
		cancel()
		return err
	}

	m.cancel = cancel
	m.done = make(chan struct{})

	go m.run(ctx, stream, m.done)
	return nil
}

// Stop cancels the stream and waits for the monitor goroutine to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context, stream <-chan Sample, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case sample, ok := <-stream:
			if !ok {
				m.logger.Debug().Msg("location stream closed")
				return
			}
			if !sample.Valid() {
				m.logger.Warn().
					Float64("lat", sample.Lat).
					Float64("lon", sample.Lon).
					Msg("dropping invalid location sample")
				continue
			}
			m.mu.Lock()
			handlers := m.handlers
			m.mu.Unlock()
			for _, fn := range handlers {
				fn(sample)
			}
		}
	}
}

// Poller adapts a pull-only provider into a Watch stream by sampling
// Current at a fixed interval. The returned channel closes when ctx is
// cancelled, so no ticker leaks across session boundaries.
type Poller struct {
	Source   Provider
	Interval time.Duration
	Logger   zerolog.Logger
}

// Current delegates to the underlying provider.
func (p *Poller) Current(ctx context.Context) (*Sample, error) {
	return p.Source.Current(ctx)
}

// Watch emits the provider's current position every Interval.
func (p *Poller) Watch(ctx context.Context) (<-chan Sample, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultMonitorConfig().PollInterval
	}

	out := make(chan Sample)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sample, err := p.Source.Current(ctx)
				if err != nil {
					p.Logger.Debug().Err(err).Msg("location poll failed")
					continue
				}
				select {
				case out <- *sample:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
