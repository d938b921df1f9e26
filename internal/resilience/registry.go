package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ChannelHealth represents the health status of a delivery channel.
type ChannelHealth struct {
	// Name is the channel identifier (sms, call, push).
	Name string

	// CircuitState is the current circuit breaker state.
	CircuitState gobreaker.State

	// Counts contains circuit breaker statistics.
	Counts gobreaker.Counts

	// LastSuccessAt is the timestamp of the last successful delivery.
	LastSuccessAt *time.Time

	// LastFailureAt is the timestamp of the last failed delivery.
	LastFailureAt *time.Time

	// LastError is the most recent error message, if any.
	LastError string
}

// IsHealthy returns true if the channel is considered healthy.
func (h *ChannelHealth) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// IsDegraded returns true if the channel is in a degraded state (half-open).
func (h *ChannelHealth) IsDegraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// IsUnhealthy returns true if the channel is unhealthy (circuit open).
func (h *ChannelHealth) IsUnhealthy() bool {
	return h.CircuitState == gobreaker.StateOpen
}

// Registry tracks delivery channels and their health status. The readiness
// endpoint reports it so operators can see a dead SMS gateway before a
// user's escalation does.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*registeredChannel
}

type registeredChannel struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates a new channel registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]*registeredChannel),
	}
}

// Register adds a channel client to the registry.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[name] = &registeredChannel{
		client: client,
	}
}

// Unregister removes a channel from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, name)
}

// RecordSuccess records a successful delivery for a channel.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.channels[name]; ok {
		now := time.Now()
		c.lastSuccessAt = &now
	}
}

// RecordFailure records a failed delivery for a channel.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.channels[name]; ok {
		now := time.Now()
		c.lastFailureAt = &now
		if err != nil {
			c.lastError = err.Error()
		}
	}
}

// GetHealth returns the health status of a specific channel.
func (r *Registry) GetHealth(name string) *ChannelHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.channels[name]
	if !ok {
		return nil
	}

	return &ChannelHealth{
		Name:          name,
		CircuitState:  c.client.CircuitBreakerState(),
		Counts:        c.client.CircuitBreakerCounts(),
		LastSuccessAt: c.lastSuccessAt,
		LastFailureAt: c.lastFailureAt,
		LastError:     c.lastError,
	}
}

// GetAllHealth returns the health status of all registered channels.
func (r *Registry) GetAllHealth() []*ChannelHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*ChannelHealth, 0, len(r.channels))
	for name, c := range r.channels {
		health = append(health, &ChannelHealth{
			Name:          name,
			CircuitState:  c.client.CircuitBreakerState(),
			Counts:        c.client.CircuitBreakerCounts(),
			LastSuccessAt: c.lastSuccessAt,
			LastFailureAt: c.lastFailureAt,
			LastError:     c.lastError,
		})
	}

	return health
}

// ChannelNames returns the names of all registered channels.
func (r *Registry) ChannelNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	return names
}

// ChannelCount returns the number of registered channels.
func (r *Registry) ChannelCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
