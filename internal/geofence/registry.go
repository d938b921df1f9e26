package geofence

import (
	"sync"

	"github.com/roadieapp/roadie/internal/location"
)

// Registry holds the active zone set and the last observed location.
// The zone slice is replaced wholesale on every update (copy-on-write), so
// an evaluation in flight never sees a partially updated set, and a deleted
// zone stops producing events immediately.
type Registry struct {
	mu       sync.RWMutex
	zones    []Zone
	previous *location.Sample
}

// NewRegistry creates an empty zone registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetZones atomically replaces the zone set. The last observed location is
// kept so replacing zones mid-stream does not reset containment tracking.
func (r *Registry) SetZones(zones []Zone) {
	snapshot := make([]Zone, len(zones))
	copy(snapshot, zones)

	r.mu.Lock()
	r.zones = snapshot
	r.mu.Unlock()
}

// Zones returns the current zone set in registration order.
func (r *Registry) Zones() []Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Zone, len(r.zones))
	copy(out, r.zones)
	return out
}

// Observe records a location sample and returns the boundary crossings it
// caused. The first sample only establishes the baseline.
func (r *Registry) Observe(sample location.Sample) []Event {
	r.mu.Lock()
	zones := r.zones
	previous := r.previous
	s := sample
	r.previous = &s
	r.mu.Unlock()

	return Evaluate(zones, previous, sample)
}

// LastKnown returns the most recently observed sample, or nil before the
// first observation.
func (r *Registry) LastKnown() *location.Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.previous == nil {
		return nil
	}
	s := *r.previous
	return &s
}
