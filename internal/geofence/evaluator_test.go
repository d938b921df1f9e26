package geofence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadieapp/roadie/internal/geofence"
	"github.com/roadieapp/roadie/internal/location"
)

func sampleAt(lat, lon float64) location.Sample {
	return location.Sample{Lat: lat, Lon: lon, Timestamp: time.Now()}
}

func testZone(id string, lat, lon, radius float64) geofence.Zone {
	return geofence.Zone{
		ID:           id,
		UserID:       "user123",
		Name:         id,
		CenterLat:    lat,
		CenterLon:    lon,
		RadiusMeters: radius,
		Kind:         geofence.ZoneDanger,
		Active:       true,
		Notify:       true,
	}
}

func TestHaversineDistance(t *testing.T) {
	// ~0.002 degrees of latitude is roughly 222 meters at the equator.
	dist := geofence.HaversineDistance(0.002, 0, 0, 0)
	assert.InDelta(t, 222, dist, 5)

	assert.Equal(t, 0.0, geofence.HaversineDistance(52.37, 4.89, 52.37, 4.89))
}

func TestEvaluate_EnterEvent(t *testing.T) {
	zones := []geofence.Zone{testZone("zone1", 0, 0, 100)}

	// Previous ~222 m out, current at the center.
	previous := sampleAt(0.002, 0)
	current := sampleAt(0, 0)

	events := geofence.Evaluate(zones, &previous, current)
	require.Len(t, events, 1)
	assert.Equal(t, geofence.EventEnter, events[0].Type)
	assert.Equal(t, "zone1", events[0].Zone.ID)
}

func TestEvaluate_ExitEvent(t *testing.T) {
	zones := []geofence.Zone{testZone("zone1", 0, 0, 100)}

	previous := sampleAt(0, 0)
	current := sampleAt(0.002, 0)

	events := geofence.Evaluate(zones, &previous, current)
	require.Len(t, events, 1)
	assert.Equal(t, geofence.EventExit, events[0].Type)
}

func TestEvaluate_NoPreviousSample(t *testing.T) {
	zones := []geofence.Zone{testZone("zone1", 0, 0, 100)}

	// First sample lands inside the zone but no enter fires on cold start.
	events := geofence.Evaluate(zones, nil, sampleAt(0, 0))
	assert.Empty(t, events)
}

func TestEvaluate_NoTransition(t *testing.T) {
	zones := []geofence.Zone{testZone("zone1", 0, 0, 100)}

	tests := []struct {
		name     string
		previous location.Sample
		current  location.Sample
	}{
		{name: "stays inside", previous: sampleAt(0, 0), current: sampleAt(0.0001, 0)},
		{name: "stays outside", previous: sampleAt(0.002, 0), current: sampleAt(0.003, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := geofence.Evaluate(zones, &tt.previous, tt.current)
			assert.Empty(t, events)
		})
	}
}

func TestEvaluate_InactiveZoneSkipped(t *testing.T) {
	zone := testZone("zone1", 0, 0, 100)
	zone.Active = false

	previous := sampleAt(0.002, 0)
	events := geofence.Evaluate([]geofence.Zone{zone}, &previous, sampleAt(0, 0))
	assert.Empty(t, events)
}

func TestEvaluate_MultipleZonesInOrder(t *testing.T) {
	zones := []geofence.Zone{
		testZone("zone1", 0, 0, 100),
		testZone("zone2", 0, 0, 500),
	}

	previous := sampleAt(0.02, 0) // well outside both
	events := geofence.Evaluate(zones, &previous, sampleAt(0, 0))

	require.Len(t, events, 2)
	assert.Equal(t, "zone1", events[0].Zone.ID)
	assert.Equal(t, "zone2", events[1].Zone.ID)
}

func TestRegistry_Observe(t *testing.T) {
	registry := geofence.NewRegistry()
	registry.SetZones([]geofence.Zone{testZone("zone1", 0, 0, 100)})

	// Baseline sample: no events.
	events := registry.Observe(sampleAt(0.002, 0))
	assert.Empty(t, events)

	// Crossing in.
	events = registry.Observe(sampleAt(0, 0))
	require.Len(t, events, 1)
	assert.Equal(t, geofence.EventEnter, events[0].Type)

	// Deleting the zone set stops events immediately.
	registry.SetZones(nil)
	events = registry.Observe(sampleAt(0.002, 0))
	assert.Empty(t, events)
}
