package geofence

import (
	"math"

	"github.com/roadieapp/roadie/internal/location"
)

// earthRadiusMeters is the mean Earth radius used for great-circle distances.
const earthRadiusMeters = 6371000

// Evaluate computes enter/exit events for the transition from previous to
// current. It has no internal state: the caller supplies the previous sample
// explicitly. When previous is nil no events fire, so a cold start inside a
// zone never produces a spurious enter. Inactive zones are skipped entirely.
// Events are emitted in zone order.
func Evaluate(zones []Zone, previous *location.Sample, current location.Sample) []Event {
	if previous == nil {
		return nil
	}

	var events []Event
	for _, zone := range zones {
		if !zone.Active {
			continue
		}

		wasInside := zone.Contains(*previous)
		isInside := zone.Contains(current)

		switch {
		case !wasInside && isInside:
			events = append(events, Event{Zone: zone, Type: EventEnter, Sample: current})
		case wasInside && !isInside:
			events = append(events, Event{Zone: zone, Type: EventExit, Sample: current})
		}
	}
	return events
}

// HaversineDistance calculates the great-circle distance between two points
// in meters using the Haversine formula.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
