// Package geofence provides geofence zone management and enter/exit
// evaluation over the location stream.
package geofence

import (
	"errors"
	"time"

	"github.com/roadieapp/roadie/internal/location"
)

// Repository errors.
var (
	ErrZoneNotFound = errors.New("geofence zone not found")
)

// ZoneKind categorizes a zone for trigger mapping and display.
type ZoneKind string

// Zone kinds.
const (
	ZoneSafe   ZoneKind = "safe"
	ZoneDanger ZoneKind = "danger"
	ZoneHome   ZoneKind = "home"
	ZoneWork   ZoneKind = "work"
	ZoneSchool ZoneKind = "school"
)

// Valid reports whether the kind is one of the known values.
func (k ZoneKind) Valid() bool {
	switch k {
	case ZoneSafe, ZoneDanger, ZoneHome, ZoneWork, ZoneSchool:
		return true
	}
	return false
}

// Zone is a circular geofence region.
type Zone struct {
	ID           string
	UserID       string
	Name         string
	CenterLat    float64
	CenterLon    float64
	RadiusMeters float64
	Kind         ZoneKind
	Active       bool
	Notify       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Contains reports whether the sample lies within the zone radius.
func (z Zone) Contains(s location.Sample) bool {
	return HaversineDistance(s.Lat, s.Lon, z.CenterLat, z.CenterLon) <= z.RadiusMeters
}

// EventType is the direction of a zone boundary crossing.
type EventType string

// Boundary crossing directions.
const (
	EventEnter EventType = "enter"
	EventExit  EventType = "exit"
)

// Event is a single zone boundary crossing detected from the location stream.
type Event struct {
	Zone   Zone
	Type   EventType
	Sample location.Sample
}
