// Package trigger normalizes heterogeneous emergency signals into one
// canonical trigger stream.
package trigger

import (
	"errors"
	"time"
)

// Aggregator errors.
var (
	// ErrConsumerRegistered is returned when a second consumer attempts to
	// attach to the merged stream. The session state machine must be the
	// sole consumer to preserve the one-session invariant.
	ErrConsumerRegistered = errors.New("trigger consumer already registered")
)

// Source identifies which producer raised a trigger.
type Source string

// Trigger sources.
const (
	SourceVoice    Source = "voice"
	SourceGesture  Source = "gesture"
	SourceGeofence Source = "geofence"
	SourceWearable Source = "wearable"
	SourceManual   Source = "manual"
)

// Kind is the canonical emergency category of a trigger.
type Kind string

// Trigger kinds.
const (
	KindGeneral      Kind = "general"
	KindMedical      Kind = "medical"
	KindFire         Kind = "fire"
	KindPolice       Kind = "police"
	KindSilent       Kind = "silent"
	KindLocationOnly Kind = "location_only"
)

// Valid reports whether the kind is one of the known values.
func (k Kind) Valid() bool {
	return k.severity() > 0
}

// severity orders kinds for upgrade-only merging. Higher means more severe.
func (k Kind) severity() int {
	switch k {
	case KindLocationOnly:
		return 1
	case KindSilent:
		return 2
	case KindGeneral:
		return 3
	case KindPolice:
		return 4
	case KindFire:
		return 5
	case KindMedical:
		return 6
	}
	return 0
}

// Exceeds reports whether k is strictly more severe than other.
func (k Kind) Exceeds(other Kind) bool {
	return k.severity() > other.severity()
}

// Trigger is the canonical emergency signal consumed by the session state
// machine. Each trigger is consumed exactly once.
type Trigger struct {
	Source     Source
	Kind       Kind
	Confidence float64 // 0..1
	OccurredAt time.Time
	Payload    map[string]string
}
