// Package audit publishes emergency lifecycle events to an audit stream.
// Escalation decisions must be reconstructable after the fact; the audit
// trail is how support answers "who was notified and when".
package audit

import (
	"context"
	"time"
)

// EventType identifies the audited action.
type EventType string

// Audited event types.
const (
	EventSessionStarted   EventType = "session.started"
	EventSessionActivated EventType = "session.activated"
	EventSessionUpgraded  EventType = "session.upgraded"
	EventSessionEnded     EventType = "session.ended"
	EventTriggerEmitted   EventType = "trigger.emitted"
	EventZoneCrossed      EventType = "zone.crossed"
	EventDialConfirmed    EventType = "session.dial_confirmed"
)

// Event is one audit record.
type Event struct {
	Type      EventType         `json:"type"`
	UserID    string            `json:"userId"`
	SessionID string            `json:"sessionId,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	At        time.Time         `json:"at"`
}

// Sink receives audit events. Implementations must tolerate bursts: a
// session transition can fan out several events at once.
type Sink interface {
	Record(ctx context.Context, event Event) error
	Close() error
}
