// Package session owns the SOS lifecycle: at most one non-terminal
// emergency session exists per user at any time.
package session

import (
	"errors"
	"time"

	"github.com/roadieapp/roadie/internal/location"
	"github.com/roadieapp/roadie/internal/trigger"
)

// State machine errors.
var (
	// ErrStateConflict is returned when an operation is attempted on a
	// session in an incompatible state. Callers treat it as a no-op.
	ErrStateConflict = errors.New("operation conflicts with session state")

	// ErrSessionNotFound is returned by repositories for unknown sessions.
	ErrSessionNotFound = errors.New("session not found")
)

// State is a lifecycle phase of an SOS session.
type State string

// Session states. Resolved and Cancelled are terminal.
const (
	StateIdle         State = "idle"
	StateCountingDown State = "counting_down"
	StateActive       State = "active"
	StateResolved     State = "resolved"
	StateCancelled    State = "cancelled"
)

// Terminal reports whether the state ends the session lifecycle.
func (s State) Terminal() bool {
	return s == StateResolved || s == StateCancelled
}

// Session is one emergency response lifecycle, from trigger to resolution.
type Session struct {
	ID                      string
	UserID                  string
	Kind                    trigger.Kind
	Source                  trigger.Source
	Confidence              float64
	State                   State
	Location                *location.Sample
	StartedAt               time.Time
	ActivatedAt             *time.Time
	EndedAt                 *time.Time
	EmergencyServicesCalled bool
}

// Reason explains why a transition fired.
type Reason string

// Transition reasons.
const (
	ReasonTrigger          Reason = "trigger"
	ReasonCountdownElapsed Reason = "countdown_elapsed"
	ReasonCancelled        Reason = "cancelled"
	ReasonResolved         Reason = "resolved"
	ReasonAutoExpired      Reason = "auto_expired"
	ReasonUpgraded         Reason = "upgraded"
)

// Transition is one observed state change. Upgrades keep From == To: the
// session stays in its phase while the kind is raised.
type Transition struct {
	Session Session
	From    State
	To      State
	Reason  Reason
	At      time.Time
}
