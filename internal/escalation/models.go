// Package escalation turns an active SOS session into tiered contact
// notifications: primaries immediately, secondaries after a grace delay.
package escalation

import (
	"errors"
	"time"

	"github.com/roadieapp/roadie/internal/contact"
	"github.com/roadieapp/roadie/internal/gateway"
)

// Escalation errors.
var (
	// ErrRunNotFound is returned by repositories for unknown runs.
	ErrRunNotFound = errors.New("escalation run not found")
)

// Run records one escalation for one session. A session gets at most one
// run regardless of how many activation transitions are observed.
type Run struct {
	SessionID   string
	UserID      string
	StartedAt   time.Time
	SecondaryAt *time.Time
	CompletedAt *time.Time
}

// Attempt records one delivery attempt to one contact. Retries produce
// their own rows, so the full delivery story is reconstructable.
type Attempt struct {
	ID         string
	SessionID  string
	ContactID  string
	Tier       contact.Tier
	NoticeKind gateway.NoticeKind
	Succeeded  bool
	Error      string
	At         time.Time
}
