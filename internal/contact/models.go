// Package contact manages the emergency contacts notified when an SOS
// session escalates.
package contact

import (
	"errors"
	"time"
)

// Contact errors.
var (
	// ErrContactNotFound is returned when a contact does not exist.
	ErrContactNotFound = errors.New("contact not found")
)

// Tier orders contacts into notification waves: primaries first, then
// secondaries after the grace delay.
type Tier string

// Contact tiers.
const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
)

// Valid reports whether the tier is one of the known values.
func (t Tier) Valid() bool {
	return t == TierPrimary || t == TierSecondary
}

// NotifyVia selects the delivery channel for a contact.
type NotifyVia string

// Notification channels.
const (
	NotifySMS  NotifyVia = "sms"
	NotifyCall NotifyVia = "call"
	NotifyBoth NotifyVia = "both"
)

// Valid reports whether the channel is one of the known values.
func (n NotifyVia) Valid() bool {
	return n == NotifySMS || n == NotifyCall || n == NotifyBoth
}

// Contact is one person to notify during an emergency.
type Contact struct {
	ID                string
	UserID            string
	Name              string
	Phone             string
	Email             string
	Relationship      string
	Tier              Tier
	NotifyVia         NotifyVia
	CanSeeMedicalInfo bool
	Priority          int // lower dispatches first within a tier
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
