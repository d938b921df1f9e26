// Package medical manages the emergency medical profile shared with
// trusted contacts during an SOS session.
package medical

import (
	"errors"
	"strings"
	"time"
)

// Profile errors.
var (
	// ErrProfileNotFound is returned when a user has no medical profile.
	ErrProfileNotFound = errors.New("medical profile not found")
)

// Profile is the medical information a user chooses to share in an
// emergency.
type Profile struct {
	UserID         string
	BloodType      string
	Allergies      []string
	Medications    []string
	Conditions     []string
	EmergencyNotes string
	UpdatedAt      time.Time
}

// Summary renders the profile as a short text block for inclusion in a
// notification to a contact cleared for medical information.
func (p *Profile) Summary() string {
	var b strings.Builder
	if p.BloodType != "" {
		b.WriteString("Blood type: " + p.BloodType + "\n")
	}
	if len(p.Allergies) > 0 {
		b.WriteString("Allergies: " + strings.Join(p.Allergies, ", ") + "\n")
	}
	if len(p.Medications) > 0 {
		b.WriteString("Medications: " + strings.Join(p.Medications, ", ") + "\n")
	}
	if len(p.Conditions) > 0 {
		b.WriteString("Conditions: " + strings.Join(p.Conditions, ", ") + "\n")
	}
	if p.EmergencyNotes != "" {
		b.WriteString("Notes: " + p.EmergencyNotes + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
