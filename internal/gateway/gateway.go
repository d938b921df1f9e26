// Package gateway delivers emergency notifications to contacts over
// external SMS and voice call services.
package gateway

import (
	"context"
	"errors"

	"github.com/roadieapp/roadie/internal/contact"
	"github.com/roadieapp/roadie/internal/session"
)

// Gateway errors.
var (
	// ErrDeliveryFailed is returned when a notice could not be delivered
	// on any of the contact's channels.
	ErrDeliveryFailed = errors.New("notice delivery failed")
)

// NoticeKind distinguishes the initial alert from the all-clear.
type NoticeKind string

// Notice kinds.
const (
	NoticeAlert    NoticeKind = "alert"
	NoticeResolved NoticeKind = "resolved"
)

// Notice is one message to one contact about one session.
type Notice struct {
	Kind    NoticeKind
	Contact contact.Contact
	Session session.Session

	// MedicalSummary is included only for contacts cleared for medical
	// information. Empty otherwise.
	MedicalSummary string
}

// Notifier delivers notices to contacts. Implementations must be safe for
// concurrent use; the escalation scheduler dispatches contacts in parallel.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}
