package models

// Session represents an SOS session in API responses.
type Session struct {
	ID                      string     `json:"id"`
	State                   string     `json:"state"`
	Kind                    string     `json:"kind"`
	Source                  string     `json:"source"`
	Confidence              float64    `json:"confidence"`
	Location                *Location  `json:"location,omitempty"`
	StartedAt               Timestamp  `json:"startedAt"`
	ActivatedAt             *Timestamp `json:"activatedAt,omitempty"`
	EndedAt                 *Timestamp `json:"endedAt,omitempty"`
	EmergencyServicesCalled bool       `json:"emergencyServicesCalled"`
}

// Location represents a captured position fix.
type Location struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
}

// PagedSessions is a page of archived sessions.
type PagedSessions struct {
	Items []Session         `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// TriggerRequest raises a manual SOS trigger.
type TriggerRequest struct {
	Kind string `json:"kind"`
}

// NotifyAttempt represents one contact notification attempt.
type NotifyAttempt struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contactId"`
	Tier      string    `json:"tier"`
	Kind      string    `json:"kind"`
	Success   bool      `json:"success"`
	Error     *string   `json:"error,omitempty"`
	At        Timestamp `json:"at"`
}

// SessionAttempts lists the notification attempts for one session.
type SessionAttempts struct {
	SessionID string          `json:"sessionId"`
	Items     []NotifyAttempt `json:"items"`
}
