package models

// Contact represents an emergency contact in API responses.
type Contact struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email,omitempty"`
	Relationship      string    `json:"relationship,omitempty"`
	Tier              string    `json:"tier"`
	NotifyVia         string    `json:"notifyVia"`
	CanSeeMedicalInfo bool      `json:"canSeeMedicalInfo"`
	Priority          int       `json:"priority"`
	CreatedAt         Timestamp `json:"createdAt"`
	UpdatedAt         Timestamp `json:"updatedAt"`
}

// PagedContacts is a page of emergency contacts in dispatch order.
type PagedContacts struct {
	Items []Contact         `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// ContactRequest carries the fields for creating or updating a contact.
type ContactRequest struct {
	Name              string `json:"name" validate:"required,max=80"`
	Phone             string `json:"phone" validate:"required,e164"`
	Email             string `json:"email,omitempty" validate:"omitempty,email"`
	Relationship      string `json:"relationship,omitempty"`
	Tier              string `json:"tier" validate:"required,oneof=primary secondary"`
	NotifyVia         string `json:"notifyVia" validate:"required,oneof=sms call both"`
	CanSeeMedicalInfo bool   `json:"canSeeMedicalInfo"`
	Priority          int    `json:"priority"`
}

// ContactInvite is a signed invite for a contact to join the safety circle.
type ContactInvite struct {
	ContactID string    `json:"contactId"`
	Token     string    `json:"token"`
	ExpiresAt Timestamp `json:"expiresAt"`
}

// InviteVerifyRequest carries an invite token for verification.
type InviteVerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

// InviteVerification reports the claims of a valid invite token.
type InviteVerification struct {
	UserID    string    `json:"userId"`
	ContactID string    `json:"contactId"`
	ExpiresAt Timestamp `json:"expiresAt"`
}
