package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roadieapp/roadie/internal/api/models"
	"github.com/roadieapp/roadie/internal/api/response"
	"github.com/roadieapp/roadie/internal/contact"
	"github.com/roadieapp/roadie/internal/invite"
)

// ContactHandler handles emergency contact endpoints.
type ContactHandler struct {
	contacts *contact.Service
	invites  *invite.Service
}

// NewContactHandler creates a new ContactHandler. invites may be nil when
// the deployment has no invite signing key configured.
func NewContactHandler(contacts *contact.Service, invites *invite.Service) *ContactHandler {
	return &ContactHandler{contacts: contacts, invites: invites}
}

// ListContacts handles GET /v1/contacts - contacts in dispatch order.
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context(), GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w, r, "failed to list contacts")
		return
	}

	items := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, toContactModel(c))
	}
	response.JSON(w, r, http.StatusOK, models.PagedContacts{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	})
}

// CreateContact handles POST /v1/contacts - add an emergency contact.
func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var input models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.contacts.Create(r.Context(), GetUserID(r.Context()), contactInput(input))
	if err != nil {
		h.writeContactError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/contacts/%s", created.ID)
	response.Created(w, r, location, toContactModel(*created))
}

// GetContact handles GET /v1/contacts/{contactId} - get a contact.
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactId")
	if contactID == "" {
		response.BadRequest(w, r, "contactId is required", nil)
		return
	}

	c, err := h.contacts.Get(r.Context(), GetUserID(r.Context()), contactID)
	if err != nil {
		h.writeContactError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toContactModel(*c))
}

// UpdateContact handles PUT /v1/contacts/{contactId} - update a contact.
func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactId")
	if contactID == "" {
		response.BadRequest(w, r, "contactId is required", nil)
		return
	}

	var input models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	updated, err := h.contacts.Update(r.Context(), GetUserID(r.Context()), contactID, contactInput(input))
	if err != nil {
		h.writeContactError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toContactModel(*updated))
}

// DeleteContact handles DELETE /v1/contacts/{contactId} - remove a contact.
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactId")
	if contactID == "" {
		response.BadRequest(w, r, "contactId is required", nil)
		return
	}

	if err := h.contacts.Delete(r.Context(), GetUserID(r.Context()), contactID); err != nil {
		h.writeContactError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// InviteContact handles POST /v1/contacts/{contactId}/invite - issue a
// signed invite token for the contact's companion app.
func (h *ContactHandler) InviteContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactId")
	if contactID == "" {
		response.BadRequest(w, r, "contactId is required", nil)
		return
	}
	if h.invites == nil {
		response.ServiceUnavailable(w, r, "invites are not configured")
		return
	}

	userID := GetUserID(r.Context())
	if _, err := h.contacts.Get(r.Context(), userID, contactID); err != nil {
		h.writeContactError(w, r, err)
		return
	}

	token, expiresAt, err := h.invites.Generate(userID, contactID)
	if err != nil {
		response.InternalError(w, r, "failed to generate invite")
		return
	}

	response.JSON(w, r, http.StatusOK, models.ContactInvite{
		ContactID: contactID,
		Token:     token,
		ExpiresAt: models.Timestamp(expiresAt),
	})
}

// VerifyInvite handles POST /v1/contacts/invites/verify - validate an
// invite token and return the contact binding it carries.
func (h *ContactHandler) VerifyInvite(w http.ResponseWriter, r *http.Request) {
	if h.invites == nil {
		response.ServiceUnavailable(w, r, "invites are not configured")
		return
	}

	var input models.InviteVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Token == "" {
		response.BadRequest(w, r, "token is required", nil)
		return
	}

	claims, err := h.invites.Validate(input.Token)
	if err != nil {
		switch {
		case errors.Is(err, invite.ErrTokenExpired):
			response.BadRequest(w, r, "invite token has expired", nil)
		default:
			response.BadRequest(w, r, "invalid invite token", nil)
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.InviteVerification{
		UserID:    claims.UserID,
		ContactID: claims.ContactID,
		ExpiresAt: models.Timestamp(claims.ExpiresAt.Time),
	})
}

func (h *ContactHandler) writeContactError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *contact.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, r, "contact validation failed", validationErr.Errors)
	case errors.Is(err, contact.ErrContactNotFound):
		response.NotFound(w, r, "contact not found")
	default:
		response.InternalError(w, r, "contact operation failed")
	}
}

func contactInput(input models.ContactRequest) *contact.ContactInput {
	return &contact.ContactInput{
		Name:              input.Name,
		Phone:             input.Phone,
		Email:             input.Email,
		Relationship:      input.Relationship,
		Tier:              contact.Tier(input.Tier),
		NotifyVia:         contact.NotifyVia(input.NotifyVia),
		CanSeeMedicalInfo: input.CanSeeMedicalInfo,
		Priority:          input.Priority,
	}
}

func toContactModel(c contact.Contact) models.Contact {
	return models.Contact{
		ID:                c.ID,
		Name:              c.Name,
		Phone:             c.Phone,
		Email:             c.Email,
		Relationship:      c.Relationship,
		Tier:              string(c.Tier),
		NotifyVia:         string(c.NotifyVia),
		CanSeeMedicalInfo: c.CanSeeMedicalInfo,
		Priority:          c.Priority,
		CreatedAt:         models.Timestamp(c.CreatedAt),
		UpdatedAt:         models.Timestamp(c.UpdatedAt),
	}
}
