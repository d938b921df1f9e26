package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roadieapp/roadie/internal/api/models"
	"github.com/roadieapp/roadie/internal/api/response"
	"github.com/roadieapp/roadie/internal/medical"
)

// MedicalHandler handles medical profile endpoints.
type MedicalHandler struct {
	profiles *medical.Service
}

// NewMedicalHandler creates a new MedicalHandler.
func NewMedicalHandler(profiles *medical.Service) *MedicalHandler {
	return &MedicalHandler{profiles: profiles}
}

// GetProfile handles GET /v1/medical-profile - get the medical profile.
func (h *MedicalHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context(), GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, medical.ErrProfileNotFound) {
			response.NotFound(w, r, "no medical profile has been set")
			return
		}
		response.InternalError(w, r, "failed to load medical profile")
		return
	}
	response.JSON(w, r, http.StatusOK, toMedicalModel(profile))
}

// UpsertProfile handles PUT /v1/medical-profile - create or replace the
// medical profile.
func (h *MedicalHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var input models.MedicalProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	profile, err := h.profiles.Put(r.Context(), GetUserID(r.Context()), &medical.ProfileInput{
		BloodType:      input.BloodType,
		Allergies:      input.Allergies,
		Medications:    input.Medications,
		Conditions:     input.Conditions,
		EmergencyNotes: input.EmergencyNotes,
	})
	if err != nil {
		var validationErr *medical.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "medical profile validation failed", validationErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to save medical profile")
		return
	}
	response.JSON(w, r, http.StatusOK, toMedicalModel(profile))
}

// DeleteProfile handles DELETE /v1/medical-profile - remove the profile.
func (h *MedicalHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context(), GetUserID(r.Context())); err != nil {
		if errors.Is(err, medical.ErrProfileNotFound) {
			response.NotFound(w, r, "no medical profile has been set")
			return
		}
		response.InternalError(w, r, "failed to delete medical profile")
		return
	}
	response.NoContent(w, r)
}

func toMedicalModel(p *medical.Profile) models.MedicalProfile {
	return models.MedicalProfile{
		BloodType:      p.BloodType,
		Allergies:      p.Allergies,
		Medications:    p.Medications,
		Conditions:     p.Conditions,
		EmergencyNotes: p.EmergencyNotes,
		UpdatedAt:      models.Timestamp(p.UpdatedAt),
	}
}
