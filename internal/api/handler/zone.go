package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roadieapp/roadie/internal/api/models"
	"github.com/roadieapp/roadie/internal/api/response"
	"github.com/roadieapp/roadie/internal/geofence"
)

// ZoneHandler handles geofence zone endpoints.
type ZoneHandler struct {
	zones *geofence.Service
}

// NewZoneHandler creates a new ZoneHandler.
func NewZoneHandler(zones *geofence.Service) *ZoneHandler {
	return &ZoneHandler{zones: zones}
}

// ListZones handles GET /v1/zones - list geofence zones.
func (h *ZoneHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.zones.List(r.Context(), GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w, r, "failed to list zones")
		return
	}

	items := make([]models.Zone, 0, len(zones))
	for _, z := range zones {
		items = append(items, toZoneModel(z))
	}
	response.JSON(w, r, http.StatusOK, models.PagedZones{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	})
}

// CreateZone handles POST /v1/zones - create a geofence zone.
func (h *ZoneHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var input models.ZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	zone, err := h.zones.Create(r.Context(), GetUserID(r.Context()), zoneInput(input))
	if err != nil {
		h.writeZoneError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/zones/%s", zone.ID)
	response.Created(w, r, location, toZoneModel(*zone))
}

// GetZone handles GET /v1/zones/{zoneId} - get a geofence zone.
func (h *ZoneHandler) GetZone(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneId")
	if zoneID == "" {
		response.BadRequest(w, r, "zoneId is required", nil)
		return
	}

	zone, err := h.zones.Get(r.Context(), GetUserID(r.Context()), zoneID)
	if err != nil {
		h.writeZoneError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toZoneModel(*zone))
}

// UpdateZone handles PUT /v1/zones/{zoneId} - update a geofence zone.
func (h *ZoneHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneId")
	if zoneID == "" {
		response.BadRequest(w, r, "zoneId is required", nil)
		return
	}

	var input models.ZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	zone, err := h.zones.Update(r.Context(), GetUserID(r.Context()), zoneID, zoneInput(input))
	if err != nil {
		h.writeZoneError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toZoneModel(*zone))
}

// DeleteZone handles DELETE /v1/zones/{zoneId} - delete a geofence zone.
func (h *ZoneHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneId")
	if zoneID == "" {
		response.BadRequest(w, r, "zoneId is required", nil)
		return
	}

	if err := h.zones.Delete(r.Context(), GetUserID(r.Context()), zoneID); err != nil {
		h.writeZoneError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func (h *ZoneHandler) writeZoneError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *geofence.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, r, "zone validation failed", validationErr.Errors)
	case errors.Is(err, geofence.ErrZoneNotFound):
		response.NotFound(w, r, "zone not found")
	default:
		response.InternalError(w, r, "zone operation failed")
	}
}

func zoneInput(input models.ZoneRequest) *geofence.ZoneInput {
	return &geofence.ZoneInput{
		Name:         input.Name,
		CenterLat:    input.Center.Lat,
		CenterLon:    input.Center.Lon,
		RadiusMeters: input.RadiusMeters,
		Kind:         geofence.ZoneKind(input.Kind),
		Active:       input.Active,
		Notify:       input.Notify,
	}
}

func toZoneModel(z geofence.Zone) models.Zone {
	return models.Zone{
		ID:           z.ID,
		Name:         z.Name,
		Center:       models.Point{Lat: z.CenterLat, Lon: z.CenterLon},
		RadiusMeters: z.RadiusMeters,
		Kind:         string(z.Kind),
		Active:       z.Active,
		Notify:       z.Notify,
		CreatedAt:    models.Timestamp(z.CreatedAt),
		UpdatedAt:    models.Timestamp(z.UpdatedAt),
	}
}
