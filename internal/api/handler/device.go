package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roadieapp/roadie/internal/api/models"
	"github.com/roadieapp/roadie/internal/api/response"
	"github.com/roadieapp/roadie/internal/wearable"
)

// DeviceHandler handles wearable device registration endpoints.
type DeviceHandler struct {
	devices wearable.Repository
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(devices wearable.Repository) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// ListDevices handles GET /v1/devices - list paired wearables.
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.ListByUser(r.Context(), GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w, r, "failed to list devices")
		return
	}

	items := make([]models.Device, 0, len(devices))
	for _, d := range devices {
		items = append(items, toDeviceModel(d))
	}
	response.JSON(w, r, http.StatusOK, models.PagedDevices{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	})
}

// RegisterDevice handles POST /v1/devices - pair or refresh a wearable.
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var input models.DeviceRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if fieldErrors := validateDeviceInput(input); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "device validation failed", fieldErrors)
		return
	}

	now := time.Now()
	device := &wearable.Device{
		ID:           input.DeviceID,
		UserID:       GetUserID(r.Context()),
		Name:         input.Name,
		Type:         wearable.DeviceType(input.Type),
		Connected:    input.Connected,
		BatteryLevel: input.BatteryLevel,
		LastSyncAt:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := h.devices.Upsert(r.Context(), device)
	if err != nil {
		response.InternalError(w, r, "failed to register device")
		return
	}

	if created {
		location := fmt.Sprintf("/v1/devices/%s", device.ID)
		response.Created(w, r, location, toDeviceModel(device))
		return
	}
	response.JSON(w, r, http.StatusOK, toDeviceModel(device))
}

// UnregisterDevice handles DELETE /v1/devices/{deviceId} - unpair a wearable.
func (h *DeviceHandler) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")
	if deviceID == "" {
		response.BadRequest(w, r, "deviceId is required", nil)
		return
	}

	if err := h.devices.Delete(r.Context(), GetUserID(r.Context()), deviceID); err != nil {
		if errors.Is(err, wearable.ErrDeviceNotFound) {
			response.NotFound(w, r, "device not found")
			return
		}
		response.InternalError(w, r, "failed to unregister device")
		return
	}
	response.NoContent(w, r)
}

func validateDeviceInput(input models.DeviceRegisterRequest) []models.FieldError {
	var errs []models.FieldError
	if input.DeviceID == "" {
		errs = append(errs, models.FieldError{Field: "deviceId", Message: "is required"})
	}
	if input.Name == "" {
		errs = append(errs, models.FieldError{Field: "name", Message: "is required"})
	}
	switch wearable.DeviceType(input.Type) {
	case wearable.DeviceAppleWatch, wearable.DeviceFitbit, wearable.DeviceGarmin, wearable.DeviceSamsungWatch, wearable.DeviceOther:
	default:
		errs = append(errs, models.FieldError{Field: "type", Message: "must be one of apple_watch, fitbit, garmin, samsung_watch, other"})
	}
	return errs
}

func toDeviceModel(d *wearable.Device) models.Device {
	return models.Device{
		ID:           d.ID,
		Name:         d.Name,
		Type:         string(d.Type),
		Connected:    d.Connected,
		BatteryLevel: d.BatteryLevel,
		LastSyncAt:   models.Timestamp(d.LastSyncAt),
		CreatedAt:    models.Timestamp(d.CreatedAt),
		UpdatedAt:    models.Timestamp(d.UpdatedAt),
	}
}
