package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/roadieapp/roadie/internal/api/models"
	"github.com/roadieapp/roadie/internal/api/response"
	"github.com/roadieapp/roadie/internal/engine"
	"github.com/roadieapp/roadie/internal/location"
	"github.com/roadieapp/roadie/internal/wearable"
)

// SignalHandler handles the trigger-signal ingestion endpoints. Signals
// are accepted and processed asynchronously; the state machine decides
// whether a session results.
type SignalHandler struct {
	engine *engine.Engine
}

// NewSignalHandler creates a new SignalHandler.
func NewSignalHandler(eng *engine.Engine) *SignalHandler {
	return &SignalHandler{engine: eng}
}

// SubmitUtterance handles POST /v1/signals/utterance - a recognized
// speech utterance for phrase matching.
func (h *SignalHandler) SubmitUtterance(w http.ResponseWriter, r *http.Request) {
	var input models.UtteranceRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Text == "" {
		response.BadRequest(w, r, "utterance text is required", []models.FieldError{
			{Field: "text", Message: "is required"},
		})
		return
	}

	h.engine.SubmitUtterance(input.Text)
	response.Accepted(w, r, "/v1/sos", nil)
}

// SubmitTap handles POST /v1/signals/tap - one panic-gesture tap.
func (h *SignalHandler) SubmitTap(w http.ResponseWriter, r *http.Request) {
	h.engine.SubmitTap()
	response.Accepted(w, r, "/v1/sos", nil)
}

// SubmitLocation handles POST /v1/signals/location - a pushed position fix.
func (h *SignalHandler) SubmitLocation(w http.ResponseWriter, r *http.Request) {
	var input models.LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	sample := location.Sample{
		Lat:       input.Lat,
		Lon:       input.Lon,
		Accuracy:  input.Accuracy,
		Timestamp: time.Now(),
	}
	if input.Timestamp != nil {
		sample.Timestamp = input.Timestamp.Time()
	}
	if !sample.Valid() {
		response.BadRequest(w, r, "invalid coordinates", []models.FieldError{
			{Field: "lat", Message: "must be between -90 and 90"},
			{Field: "lon", Message: "must be between -180 and 180"},
		})
		return
	}

	h.engine.SubmitLocation(sample)
	response.Accepted(w, r, "", nil)
}

// SubmitWearable handles POST /v1/signals/wearable - one biometric
// telemetry frame for anomaly detection.
func (h *SignalHandler) SubmitWearable(w http.ResponseWriter, r *http.Request) {
	var input models.WearableSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.DeviceID == "" {
		response.BadRequest(w, r, "deviceId is required", []models.FieldError{
			{Field: "deviceId", Message: "is required"},
		})
		return
	}

	sample := wearable.Sample{
		DeviceID:     input.DeviceID,
		HeartRate:    input.HeartRate,
		Steps:        input.Steps,
		BatteryLevel: input.BatteryLevel,
		Timestamp:    time.Now(),
	}
	if input.Timestamp != nil {
		sample.Timestamp = input.Timestamp.Time()
	}

	h.engine.SubmitWearableSample(sample)
	response.Accepted(w, r, "", nil)
}
