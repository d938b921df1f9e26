package models

// UtteranceRequest submits a recognized speech utterance for matching.
type UtteranceRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

// LocationRequest pushes one position fix into the engine.
type LocationRequest struct {
	Lat       float64    `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon       float64    `json:"lon" validate:"required,gte=-180,lte=180"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Timestamp *Timestamp `json:"timestamp,omitempty"`
}

// WearableSampleRequest pushes one biometric telemetry frame.
type WearableSampleRequest struct {
	DeviceID     string     `json:"deviceId" validate:"required"`
	HeartRate    *float64   `json:"heartRate,omitempty"`
	Steps        *int       `json:"steps,omitempty"`
	BatteryLevel *float64   `json:"batteryLevel,omitempty"`
	Timestamp    *Timestamp `json:"timestamp,omitempty"`
}
