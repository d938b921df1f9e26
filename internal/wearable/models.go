// Package wearable provides wearable device registration and biometric
// anomaly detection over the decoded telemetry stream.
package wearable

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrDeviceNotFound = errors.New("wearable device not found")
)

// DeviceType identifies the wearable hardware family.
type DeviceType string

// Known device types.
const (
	DeviceAppleWatch   DeviceType = "apple_watch"
	DeviceFitbit       DeviceType = "fitbit"
	DeviceGarmin       DeviceType = "garmin"
	DeviceSamsungWatch DeviceType = "samsung_watch"
	DeviceOther        DeviceType = "other"
)

// Device represents a paired wearable. Pairing itself happens outside the
// engine; the registry only tracks what is connected.
type Device struct {
	ID           string
	UserID       string
	Name         string
	Type         DeviceType
	Connected    bool
	BatteryLevel *float64
	LastSyncAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sample is one decoded telemetry frame from a paired device.
type Sample struct {
	DeviceID     string
	HeartRate    *float64 // bpm
	Steps        *int
	BatteryLevel *float64 // percent
	Timestamp    time.Time
}

// Severity grades how far a biometric reading is outside its normal band.
type Severity string

// Anomaly severities.
const (
	SeverityMedium   Severity = "medium"
	SeverityCritical Severity = "critical"
)

// Anomaly is a biometric reading outside the configured normal band.
type Anomaly struct {
	DeviceID   string
	HeartRate  float64
	Severity   Severity
	Confidence float64
	Timestamp  time.Time
}
