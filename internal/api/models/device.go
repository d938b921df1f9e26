package models

// Device represents a paired wearable in API responses.
type Device struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Connected    bool      `json:"connected"`
	BatteryLevel *float64  `json:"batteryLevel,omitempty"`
	LastSyncAt   Timestamp `json:"lastSyncAt"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
}

// PagedDevices is a page of paired wearables.
type PagedDevices struct {
	Items []Device          `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// DeviceRegisterRequest pairs or refreshes a wearable registration.
type DeviceRegisterRequest struct {
	DeviceID     string   `json:"deviceId" validate:"required"`
	Name         string   `json:"name" validate:"required,max=80"`
	Type         string   `json:"type" validate:"required,oneof=apple_watch fitbit garmin samsung_watch other"`
	Connected    bool     `json:"connected"`
	BatteryLevel *float64 `json:"batteryLevel,omitempty"`
}
