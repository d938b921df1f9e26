package models

// Zone represents a geofence zone in API responses.
type Zone struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Center       Point     `json:"center"`
	RadiusMeters float64   `json:"radiusMeters"`
	Kind         string    `json:"kind"`
	Active       bool      `json:"active"`
	Notify       bool      `json:"notify"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
}

// PagedZones is a page of geofence zones.
type PagedZones struct {
	Items []Zone            `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// ZoneRequest carries the fields for creating or updating a zone.
type ZoneRequest struct {
	Name         string  `json:"name" validate:"required,max=80"`
	Center       Point   `json:"center" validate:"required"`
	RadiusMeters float64 `json:"radiusMeters" validate:"required,gt=0,lte=100000"`
	Kind         string  `json:"kind" validate:"required,oneof=safe danger home work school"`
	Active       *bool   `json:"active,omitempty"`
	Notify       *bool   `json:"notify,omitempty"`
}
