// Package location provides location sampling and the provider contract
// the engine pulls position data through.
package location

import (
	"errors"
	"fmt"
	"time"
)

// Provider errors.
var (
	ErrLocationUnavailable = errors.New("location unavailable")
)

// Sample is a single position fix from the host platform.
type Sample struct {
	Lat       float64
	Lon       float64
	Accuracy  *float64 // meters, nil when the platform does not report it
	Timestamp time.Time
}

// MapsURL returns a shareable Google Maps link for the sample.
func (s Sample) MapsURL() string {
	return fmt.Sprintf("https://maps.google.com/?q=%f,%f", s.Lat, s.Lon)
}

// Valid reports whether the sample holds plausible coordinates.
func (s Sample) Valid() bool {
	return s.Lat >= -90 && s.Lat <= 90 && s.Lon >= -180 && s.Lon <= 180
}
