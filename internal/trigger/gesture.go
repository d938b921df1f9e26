package trigger

import (
	"sync"
	"time"
)

// Gesture detection constants.
const (
	// gestureTapThreshold taps within gestureTapWindow raise a panic gesture.
	gestureTapThreshold = 3
	gestureTapWindow    = time.Second
)

// GestureEvent is a recognized panic gesture.
type GestureEvent struct {
	TapCount  int
	Timestamp time.Time
}

// GestureDetector turns rapid tap bursts into panic gestures. Taps further
// apart than the window reset the count.
type GestureDetector struct {
	mu      sync.Mutex
	count   int
	lastTap time.Time
}

// NewGestureDetector creates a tap-burst gesture detector.
func NewGestureDetector() *GestureDetector {
	return &GestureDetector{}
}

// Tap records one tap at the given time and returns a gesture event when
// the burst threshold is reached, or nil otherwise.
func (d *GestureDetector) Tap(at time.Time) *GestureEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	if at.Sub(d.lastTap) > gestureTapWindow {
		d.count = 0
	}
	d.count++
	d.lastTap = at

	if d.count < gestureTapThreshold {
		return nil
	}

	event := &GestureEvent{TapCount: d.count, Timestamp: at}
	d.count = 0
	return event
}
