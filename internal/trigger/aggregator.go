package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadieapp/roadie/internal/geofence"
	"github.com/roadieapp/roadie/internal/phrase"
	"github.com/roadieapp/roadie/internal/wearable"
)

// Confidence assigned to voice triggers. The recognizer already filtered
// the utterance through the fuzzy matcher, so confidence is high but not
// certain.
const voiceConfidence = 0.9

// gestureConfidence reflects that a tap burst can be accidental.
const gestureConfidence = 0.8

// Config holds configuration for the aggregator.
type Config struct {
	// DedupWindow collapses same-kind triggers from different sources into
	// one emission. Default: 2 seconds.
	DedupWindow time.Duration

	// Buffer is the submission queue depth. Default: 64.
	Buffer int
}

// DefaultConfig returns the default aggregator configuration.
func DefaultConfig() Config {
	return Config{
		DedupWindow: 2 * time.Second,
		Buffer:      64,
	}
}

// windowEntry tracks the last emission per kind for de-duplication.
type windowEntry struct {
	emittedAt     time.Time
	maxConfidence float64
}

// Aggregator merges the voice, gesture, geofence and wearable producers
// into one ordered trigger stream. All emissions happen on a single
// goroutine, so the consumer observes a serialized sequence; within one
// producer, submission order is preserved.
type Aggregator struct {
	matcher *phrase.Matcher
	gesture *GestureDetector
	config  Config
	logger  zerolog.Logger

	events chan Trigger

	mu       sync.Mutex
	consumer func(Trigger)
	cancel   context.CancelFunc
	done     chan struct{}

	recent map[Kind]*windowEntry // only touched by the run goroutine
}

// NewAggregator creates a trigger aggregator. The matcher maps utterances
// to protocols; it may be shared with the configuration surface.
func NewAggregator(matcher *phrase.Matcher, cfg Config, logger zerolog.Logger) *Aggregator {
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = DefaultConfig().DedupWindow
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultConfig().Buffer
	}
	return &Aggregator{
		matcher: matcher,
		gesture: NewGestureDetector(),
		config:  cfg,
		logger:  logger,
		events:  make(chan Trigger, cfg.Buffer),
		recent:  make(map[Kind]*windowEntry),
	}
}

// OnTrigger registers the sole consumer of the merged stream. A second
// registration returns ErrConsumerRegistered.
func (a *Aggregator) OnTrigger(fn func(Trigger)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.consumer != nil {
		return ErrConsumerRegistered
	}
	a.consumer = fn
	return nil
}

// Start launches the merge goroutine. Stop drains nothing: pending
// submissions after Stop are dropped.
func (a *Aggregator) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.run(ctx, a.done)
}

// Stop terminates the merge goroutine and waits for it to exit.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SubmitUtterance feeds a recognized utterance through the phrase matcher.
// Unmatched utterances yield no trigger.
func (a *Aggregator) SubmitUtterance(utterance string, at time.Time) {
	matched := a.matcher.Match(utterance)
	if matched == nil {
		a.logger.Debug().Str("utterance", utterance).Msg("utterance matched no trigger phrase")
		return
	}

	kind, ok := kindForProtocol(matched.Protocol)
	if !ok {
		a.logger.Warn().
			Str("protocol", string(matched.Protocol)).
			Msg("unmapped phrase protocol, dropping")
		return
	}

	a.submit(Trigger{
		Source:     SourceVoice,
		Kind:       kind,
		Confidence: voiceConfidence,
		OccurredAt: at,
		Payload: map[string]string{
			"phrase":   matched.Phrase,
			"language": string(matched.Language),
		},
	})
}

// SubmitTap feeds one panic tap; a qualifying burst yields a general trigger.
func (a *Aggregator) SubmitTap(at time.Time) {
	event := a.gesture.Tap(at)
	if event == nil {
		return
	}
	a.submit(Trigger{
		Source:     SourceGesture,
		Kind:       KindGeneral,
		Confidence: gestureConfidence,
		OccurredAt: event.Timestamp,
	})
}

// SubmitGeofence maps a zone boundary crossing. Only entries into danger
// zones with notification enabled raise triggers; every other crossing is
// observability, not an emergency.
func (a *Aggregator) SubmitGeofence(event geofence.Event) {
	if event.Zone.Kind != geofence.ZoneDanger || event.Type != geofence.EventEnter || !event.Zone.Notify {
		a.logger.Debug().
			Str("zone", event.Zone.Name).
			Str("type", string(event.Type)).
			Bool("notify", event.Zone.Notify).
			Msg("geofence event does not map to a trigger")
		return
	}
	a.submit(Trigger{
		Source:     SourceGeofence,
		Kind:       KindLocationOnly,
		Confidence: 1.0,
		OccurredAt: event.Sample.Timestamp,
		Payload: map[string]string{
			"zone_id":   event.Zone.ID,
			"zone_name": event.Zone.Name,
		},
	})
}

// SubmitAnomaly maps a wearable biometric anomaly to a medical trigger.
func (a *Aggregator) SubmitAnomaly(anomaly wearable.Anomaly) {
	a.submit(Trigger{
		Source:     SourceWearable,
		Kind:       KindMedical,
		Confidence: anomaly.Confidence,
		OccurredAt: anomaly.Timestamp,
		Payload: map[string]string{
			"device_id": anomaly.DeviceID,
			"severity":  string(anomaly.Severity),
		},
	})
}

// SubmitManual raises a user-initiated trigger of the given kind.
func (a *Aggregator) SubmitManual(kind Kind, at time.Time) {
	if !kind.Valid() {
		a.logger.Warn().Str("kind", string(kind)).Msg("unmapped manual trigger kind, dropping")
		return
	}
	a.submit(Trigger{
		Source:     SourceManual,
		Kind:       kind,
		Confidence: 1.0,
		OccurredAt: at,
	})
}

func (a *Aggregator) submit(t Trigger) {
	select {
	case a.events <- t:
	default:
		// A full queue means the consumer is stalled; dropping beats
		// blocking a platform callback thread.
		a.logger.Error().
			Str("source", string(t.Source)).
			Str("kind", string(t.Kind)).
			Msg("trigger queue full, dropping trigger")
	}
}

func (a *Aggregator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-a.events:
			a.process(t)
		}
	}
}

func (a *Aggregator) process(t Trigger) {
	if entry, ok := a.recent[t.Kind]; ok && t.OccurredAt.Sub(entry.emittedAt) <= a.config.DedupWindow {
		if t.Confidence <= entry.maxConfidence {
			a.logger.Debug().
				Str("source", string(t.Source)).
				Str("kind", string(t.Kind)).
				Msg("collapsed duplicate trigger inside dedup window")
			return
		}
		// A corroborating source raised the confidence of the colliding
		// set. Pass the trigger through so the consumer sees the maximum;
		// the window keeps its original deadline.
		entry.maxConfidence = t.Confidence
		a.emit(t)
		return
	}

	a.recent[t.Kind] = &windowEntry{emittedAt: t.OccurredAt, maxConfidence: t.Confidence}
	a.emit(t)
}

func (a *Aggregator) emit(t Trigger) {
	a.mu.Lock()
	consumer := a.consumer
	a.mu.Unlock()
	if consumer == nil {
		a.logger.Warn().Str("kind", string(t.Kind)).Msg("no trigger consumer registered, dropping")
		return
	}

	a.logger.Info().
		Str("source", string(t.Source)).
		Str("kind", string(t.Kind)).
		Float64("confidence", t.Confidence).
		Msg("emitting emergency trigger")
	consumer(t)
}

func kindForProtocol(p phrase.Protocol) (Kind, bool) {
	switch p {
	case phrase.ProtocolSOS:
		return KindGeneral, true
	case phrase.ProtocolSilent:
		return KindSilent, true
	case phrase.ProtocolLocationOnly:
		return KindLocationOnly, true
	}
	return "", false
}
