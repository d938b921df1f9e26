// Package engine wires the trigger producers, the session state machine
// and the escalation scheduler into one running emergency pipeline.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadieapp/roadie/internal/audit"
	"github.com/roadieapp/roadie/internal/escalation"
	"github.com/roadieapp/roadie/internal/gateway"
	"github.com/roadieapp/roadie/internal/geofence"
	"github.com/roadieapp/roadie/internal/location"
	"github.com/roadieapp/roadie/internal/phrase"
	"github.com/roadieapp/roadie/internal/session"
	"github.com/roadieapp/roadie/internal/trigger"
	"github.com/roadieapp/roadie/internal/wearable"
)

// Config holds configuration for the engine.
type Config struct {
	// UserID owns every session, zone and contact this engine manages.
	UserID string

	// EmergencyNumber is dialed on a confirmed emergency call.
	// Default: 911.
	EmergencyNumber string
}

// Deps carries the engine's collaborators. All fields are required except
// Monitor, Sessions and Audit.
type Deps struct {
	Matcher    *phrase.Matcher
	Phrases    phrase.Repository
	Zones      *geofence.Service
	Registry   *geofence.Registry
	Monitor    *location.Monitor
	Detector   *wearable.Detector
	Aggregator *trigger.Aggregator
	Machine    *session.Machine
	Scheduler  *escalation.Scheduler
	Sessions   session.Repository
	Audit      audit.Sink

	// Locations, when set, receives pushed fixes so the state machine's
	// location capture sees positions submitted over the transport.
	Locations location.Pusher

	// Dialer, when set, places the emergency call after the user confirms
	// it. Dial failures degrade to a log entry; the session is unaffected.
	Dialer gateway.Dialer
}

// Engine owns the signal flow: location samples feed the geofence
// registry, crossings and utterances and taps feed the aggregator, the
// merged trigger stream drives the state machine, and transitions drive
// escalation, archiving and audit.
type Engine struct {
	config Config
	deps   Deps
	logger zerolog.Logger

	mu          sync.Mutex
	archive     chan session.Transition
	archiveDone chan struct{}
}

// New creates the engine and registers the signal wiring. Call Start to
// begin processing.
func New(cfg Config, deps Deps, logger zerolog.Logger) (*Engine, error) {
	if cfg.EmergencyNumber == "" {
		cfg.EmergencyNumber = "911"
	}
	e := &Engine{config: cfg, deps: deps, logger: logger}

	if err := deps.Aggregator.OnTrigger(deps.Machine.HandleTrigger); err != nil {
		return nil, fmt.Errorf("attaching trigger consumer: %w", err)
	}
	deps.Machine.OnTransition(deps.Scheduler.HandleTransition)
	deps.Machine.OnTransition(e.handleTransition)

	if deps.Monitor != nil {
		deps.Monitor.OnSample(e.handleSample)
	}

	return e, nil
}

// Start loads persisted state and launches the pipeline goroutines.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.loadPhrases(ctx); err != nil {
		return err
	}
	if _, err := e.deps.Zones.Load(ctx, e.config.UserID); err != nil {
		return fmt.Errorf("loading geofence zones: %w", err)
	}

	e.mu.Lock()
	if e.archiveDone == nil {
		e.archive = make(chan session.Transition, 64)
		e.archiveDone = make(chan struct{})
		go e.archiveLoop(e.archive, e.archiveDone)
	}
	e.mu.Unlock()

	e.deps.Scheduler.Start(ctx)
	e.deps.Machine.Start(ctx)
	e.deps.Aggregator.Start(ctx)
	if e.deps.Monitor != nil {
		if err := e.deps.Monitor.Start(ctx); err != nil {
			return fmt.Errorf("starting location monitor: %w", err)
		}
	}

	e.logger.Info().Str("user_id", e.config.UserID).Msg("emergency engine started")
	return nil
}

// Stop tears the pipeline down in signal-flow order: producers first, so
// nothing new enters while the state machine, scheduler and archiver
// drain.
func (e *Engine) Stop() {
	if e.deps.Monitor != nil {
		e.deps.Monitor.Stop()
	}
	e.deps.Aggregator.Stop()
	e.deps.Machine.Stop()
	e.deps.Scheduler.Stop()

	// The machine has exited, so no transition can arrive anymore and the
	// archive queue can be closed and drained.
	e.mu.Lock()
	archive, done := e.archive, e.archiveDone
	e.archive, e.archiveDone = nil, nil
	e.mu.Unlock()
	if archive != nil {
		close(archive)
		<-done
	}

	e.logger.Info().Msg("emergency engine stopped")
}

// loadPhrases primes the matcher with the persisted catalog, falling back
// to the built-in multilingual defaults for a fresh user.
func (e *Engine) loadPhrases(ctx context.Context) error {
	if e.deps.Phrases == nil {
		return nil
	}
	phrases, err := e.deps.Phrases.LoadAll(ctx, e.config.UserID)
	if err != nil {
		return fmt.Errorf("loading trigger phrases: %w", err)
	}
	if len(phrases) == 0 {
		phrases = phrase.DefaultPhrases()
	}
	if err := e.deps.Matcher.Replace(phrases); err != nil {
		return fmt.Errorf("priming phrase matcher: %w", err)
	}
	return nil
}

// ReplacePhrases persists a new trigger-phrase catalog and swaps it into
// the live matcher.
func (e *Engine) ReplacePhrases(ctx context.Context, phrases []phrase.TriggerPhrase) error {
	if err := e.deps.Matcher.Replace(phrases); err != nil {
		return err
	}
	if e.deps.Phrases == nil {
		return nil
	}
	return e.deps.Phrases.ReplaceAll(ctx, e.config.UserID, phrases)
}

// SubmitUtterance feeds a recognized utterance into the pipeline.
func (e *Engine) SubmitUtterance(utterance string) {
	e.deps.Aggregator.SubmitUtterance(utterance, time.Now())
}

// SubmitTap feeds one panic tap into the pipeline.
func (e *Engine) SubmitTap() {
	e.deps.Aggregator.SubmitTap(time.Now())
}

// SubmitManual raises a user-initiated trigger.
func (e *Engine) SubmitManual(kind trigger.Kind) {
	e.deps.Aggregator.SubmitManual(kind, time.Now())
}

// SubmitWearableSample runs anomaly detection on a biometric sample and
// feeds any anomaly into the pipeline.
func (e *Engine) SubmitWearableSample(sample wearable.Sample) {
	anomaly := e.deps.Detector.Check(sample)
	if anomaly == nil {
		return
	}
	e.deps.Aggregator.SubmitAnomaly(*anomaly)
}

// SubmitLocation feeds a location sample directly, bypassing the monitor.
// Exposed for transports that push positions instead of streaming them.
func (e *Engine) SubmitLocation(sample location.Sample) {
	if e.deps.Locations != nil {
		e.deps.Locations.Push(sample)
	}
	e.handleSample(sample)
}

// Cancel aborts the countdown or active session.
func (e *Engine) Cancel(ctx context.Context) error {
	return e.deps.Machine.Cancel(ctx)
}

// Resolve marks the active session safely concluded.
func (e *Engine) Resolve(ctx context.Context) error {
	return e.deps.Machine.Resolve(ctx)
}

// ConfirmEmergencyDial records a user-confirmed call to emergency services
// and hands the call to the dial gateway.
func (e *Engine) ConfirmEmergencyDial(ctx context.Context) error {
	if err := e.deps.Machine.ConfirmEmergencyDial(ctx); err != nil {
		return err
	}

	placed := false
	if e.deps.Dialer != nil {
		var err error
		placed, err = e.deps.Dialer.Dial(ctx, e.config.EmergencyNumber)
		if err != nil {
			e.logger.Error().
				Err(err).
				Str("number", e.config.EmergencyNumber).
				Msg("emergency dial failed")
		}
	}

	event := audit.Event{
		Type:   audit.EventDialConfirmed,
		UserID: e.config.UserID,
		Details: map[string]string{
			"number": e.config.EmergencyNumber,
			"placed": strconv.FormatBool(placed),
		},
		At: time.Now().UTC(),
	}
	if s := e.deps.Machine.Current(ctx); s != nil {
		event.SessionID = s.ID
	}
	e.record(event)
	return nil
}

// CurrentSession returns a snapshot of the session in progress, if any.
func (e *Engine) CurrentSession(ctx context.Context) *session.Session {
	return e.deps.Machine.Current(ctx)
}

func (e *Engine) handleSample(sample location.Sample) {
	events := e.deps.Registry.Observe(sample)
	for _, event := range events {
		e.logger.Info().
			Str("zone", event.Zone.Name).
			Str("type", string(event.Type)).
			Msg("geofence boundary crossed")
		e.record(audit.Event{
			Type:   audit.EventZoneCrossed,
			UserID: e.config.UserID,
			Details: map[string]string{
				"zone_id":   event.Zone.ID,
				"zone_name": event.Zone.Name,
				"zone_kind": string(event.Zone.Kind),
				"crossing":  string(event.Type),
			},
			At: event.Sample.Timestamp,
		})
		e.deps.Aggregator.SubmitGeofence(event)
	}
}

// handleTransition hands the transition to the archive worker. It runs on
// the state machine's actor goroutine and must not block; the worker
// processes transitions strictly in emission order, so a slow archive of
// an earlier snapshot can never overwrite a later state.
func (e *Engine) handleTransition(tr session.Transition) {
	e.mu.Lock()
	archive := e.archive
	e.mu.Unlock()
	if archive == nil {
		return
	}

	select {
	case archive <- tr:
	default:
		e.logger.Error().
			Str("session_id", tr.Session.ID).
			Msg("archive queue full, dropping transition")
	}
}

// archiveLoop archives session snapshots and emits audit events, one
// transition at a time in the order the machine emitted them.
func (e *Engine) archiveLoop(transitions <-chan session.Transition, done chan struct{}) {
	defer close(done)

	for tr := range transitions {
		if e.deps.Sessions != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			s := tr.Session
			if err := e.deps.Sessions.Save(ctx, &s); err != nil {
				e.logger.Error().Err(err).Str("session_id", s.ID).Msg("failed to archive session")
			}
			cancel()
		}

		e.record(auditEventFor(tr, e.config.UserID))
	}
}

func (e *Engine) record(event audit.Event) {
	if e.deps.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.deps.Audit.Record(ctx, event); err != nil {
		e.logger.Warn().Err(err).Str("type", string(event.Type)).Msg("failed to record audit event")
	}
}

func auditEventFor(tr session.Transition, userID string) audit.Event {
	event := audit.Event{
		UserID:    userID,
		SessionID: tr.Session.ID,
		Details: map[string]string{
			"from":   string(tr.From),
			"to":     string(tr.To),
			"reason": string(tr.Reason),
			"kind":   string(tr.Session.Kind),
		},
		At: tr.At,
	}

	switch {
	case tr.Reason == session.ReasonUpgraded:
		event.Type = audit.EventSessionUpgraded
	case tr.To == session.StateActive:
		event.Type = audit.EventSessionActivated
	case tr.To.Terminal():
		event.Type = audit.EventSessionEnded
	default:
		event.Type = audit.EventSessionStarted
	}
	return event
}
