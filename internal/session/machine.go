package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roadieapp/roadie/internal/location"
	"github.com/roadieapp/roadie/internal/trigger"
)

// Config holds configuration for the state machine.
type Config struct {
	// UserID stamps every session created by this machine.
	UserID string

	// Countdown is the cancellation grace period before escalation starts.
	Countdown time.Duration

	// UrgentCountdown applies to medical, fire and police triggers, which
	// warrant a longer window because false alarms are costlier to cancel
	// after dispatch.
	UrgentCountdown time.Duration

	// AutoResolveAfter closes sessions nobody resolved. Default: 30 minutes.
	AutoResolveAfter time.Duration

	// LocationTimeout bounds the position fix at activation. Activation
	// proceeds with an unknown location when the fix times out.
	LocationTimeout time.Duration
}

// DefaultConfig returns the default state machine configuration.
func DefaultConfig() Config {
	return Config{
		Countdown:        5 * time.Second,
		UrgentCountdown:  10 * time.Second,
		AutoResolveAfter: 30 * time.Minute,
		LocationTimeout:  3 * time.Second,
	}
}

func (c Config) countdownFor(kind trigger.Kind) time.Duration {
	switch kind {
	case trigger.KindSilent, trigger.KindLocationOnly:
		// Covert kinds activate immediately; a visible countdown would
		// defeat their purpose.
		return 0
	case trigger.KindMedical, trigger.KindFire, trigger.KindPolice:
		return c.UrgentCountdown
	default:
		return c.Countdown
	}
}

// command is a synchronous request into the actor goroutine.
type command struct {
	apply func() error
	reply chan error
}

// Machine is the SOS session state machine. All mutation happens on a
// single actor goroutine, so transitions are serialized and the single
// non-terminal session invariant holds without further locking.
type Machine struct {
	config   Config
	provider location.Provider
	logger   zerolog.Logger

	triggers chan trigger.Trigger
	commands chan command

	mu          sync.Mutex
	subscribers []func(Transition)
	cancel      context.CancelFunc
	done        chan struct{}

	// Actor-owned state. Never touched outside the run goroutine once
	// Start has been called.
	current        *Session
	countdownTimer *time.Timer
	expireTimer    *time.Timer
}

// NewMachine creates a session state machine. The provider supplies the
// position fix captured at activation and may be nil when no location
// source is available.
func NewMachine(cfg Config, provider location.Provider, logger zerolog.Logger) *Machine {
	def := DefaultConfig()
	if cfg.Countdown <= 0 {
		cfg.Countdown = def.Countdown
	}
	if cfg.UrgentCountdown <= 0 {
		cfg.UrgentCountdown = def.UrgentCountdown
	}
	if cfg.AutoResolveAfter <= 0 {
		cfg.AutoResolveAfter = def.AutoResolveAfter
	}
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = def.LocationTimeout
	}
	return &Machine{
		config:   cfg,
		provider: provider,
		logger:   logger,
		triggers: make(chan trigger.Trigger, 16),
		commands: make(chan command),
	}
}

// OnTransition registers a transition subscriber. Subscribers run on the
// actor goroutine and must not block; hand off long work to a channel.
func (m *Machine) OnTransition(fn func(Transition)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Start launches the actor goroutine.
func (m *Machine) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(ctx, m.done)
}

// Stop terminates the actor goroutine and waits for it to exit. An
// in-flight session is left as is; restart recovery is the caller's job.
func (m *Machine) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// HandleTrigger feeds one emergency trigger into the machine. It is the
// aggregator's consumer callback and never blocks.
func (m *Machine) HandleTrigger(t trigger.Trigger) {
	select {
	case m.triggers <- t:
	default:
		m.logger.Error().
			Str("kind", string(t.Kind)).
			Msg("trigger queue full, dropping trigger")
	}
}

// Cancel aborts the countdown or an active session. Returns
// ErrStateConflict when no session is in progress.
func (m *Machine) Cancel(ctx context.Context) error {
	return m.do(ctx, func() error {
		if m.current == nil || m.current.State.Terminal() {
			return ErrStateConflict
		}
		m.finish(StateCancelled, ReasonCancelled)
		return nil
	})
}

// Resolve marks an active session as safely concluded. Returns
// ErrStateConflict unless the session is active; a countdown is cancelled,
// not resolved.
func (m *Machine) Resolve(ctx context.Context) error {
	return m.do(ctx, func() error {
		if m.current == nil || m.current.State != StateActive {
			return ErrStateConflict
		}
		m.finish(StateResolved, ReasonResolved)
		return nil
	})
}

// ConfirmEmergencyDial records that the user confirmed placing a call to
// emergency services during the active session.
func (m *Machine) ConfirmEmergencyDial(ctx context.Context) error {
	return m.do(ctx, func() error {
		if m.current == nil || m.current.State != StateActive {
			return ErrStateConflict
		}
		m.current.EmergencyServicesCalled = true
		return nil
	})
}

// Current returns a snapshot of the session in progress, or of the most
// recently ended one. Returns nil when no session has ever started.
func (m *Machine) Current(ctx context.Context) *Session {
	var snapshot *Session
	err := m.do(ctx, func() error {
		if m.current == nil {
			return nil
		}
		s := *m.current
		snapshot = &s
		return nil
	})
	if err != nil {
		return nil
	}
	return snapshot
}

func (m *Machine) do(ctx context.Context, apply func() error) error {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return ErrStateConflict
	}

	cmd := command{apply: apply, reply: make(chan error, 1)}
	select {
	case m.commands <- cmd:
	case <-done:
		return ErrStateConflict
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Machine) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer m.stopTimers()

	for {
		var countdownC, expireC <-chan time.Time
		if m.countdownTimer != nil {
			countdownC = m.countdownTimer.C
		}
		if m.expireTimer != nil {
			expireC = m.expireTimer.C
		}

		select {
		case <-ctx.Done():
			return
		case t := <-m.triggers:
			m.onTrigger(ctx, t)
		case cmd := <-m.commands:
			cmd.reply <- cmd.apply()
		case <-countdownC:
			m.countdownTimer = nil
			m.activate(ctx, ReasonCountdownElapsed)
		case <-expireC:
			m.expireTimer = nil
			m.logger.Warn().Str("session_id", m.current.ID).Msg("session auto-resolved after expiry window")
			m.finish(StateResolved, ReasonAutoExpired)
		}
	}
}

func (m *Machine) onTrigger(ctx context.Context, t trigger.Trigger) {
	if m.current != nil && !m.current.State.Terminal() {
		m.merge(t)
		return
	}

	now := time.Now().UTC()
	m.current = &Session{
		ID:         "sos_" + uuid.New().String()[:22],
		UserID:     m.config.UserID,
		Kind:       t.Kind,
		Source:     t.Source,
		Confidence: t.Confidence,
		State:      StateIdle,
		StartedAt:  now,
	}

	countdown := m.config.countdownFor(t.Kind)
	if countdown <= 0 {
		m.logger.Info().
			Str("session_id", m.current.ID).
			Str("kind", string(t.Kind)).
			Msg("covert trigger, activating without countdown")
		m.activate(ctx, ReasonTrigger)
		return
	}

	m.current.State = StateCountingDown
	m.countdownTimer = time.NewTimer(countdown)
	m.logger.Info().
		Str("session_id", m.current.ID).
		Str("kind", string(t.Kind)).
		Dur("countdown", countdown).
		Msg("session countdown started")
	m.emit(StateIdle, StateCountingDown, ReasonTrigger)
}

// merge folds a trigger into the session in progress. Strictly more
// severe kinds upgrade the session; a same-or-lower kind can still raise
// the confidence. The countdown keeps its original deadline either way.
func (m *Machine) merge(t trigger.Trigger) {
	if !t.Kind.Exceeds(m.current.Kind) {
		if t.Kind == m.current.Kind && t.Confidence > m.current.Confidence {
			m.current.Confidence = t.Confidence
			m.logger.Info().
				Str("session_id", m.current.ID).
				Str("source", string(t.Source)).
				Float64("confidence", t.Confidence).
				Msg("session confidence raised by corroborating trigger")
			return
		}
		m.logger.Debug().
			Str("session_id", m.current.ID).
			Str("kind", string(t.Kind)).
			Msg("trigger absorbed by session in progress")
		return
	}

	m.logger.Info().
		Str("session_id", m.current.ID).
		Str("from", string(m.current.Kind)).
		Str("to", string(t.Kind)).
		Msg("session kind upgraded")
	m.current.Kind = t.Kind
	if t.Confidence > m.current.Confidence {
		m.current.Confidence = t.Confidence
	}
	m.emit(m.current.State, m.current.State, ReasonUpgraded)
}

func (m *Machine) activate(ctx context.Context, reason Reason) {
	from := m.current.State
	now := time.Now().UTC()
	m.current.State = StateActive
	m.current.ActivatedAt = &now
	m.current.Location = m.captureLocation(ctx)

	m.expireTimer = time.NewTimer(m.config.AutoResolveAfter)

	m.logger.Info().
		Str("session_id", m.current.ID).
		Str("kind", string(m.current.Kind)).
		Bool("has_location", m.current.Location != nil).
		Msg("session active, escalation may begin")
	m.emit(from, StateActive, reason)
}

// captureLocation fetches a position fix for the activation. Failure is
// logged and the session proceeds without one; escalation must never wait
// on GPS.
func (m *Machine) captureLocation(ctx context.Context) *location.Sample {
	if m.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, m.config.LocationTimeout)
	defer cancel()

	sample, err := m.provider.Current(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("no position fix at activation")
		return nil
	}
	return sample
}

func (m *Machine) finish(to State, reason Reason) {
	from := m.current.State
	now := time.Now().UTC()
	m.current.State = to
	m.current.EndedAt = &now
	m.stopTimers()
	m.logger.Info().
		Str("session_id", m.current.ID).
		Str("state", string(to)).
		Str("reason", string(reason)).
		Msg("session ended")
	m.emit(from, to, reason)
}

func (m *Machine) stopTimers() {
	if m.countdownTimer != nil {
		m.countdownTimer.Stop()
		m.countdownTimer = nil
	}
	if m.expireTimer != nil {
		m.expireTimer.Stop()
		m.expireTimer = nil
	}
}

func (m *Machine) emit(from, to State, reason Reason) {
	tr := Transition{
		Session: *m.current,
		From:    from,
		To:      to,
		Reason:  reason,
		At:      time.Now().UTC(),
	}
	m.mu.Lock()
	subs := m.subscribers
	m.mu.Unlock()
	for _, fn := range subs {
		fn(tr)
	}
}
