package escalation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roadieapp/roadie/internal/contact"
	"github.com/roadieapp/roadie/internal/gateway"
	"github.com/roadieapp/roadie/internal/medical"
	"github.com/roadieapp/roadie/internal/session"
)

// Config holds configuration for the escalation scheduler.
type Config struct {
	// SecondaryDelay is the grace period before the secondary wave fires.
	// Default: 30 seconds.
	SecondaryDelay time.Duration

	// RetryDelay separates a failed attempt from its single retry.
	// Default: 2 seconds.
	RetryDelay time.Duration

	// DispatchTimeout bounds one delivery attempt. Default: 15 seconds.
	DispatchTimeout time.Duration
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		SecondaryDelay:  30 * time.Second,
		RetryDelay:      2 * time.Second,
		DispatchTimeout: 15 * time.Second,
	}
}

// activeRun is the in-flight escalation for one session.
type activeRun struct {
	session session.Session
	cancel  context.CancelFunc

	mu       sync.Mutex
	notified map[string]contact.Contact // contacts that received the alert
}

func (r *activeRun) markNotified(c contact.Contact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified[c.ID] = c
}

func (r *activeRun) notifiedContacts() []contact.Contact {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]contact.Contact, 0, len(r.notified))
	for _, c := range r.notified {
		out = append(out, c)
	}
	return out
}

// Scheduler drives tiered contact notification off session transitions.
// Escalation is idempotent per session: repeated activation transitions
// for the same session start exactly one run.
type Scheduler struct {
	contacts contact.Repository
	medical  *medical.Service
	notifier gateway.Notifier
	repo     Repository
	config   Config
	logger   zerolog.Logger

	mu     sync.Mutex
	runs   map[string]*activeRun // session ID -> run
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates an escalation scheduler. The medical service may be
// nil when profiles are not configured.
func NewScheduler(
	contacts contact.Repository,
	med *medical.Service,
	notifier gateway.Notifier,
	repo Repository,
	cfg Config,
	logger zerolog.Logger,
) *Scheduler {
	def := DefaultConfig()
	if cfg.SecondaryDelay <= 0 {
		cfg.SecondaryDelay = def.SecondaryDelay
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = def.DispatchTimeout
	}
	return &Scheduler{
		contacts: contacts,
		medical:  med,
		notifier: notifier,
		repo:     repo,
		config:   cfg,
		logger:   logger,
		runs:     make(map[string]*activeRun),
	}
}

// Start arms the scheduler. Transitions observed before Start are dropped.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
}

// Stop cancels pending waves and waits for in-flight dispatches.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.ctx, s.cancel = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}

// HandleTransition is the state machine subscriber. It never blocks: all
// delivery work happens on scheduler goroutines.
func (s *Scheduler) HandleTransition(tr session.Transition) {
	switch {
	case tr.To == session.StateActive && tr.From != session.StateActive:
		s.onActive(tr.Session)
	case tr.To == session.StateResolved:
		s.onResolved(tr.Session)
	case tr.To == session.StateCancelled:
		s.onCancelled(tr.Session)
	}
}

func (s *Scheduler) onActive(sess session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		s.logger.Warn().Str("session_id", sess.ID).Msg("scheduler not started, dropping activation")
		return
	}
	if _, exists := s.runs[sess.ID]; exists {
		// Already escalating this session.
		return
	}

	runCtx, cancel := context.WithCancel(s.ctx)
	run := &activeRun{
		session:  sess,
		cancel:   cancel,
		notified: make(map[string]contact.Contact),
	}
	s.runs[sess.ID] = run

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.escalate(runCtx, run)
	}()
}

func (s *Scheduler) onResolved(sess session.Session) {
	run := s.takeRun(sess.ID)
	if run == nil {
		return
	}
	run.cancel()

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return
	}

	// All-clear goes only to contacts who actually got the alert.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sendResolvedNotices(ctx, run)
	}()
}

func (s *Scheduler) onCancelled(sess session.Session) {
	run := s.takeRun(sess.ID)
	if run == nil {
		return
	}
	run.cancel()
	s.logger.Info().Str("session_id", sess.ID).Msg("escalation cancelled with session")
}

func (s *Scheduler) takeRun(sessionID string) *activeRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[sessionID]
	if !ok {
		return nil
	}
	delete(s.runs, sessionID)
	return run
}

func (s *Scheduler) escalate(ctx context.Context, run *activeRun) {
	sess := run.session
	record := &Run{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		StartedAt: time.Now().UTC(),
	}
	if err := s.repo.SaveRun(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("failed to record escalation run")
	}

	all, err := s.contacts.List(ctx, sess.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("failed to load contacts, escalation aborted")
		return
	}
	if len(all) == 0 {
		s.logger.Warn().Str("session_id", sess.ID).Msg("no emergency contacts configured")
		return
	}

	var primaries, secondaries []contact.Contact
	for _, c := range all {
		if c.Tier == contact.TierPrimary {
			primaries = append(primaries, c)
		} else {
			secondaries = append(secondaries, c)
		}
	}

	s.logger.Info().
		Str("session_id", sess.ID).
		Int("primaries", len(primaries)).
		Int("secondaries", len(secondaries)).
		Msg("escalation started")

	// Primaries go out immediately. Each contact dispatches on its own
	// goroutine so one slow delivery never delays the others; launch order
	// follows the repository's priority order, but completion order is
	// not guaranteed: a retrying higher-priority contact must never hold
	// back the rest of the wave.
	var wave sync.WaitGroup
	for _, c := range primaries {
		wave.Add(1)
		go func(c contact.Contact) {
			defer wave.Done()
			s.dispatch(ctx, run, c, gateway.NoticeAlert)
		}(c)
	}
	wave.Wait()

	if len(secondaries) == 0 {
		return
	}

	timer := time.NewTimer(s.config.SecondaryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		s.logger.Info().Str("session_id", sess.ID).Msg("secondary wave cancelled")
		return
	case <-timer.C:
	}

	now := time.Now().UTC()
	record.SecondaryAt = &now
	if err := s.repo.SaveRun(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("failed to record secondary wave")
	}

	for _, c := range secondaries {
		wave.Add(1)
		go func(c contact.Contact) {
			defer wave.Done()
			s.dispatch(ctx, run, c, gateway.NoticeAlert)
		}(c)
	}
	wave.Wait()

	now = time.Now().UTC()
	record.CompletedAt = &now
	if err := s.repo.SaveRun(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("failed to record run completion")
	}
}

// dispatch delivers one notice to one contact, retrying once on failure.
func (s *Scheduler) dispatch(ctx context.Context, run *activeRun, c contact.Contact, kind gateway.NoticeKind) {
	notice := gateway.Notice{
		Kind:    kind,
		Contact: c,
		Session: run.session,
	}
	if kind == gateway.NoticeAlert && s.medical != nil {
		summary, err := s.medical.SummaryFor(ctx, run.session.UserID, c.CanSeeMedicalInfo)
		if err != nil {
			s.logger.Warn().Err(err).Str("contact_id", c.ID).Msg("medical summary unavailable")
		} else {
			notice.MedicalSummary = summary
		}
	}

	if s.attempt(ctx, run, c, notice) {
		return
	}

	// One retry after a short pause, then give up on this contact.
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.config.RetryDelay):
	}
	if !s.attempt(ctx, run, c, notice) {
		s.logger.Error().
			Str("session_id", run.session.ID).
			Str("contact_id", c.ID).
			Str("notice", string(kind)).
			Msg("notice delivery failed after retry")
	}
}

func (s *Scheduler) attempt(ctx context.Context, run *activeRun, c contact.Contact, notice gateway.Notice) bool {
	attemptCtx, cancel := context.WithTimeout(ctx, s.config.DispatchTimeout)
	defer cancel()

	err := s.notifier.Notify(attemptCtx, notice)

	record := &Attempt{
		ID:         "att_" + uuid.New().String()[:22],
		SessionID:  run.session.ID,
		ContactID:  c.ID,
		Tier:       c.Tier,
		NoticeKind: notice.Kind,
		Succeeded:  err == nil,
		At:         time.Now().UTC(),
	}
	if err != nil {
		record.Error = err.Error()
	}
	if saveErr := s.repo.SaveAttempt(ctx, record); saveErr != nil {
		s.logger.Error().Err(saveErr).Str("session_id", run.session.ID).Msg("failed to record delivery attempt")
	}

	if err != nil {
		return false
	}
	if notice.Kind == gateway.NoticeAlert {
		run.markNotified(c)
	}
	return true
}

func (s *Scheduler) sendResolvedNotices(ctx context.Context, run *activeRun) {
	contacts := run.notifiedContacts()
	if len(contacts) == 0 {
		return
	}

	s.logger.Info().
		Str("session_id", run.session.ID).
		Int("contacts", len(contacts)).
		Msg("sending resolved notices")

	var wave sync.WaitGroup
	for _, c := range contacts {
		wave.Add(1)
		go func(c contact.Contact) {
			defer wave.Done()
			s.dispatch(ctx, run, c, gateway.NoticeResolved)
		}(c)
	}
	wave.Wait()
}
