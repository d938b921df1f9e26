package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadieapp/roadie/internal/location"
	"github.com/roadieapp/roadie/internal/session"
	"github.com/roadieapp/roadie/internal/trigger"
)

// stubProvider serves a fixed position, or an error when Err is set.
type stubProvider struct {
	sample location.Sample
	err    error
}

func (p *stubProvider) Current(context.Context) (*location.Sample, error) {
	if p.err != nil {
		return nil, p.err
	}
	s := p.sample
	return &s, nil
}

func (p *stubProvider) Watch(context.Context) (<-chan location.Sample, error) {
	ch := make(chan location.Sample)
	close(ch)
	return ch, nil
}

// recorder buffers transitions emitted by the machine for assertions.
type recorder struct {
	mu          sync.Mutex
	transitions []session.Transition
}

func (r *recorder) record(t session.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
}

func (r *recorder) snapshot() []session.Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.Transition, len(r.transitions))
	copy(out, r.transitions)
	return out
}

func (r *recorder) waitFor(t *testing.T, n int) []session.Transition {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := r.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d transitions, got %d", n, len(r.snapshot()))
	return nil
}

func testConfig() session.Config {
	return session.Config{
		UserID:           "usr_test",
		Countdown:        40 * time.Millisecond,
		UrgentCountdown:  80 * time.Millisecond,
		AutoResolveAfter: time.Hour,
		LocationTimeout:  time.Second,
	}
}

func newTestMachine(t *testing.T, cfg session.Config, provider location.Provider) (*session.Machine, *recorder) {
	t.Helper()
	m := session.NewMachine(cfg, provider, zerolog.Nop())
	r := &recorder{}
	m.OnTransition(r.record)
	m.Start(context.Background())
	t.Cleanup(m.Stop)
	return m, r
}

func generalTrigger() trigger.Trigger {
	return trigger.Trigger{
		Source:     trigger.SourceVoice,
		Kind:       trigger.KindGeneral,
		Confidence: 0.9,
		OccurredAt: time.Now(),
	}
}

func TestMachine_CountdownThenActive(t *testing.T) {
	m, r := newTestMachine(t, testConfig(), &stubProvider{
		sample: location.Sample{Lat: 52.52, Lon: 13.405, Timestamp: time.Now()},
	})

	m.HandleTrigger(generalTrigger())

	got := r.waitFor(t, 2)
	assert.Equal(t, session.StateIdle, got[0].From)
	assert.Equal(t, session.StateCountingDown, got[0].To)
	assert.Equal(t, session.ReasonTrigger, got[0].Reason)

	assert.Equal(t, session.StateCountingDown, got[1].From)
	assert.Equal(t, session.StateActive, got[1].To)
	assert.Equal(t, session.ReasonCountdownElapsed, got[1].Reason)

	current := m.Current(context.Background())
	require.NotNil(t, current)
	assert.Equal(t, session.StateActive, current.State)
	require.NotNil(t, current.Location)
	assert.InDelta(t, 52.52, current.Location.Lat, 1e-9)
	require.NotNil(t, current.ActivatedAt)
}

func TestMachine_CancelDuringCountdown(t *testing.T) {
	m, r := newTestMachine(t, testConfig(), &stubProvider{})

	m.HandleTrigger(generalTrigger())
	r.waitFor(t, 1)

	require.NoError(t, m.Cancel(context.Background()))

	got := r.waitFor(t, 2)
	assert.Equal(t, session.StateCancelled, got[1].To)
	assert.Equal(t, session.ReasonCancelled, got[1].Reason)

	// The countdown must not fire after cancellation.
	time.Sleep(80 * time.Millisecond)
	for _, tr := range r.snapshot() {
		assert.NotEqual(t, session.StateActive, tr.To)
	}
}

func TestMachine_SilentActivatesImmediately(t *testing.T) {
	m, r := newTestMachine(t, testConfig(), &stubProvider{})

	m.HandleTrigger(trigger.Trigger{
		Source:     trigger.SourceVoice,
		Kind:       trigger.KindSilent,
		Confidence: 0.9,
		OccurredAt: time.Now(),
	})

	got := r.waitFor(t, 1)
	assert.Equal(t, session.StateIdle, got[0].From)
	assert.Equal(t, session.StateActive, got[0].To)
	assert.Equal(t, session.ReasonTrigger, got[0].Reason)

	current := m.Current(context.Background())
	require.NotNil(t, current)
	assert.Equal(t, trigger.KindSilent, current.Kind)
}

func TestMachine_UpgradeMidCountdown(t *testing.T) {
	cfg := testConfig()
	cfg.Countdown = 200 * time.Millisecond
	cfg.UrgentCountdown = 200 * time.Millisecond
	m, r := newTestMachine(t, cfg, &stubProvider{})

	m.HandleTrigger(generalTrigger())
	r.waitFor(t, 1)

	m.HandleTrigger(trigger.Trigger{
		Source:     trigger.SourceWearable,
		Kind:       trigger.KindMedical,
		Confidence: 0.95,
		OccurredAt: time.Now(),
	})

	got := r.waitFor(t, 2)
	assert.Equal(t, session.ReasonUpgraded, got[1].Reason)
	assert.Equal(t, session.StateCountingDown, got[1].To)
	assert.Equal(t, trigger.KindMedical, got[1].Session.Kind)
	assert.Equal(t, 0.95, got[1].Session.Confidence)

	got = r.waitFor(t, 3)
	assert.Equal(t, session.StateActive, got[2].To)
	assert.Equal(t, trigger.KindMedical, got[2].Session.Kind)
}

func TestMachine_LowerSeverityAbsorbed(t *testing.T) {
	cfg := testConfig()
	cfg.Countdown = 200 * time.Millisecond
	m, r := newTestMachine(t, cfg, &stubProvider{})

	m.HandleTrigger(generalTrigger())
	r.waitFor(t, 1)

	m.HandleTrigger(trigger.Trigger{
		Source:     trigger.SourceGeofence,
		Kind:       trigger.KindLocationOnly,
		Confidence: 1.0,
		OccurredAt: time.Now(),
	})

	time.Sleep(50 * time.Millisecond)
	got := r.snapshot()
	require.Len(t, got, 1)
	current := m.Current(context.Background())
	require.NotNil(t, current)
	assert.Equal(t, trigger.KindGeneral, current.Kind)
}

func TestMachine_SameKindRaisesConfidence(t *testing.T) {
	cfg := testConfig()
	cfg.Countdown = 200 * time.Millisecond
	m, r := newTestMachine(t, cfg, &stubProvider{})

	m.HandleTrigger(trigger.Trigger{
		Source:     trigger.SourceGesture,
		Kind:       trigger.KindGeneral,
		Confidence: 0.8,
		OccurredAt: time.Now(),
	})
	r.waitFor(t, 1)

	m.HandleTrigger(trigger.Trigger{
		Source:     trigger.SourceManual,
		Kind:       trigger.KindGeneral,
		Confidence: 1.0,
		OccurredAt: time.Now(),
	})

	deadline := time.Now().Add(time.Second)
	for {
		current := m.Current(context.Background())
		require.NotNil(t, current)
		if current.Confidence == 1.0 {
			assert.Equal(t, trigger.KindGeneral, current.Kind)
			break
		}
		require.True(t, time.Now().Before(deadline), "confidence never raised by corroborating trigger")
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMachine_ResolveRequiresActive(t *testing.T) {
	cfg := testConfig()
	cfg.Countdown = 200 * time.Millisecond
	m, r := newTestMachine(t, cfg, &stubProvider{})

	assert.ErrorIs(t, m.Resolve(context.Background()), session.ErrStateConflict)

	m.HandleTrigger(generalTrigger())
	r.waitFor(t, 1)
	assert.ErrorIs(t, m.Resolve(context.Background()), session.ErrStateConflict)

	got := r.waitFor(t, 2)
	assert.Equal(t, session.StateActive, got[1].To)

	require.NoError(t, m.Resolve(context.Background()))
	got = r.waitFor(t, 3)
	assert.Equal(t, session.StateResolved, got[2].To)
	assert.Equal(t, session.ReasonResolved, got[2].Reason)
}

func TestMachine_ConfirmEmergencyDial(t *testing.T) {
	cfg := testConfig()
	cfg.Countdown = 10 * time.Millisecond
	m, r := newTestMachine(t, cfg, &stubProvider{})

	assert.ErrorIs(t, m.ConfirmEmergencyDial(context.Background()), session.ErrStateConflict)

	m.HandleTrigger(generalTrigger())
	r.waitFor(t, 2)

	require.NoError(t, m.ConfirmEmergencyDial(context.Background()))
	current := m.Current(context.Background())
	require.NotNil(t, current)
	assert.True(t, current.EmergencyServicesCalled)
}

func TestMachine_AutoResolveAfterExpiry(t *testing.T) {
	cfg := testConfig()
	cfg.Countdown = 10 * time.Millisecond
	cfg.AutoResolveAfter = 60 * time.Millisecond
	m, r := newTestMachine(t, cfg, &stubProvider{})

	m.HandleTrigger(generalTrigger())

	got := r.waitFor(t, 3)
	assert.Equal(t, session.StateResolved, got[2].To)
	assert.Equal(t, session.ReasonAutoExpired, got[2].Reason)

	current := m.Current(context.Background())
	require.NotNil(t, current)
	require.NotNil(t, current.EndedAt)
}

func TestMachine_ActivatesWithoutLocationFix(t *testing.T) {
	cfg := testConfig()
	cfg.Countdown = 10 * time.Millisecond
	m, r := newTestMachine(t, cfg, &stubProvider{err: errors.New("gps unavailable")})

	m.HandleTrigger(generalTrigger())

	got := r.waitFor(t, 2)
	assert.Equal(t, session.StateActive, got[1].To)
	assert.Nil(t, got[1].Session.Location)
}

func TestMachine_NewSessionAfterTerminal(t *testing.T) {
	m, r := newTestMachine(t, testConfig(), &stubProvider{})

	m.HandleTrigger(generalTrigger())
	r.waitFor(t, 1)
	require.NoError(t, m.Cancel(context.Background()))
	r.waitFor(t, 2)

	m.HandleTrigger(generalTrigger())
	got := r.waitFor(t, 3)
	assert.Equal(t, session.StateCountingDown, got[2].To)
	assert.NotEqual(t, got[0].Session.ID, got[2].Session.ID)
}

func TestMachine_CancelWhenIdle(t *testing.T) {
	m, _ := newTestMachine(t, testConfig(), &stubProvider{})
	assert.ErrorIs(t, m.Cancel(context.Background()), session.ErrStateConflict)
}
