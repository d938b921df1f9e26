package location_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadieapp/roadie/internal/location"
)

// fakeProvider streams whatever the test feeds it, invalid samples included.
type fakeProvider struct {
	stream chan location.Sample
}

func (f *fakeProvider) Current(context.Context) (*location.Sample, error) {
	return nil, location.ErrLocationUnavailable
}

func (f *fakeProvider) Watch(context.Context) (<-chan location.Sample, error) {
	return f.stream, nil
}

func validSample() location.Sample {
	return location.Sample{Lat: 52.52, Lon: 13.405, Timestamp: time.Now()}
}

func TestMonitor_FansOutSamples(t *testing.T) {
	provider := &fakeProvider{stream: make(chan location.Sample, 4)}
	monitor := location.NewMonitor(provider, location.MonitorConfig{}, zerolog.Nop())

	received := make(chan location.Sample, 4)
	monitor.OnSample(func(s location.Sample) { received <- s })

	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	provider.stream <- validSample()

	select {
	case s := <-received:
		assert.InDelta(t, 52.52, s.Lat, 0.001)
	case <-time.After(time.Second):
		t.Fatal("sample never reached the handler")
	}
}

func TestMonitor_DropsInvalidSamples(t *testing.T) {
	provider := &fakeProvider{stream: make(chan location.Sample, 4)}
	monitor := location.NewMonitor(provider, location.MonitorConfig{}, zerolog.Nop())

	received := make(chan location.Sample, 4)
	monitor.OnSample(func(s location.Sample) { received <- s })

	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	provider.stream <- location.Sample{Lat: 200, Lon: 0, Timestamp: time.Now()}
	provider.stream <- validSample()

	select {
	case s := <-received:
		// Only the valid sample gets through.
		assert.True(t, s.Valid())
	case <-time.After(time.Second):
		t.Fatal("valid sample never reached the handler")
	}
	assert.Empty(t, received)
}

func TestMonitor_StopWaitsForExit(t *testing.T) {
	provider := &fakeProvider{stream: make(chan location.Sample)}
	monitor := location.NewMonitor(provider, location.MonitorConfig{}, zerolog.Nop())

	require.NoError(t, monitor.Start(context.Background()))
	monitor.Stop()

	// Stop is idempotent.
	monitor.Stop()
}

func TestPushProvider_CurrentReturnsLatestFix(t *testing.T) {
	provider := location.NewPushProvider(time.Minute)

	_, err := provider.Current(context.Background())
	assert.ErrorIs(t, err, location.ErrLocationUnavailable)

	provider.Push(validSample())

	sample, err := provider.Current(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 13.405, sample.Lon, 0.001)
}

func TestPushProvider_StaleFixUnavailable(t *testing.T) {
	provider := location.NewPushProvider(10 * time.Millisecond)

	s := validSample()
	s.Timestamp = time.Now().Add(-time.Second)
	provider.Push(s)

	_, err := provider.Current(context.Background())
	assert.ErrorIs(t, err, location.ErrLocationUnavailable)
}

func TestPushProvider_WatchDeliversPushes(t *testing.T) {
	provider := location.NewPushProvider(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := provider.Watch(ctx)
	require.NoError(t, err)

	provider.Push(validSample())

	select {
	case s := <-stream:
		assert.True(t, s.Valid())
	case <-time.After(time.Second):
		t.Fatal("pushed sample never reached the watcher")
	}

	cancel()
	for range stream { //nolint:revive // drain until the provider closes it
	}
}

func TestPoller_WatchEmitsCurrent(t *testing.T) {
	source := location.NewPushProvider(time.Minute)
	source.Push(validSample())

	poller := &location.Poller{
		Source:   source,
		Interval: 5 * time.Millisecond,
		Logger:   zerolog.Nop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := poller.Watch(ctx)
	require.NoError(t, err)

	select {
	case s := <-stream:
		assert.InDelta(t, 52.52, s.Lat, 0.001)
	case <-time.After(time.Second):
		t.Fatal("poller never emitted a sample")
	}
}
