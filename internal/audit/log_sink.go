package audit

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink writes audit events to the structured log. It is the fallback
// for local development, where no Pub/Sub topic exists.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a log-backed audit sink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Record writes the event as one log line.
func (s *LogSink) Record(_ context.Context, event Event) error {
	entry := s.logger.Info().
		Str("audit_type", string(event.Type)).
		Str("user_id", event.UserID).
		Time("at", event.At)
	if event.SessionID != "" {
		entry = entry.Str("session_id", event.SessionID)
	}
	for k, v := range event.Details {
		entry = entry.Str(k, v)
	}
	entry.Msg("audit event")
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error {
	return nil
}

// Ensure LogSink implements Sink interface.
var _ Sink = (*LogSink)(nil)
