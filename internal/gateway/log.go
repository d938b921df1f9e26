package gateway

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes notices to the structured log. It is the fallback
// for local development, where no delivery webhooks are configured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify writes the rendered notice as one log line.
func (l *LogNotifier) Notify(_ context.Context, n Notice) error {
	l.logger.Info().
		Str("notice_kind", string(n.Kind)).
		Str("contact_id", n.Contact.ID).
		Str("contact_phone", n.Contact.Phone).
		Str("session_id", n.Session.ID).
		Str("message", RenderMessage(n)).
		Msg("notice delivered to log")
	return nil
}

// Ensure LogNotifier implements Notifier interface.
var _ Notifier = (*LogNotifier)(nil)
