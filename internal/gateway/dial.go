package gateway

import (
	"context"

	"github.com/rs/zerolog"
)

// Dialer places a voice call to emergency services. Implementations are
// platform bindings supplied by the host; the engine invokes Dial only
// after the user explicitly confirmed the call. The bool reports whether
// the call was placed.
type Dialer interface {
	Dial(ctx context.Context, number string) (bool, error)
}

// LogDialer records confirmed dials in the log without placing a call.
// It is the fallback for deployments with no telephony binding.
type LogDialer struct {
	logger zerolog.Logger
}

// NewLogDialer creates a log-backed dialer.
func NewLogDialer(logger zerolog.Logger) *LogDialer {
	return &LogDialer{logger: logger}
}

// Dial logs the confirmed call and reports it as not placed.
func (d *LogDialer) Dial(_ context.Context, number string) (bool, error) {
	d.logger.Info().
		Str("number", number).
		Msg("emergency dial confirmed, no telephony binding configured")
	return false, nil
}

// Ensure LogDialer implements Dialer interface.
var _ Dialer = (*LogDialer)(nil)
