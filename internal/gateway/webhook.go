package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadieapp/roadie/internal/contact"
	"github.com/roadieapp/roadie/internal/resilience"
)

// WebhookConfig holds configuration for the webhook notifier.
type WebhookConfig struct {
	// SMSEndpoint receives SMS delivery requests.
	SMSEndpoint string

	// CallEndpoint receives voice call delivery requests.
	CallEndpoint string

	// APIKey is sent as a bearer token on every delivery request.
	APIKey string
}

// deliveryRequest is the JSON body posted to a delivery endpoint.
type deliveryRequest struct {
	To         string `json:"to"`
	Channel    string `json:"channel"`
	Message    string `json:"message"`
	SessionID  string `json:"sessionId"`
	NoticeKind string `json:"noticeKind"`
}

// WebhookNotifier delivers notices by posting to external SMS and call
// webhooks through resilient per-channel clients.
type WebhookNotifier struct {
	config     WebhookConfig
	smsClient  *resilience.Client
	callClient *resilience.Client
	registry   *resilience.Registry
	metrics    *DeliveryMetrics
	logger     zerolog.Logger
}

// NewWebhookNotifier creates a webhook notifier. Each channel gets its own
// circuit breaker so a dead SMS provider does not block voice calls.
func NewWebhookNotifier(cfg WebhookConfig, registry *resilience.Registry, logger zerolog.Logger) *WebhookNotifier {
	smsCfg := resilience.DefaultClientConfig("sms")
	smsCfg.Registry = registry
	callCfg := resilience.DefaultClientConfig("call")
	callCfg.Registry = registry

	metrics, err := NewDeliveryMetrics()
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize delivery metrics")
	}

	return &WebhookNotifier{
		config:     cfg,
		smsClient:  resilience.NewClient(smsCfg),
		callClient: resilience.NewClient(callCfg),
		registry:   registry,
		metrics:    metrics,
		logger:     logger,
	}
}

// Notify delivers the notice on the contact's preferred channels. For a
// contact preferring both, one successful channel is enough.
func (w *WebhookNotifier) Notify(ctx context.Context, n Notice) error {
	message := RenderMessage(n)

	var channels []string
	switch n.Contact.NotifyVia {
	case contact.NotifySMS:
		channels = []string{"sms"}
	case contact.NotifyCall:
		channels = []string{"call"}
	default:
		channels = []string{"sms", "call"}
	}

	delivered := false
	var lastErr error
	for _, channel := range channels {
		if err := w.deliver(ctx, channel, n, message); err != nil {
			lastErr = err
			w.logger.Warn().
				Err(err).
				Str("channel", channel).
				Str("contact_id", n.Contact.ID).
				Msg("notice delivery failed on channel")
			continue
		}
		delivered = true
	}

	if !delivered {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, lastErr)
	}
	return nil
}

func (w *WebhookNotifier) deliver(ctx context.Context, channel string, n Notice, message string) (err error) {
	endpoint := w.config.SMSEndpoint
	client := w.smsClient
	if channel == "call" {
		endpoint = w.config.CallEndpoint
		client = w.callClient
	}

	if w.metrics != nil {
		start := time.Now()
		defer func() {
			w.metrics.RecordDelivery(channel, n.Kind, time.Since(start), err)
		}()
	}

	body, err := json.Marshal(deliveryRequest{
		To:         n.Contact.Phone,
		Channel:    channel,
		Message:    message,
		SessionID:  n.Session.ID,
		NoticeKind: string(n.Kind),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.config.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		w.record(channel, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		err := fmt.Errorf("delivery endpoint returned status %d", resp.StatusCode)
		w.record(channel, err)
		return err
	}

	w.record(channel, nil)
	return nil
}

func (w *WebhookNotifier) record(channel string, err error) {
	if w.registry == nil {
		return
	}
	if err != nil {
		w.registry.RecordFailure(channel, err)
		return
	}
	w.registry.RecordSuccess(channel)
}

// Ensure WebhookNotifier implements Notifier interface.
var _ Notifier = (*WebhookNotifier)(nil)
