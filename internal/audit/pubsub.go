package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubConfig holds configuration for the Pub/Sub audit sink.
type PubSubConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// PubSubSink publishes audit events to a Pub/Sub topic for downstream
// retention and analysis.
type PubSubSink struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
	logger    zerolog.Logger
}

// NewPubSubSink creates a new Pub/Sub audit sink.
func NewPubSubSink(ctx context.Context, cfg PubSubConfig) (*PubSubSink, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubSink{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		topicName: cfg.TopicName,
		logger:    cfg.Logger,
	}, nil
}

// Record publishes one audit event. It blocks until the server has
// accepted the message or ctx expires.
func (s *PubSubSink) Record(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}

	result := s.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":   string(event.Type),
			"userId": event.UserID,
		},
	})

	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing audit event: %w", err)
	}

	s.logger.Debug().
		Str("message_id", id).
		Str("type", string(event.Type)).
		Msg("audit event published")
	return nil
}

// Close stops the publisher and closes the client.
func (s *PubSubSink) Close() error {
	s.publisher.Stop()
	return s.client.Close()
}

// Ensure PubSubSink implements Sink interface.
var _ Sink = (*PubSubSink)(nil)
