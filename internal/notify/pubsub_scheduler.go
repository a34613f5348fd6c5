package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Message attribute values understood by the delivery pipeline.
const (
	actionSchedule  = "schedule"
	actionCancelAll = "cancel_all"
)

// PubSubSchedulerConfig holds configuration for the Pub/Sub scheduler.
type PubSubSchedulerConfig struct {
	ProjectID string
	TopicID   string
	Logger    zerolog.Logger
}

// PubSubScheduler publishes trigger commands to a Pub/Sub topic consumed by
// the push-delivery pipeline. Scheduling is fire-and-forget per trigger; the
// pipeline owns retries beyond publish acknowledgement.
type PubSubScheduler struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicID   string
	logger    zerolog.Logger
}

// NewPubSubScheduler creates a new Pub/Sub-backed scheduler.
func NewPubSubScheduler(ctx context.Context, cfg PubSubSchedulerConfig) (*PubSubScheduler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubScheduler{
		client:    client,
		publisher: client.Publisher(cfg.TopicID),
		topicID:   cfg.TopicID,
		logger:    cfg.Logger,
	}, nil
}

// CancelAll publishes a cancel-all command.
func (s *PubSubScheduler) CancelAll(ctx context.Context) error {
	result := s.publisher.Publish(ctx, &pubsub.Message{
		Attributes: map[string]string{"action": actionCancelAll},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing cancel-all: %w", err)
	}

	s.logger.Debug().Str("topic", s.topicID).Msg("published cancel-all command")
	return nil
}

// Schedule publishes a single trigger command.
func (s *PubSubScheduler) Schedule(ctx context.Context, trigger Trigger) error {
	data, err := json.Marshal(trigger)
	if err != nil {
		return fmt.Errorf("encoding trigger: %w", err)
	}

	result := s.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"action":     actionSchedule,
			"trigger_id": trigger.ID,
			"fire_at":    trigger.At.Format(time.RFC3339),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing trigger %s: %w", trigger.ID, err)
	}

	return nil
}

// Close releases the underlying Pub/Sub client.
func (s *PubSubScheduler) Close() error {
	return s.client.Close()
}
