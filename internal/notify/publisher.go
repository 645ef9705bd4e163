package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/gatherly-ai/event-concierge/internal/model"
)

const (
	// StreamName is the name of the notifications stream.
	StreamName = "NOTIFICATIONS"

	// SubjectPrefix is the prefix for all notification subjects.
	SubjectPrefix = "notify"
)

// Notifier is the fan-out contract used by the creation pipeline.
type Notifier interface {
	Publish(ctx context.Context, n model.Notification) error
}

// Publisher publishes notifications to JetStream.
type Publisher struct {
	client *Client
}

// NewPublisher creates a notification publisher.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// EnsureStream ensures the notifications stream exists.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	js := p.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Per-user event notifications",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// Subject returns the subject for a user's notifications.
func Subject(userID string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, userID)
}

// Publish publishes one notification. Callers treat failures as
// non-fatal.
func (p *Publisher) Publish(ctx context.Context, n model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if _, err := p.client.JetStream().Publish(ctx, Subject(n.UserID), data); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}
