package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/taskboard/ports"
	"github.com/redis/go-redis/v9"
)

const (
	// TopicLogout carries LogoutEvent payloads
	TopicLogout = "taskboard.logout"

	// TopicUserDeleted carries UserDeletedEvent payloads
	TopicUserDeleted = "taskboard.user_deleted"
)

// LogoutEvent represents a logout event
type LogoutEvent struct {
	UserID     string    `json:"user_id"`
	TokenID    string    `json:"token_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserDeletedEvent is emitted when an admin removes an account
type UserDeletedEvent struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

// NewRedisStreamPublisher builds a Redis Streams publisher on an existing client
func NewRedisStreamPublisher(client redis.UniversalClient, logger watermill.LoggerAdapter) (message.Publisher, error) {
	pub, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: client,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis stream publisher: %w", err)
	}
	return pub, nil
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, userID, tokenID string) error {
	return p.publish(ctx, TopicLogout, LogoutEvent{
		UserID:     userID,
		TokenID:    tokenID,
		OccurredAt: time.Now().UTC(),
	})
}

// PublishUserDeleted publishes a user-deleted event
func (p *WatermillPublisher) PublishUserDeleted(ctx context.Context, userID string) error {
	return p.publish(ctx, TopicUserDeleted, UserDeletedEvent{
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	})
}

// Close closes the underlying publisher
func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher drops every event. Used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) PublishLogout(context.Context, string, string) error { return nil }
func (NopPublisher) PublishUserDeleted(context.Context, string) error    { return nil }
