package ports

import "context"

// EventPublisher publishes events to notify other instances
type EventPublisher interface {
	PublishLogout(ctx context.Context, userID, tokenID string) error
	PublishUserDeleted(ctx context.Context, userID string) error
}
