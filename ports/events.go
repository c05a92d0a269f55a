package ports

import "context"

// EventPublisher publishes ceremony outcomes to notify other instances
type EventPublisher interface {
	PublishRegistered(ctx context.Context, identity string, credentialID string) error
	PublishLogin(ctx context.Context, identity string, sessionID string) error
	PublishLogout(ctx context.Context, identity string, sessionID string) error
}
