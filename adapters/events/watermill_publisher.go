package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/layer-3/garuda/ports"
)

const (
	TopicRegistered = "garuda.registered"
	TopicLogin      = "garuda.login"
	TopicLogout     = "garuda.logout"
)

// RegisteredEvent announces a completed registration ceremony
type RegisteredEvent struct {
	Identity     string `json:"identity"`
	CredentialID string `json:"credential_id"`
}

// SessionEvent announces a session being created or revoked
type SessionEvent struct {
	Identity  string `json:"identity"`
	SessionID string `json:"session_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishRegistered publishes a registration event
func (p *WatermillPublisher) PublishRegistered(ctx context.Context, identity string, credentialID string) error {
	return p.publish(TopicRegistered, RegisteredEvent{
		Identity:     identity,
		CredentialID: credentialID,
	})
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, identity string, sessionID string) error {
	return p.publish(TopicLogin, SessionEvent{
		Identity:  identity,
		SessionID: sessionID,
	})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, identity string, sessionID string) error {
	return p.publish(TopicLogout, SessionEvent{
		Identity:  identity,
		SessionID: sessionID,
	})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
