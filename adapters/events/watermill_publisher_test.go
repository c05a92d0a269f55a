package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/require"
)

func TestPublishLogin(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := pubsub.Subscribe(ctx, TopicLogin)
	require.NoError(t, err)

	publisher := NewWatermillPublisher(pubsub)
	require.NoError(t, publisher.PublishLogin(ctx, "a@x.com", "session-1"))

	msg := receive(t, messages)
	defer msg.Ack()

	var event SessionEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	require.Equal(t, "a@x.com", event.Identity)
	require.Equal(t, "session-1", event.SessionID)
}

func TestPublishRegistered(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := pubsub.Subscribe(ctx, TopicRegistered)
	require.NoError(t, err)

	publisher := NewWatermillPublisher(pubsub)
	require.NoError(t, publisher.PublishRegistered(ctx, "a@x.com", "cred-1"))

	msg := receive(t, messages)
	defer msg.Ack()

	var event RegisteredEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	require.Equal(t, "a@x.com", event.Identity)
	require.Equal(t, "cred-1", event.CredentialID)
}

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-messages:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return nil
	}
}
