package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brysontyrrell/voltron/internal/config"
	errspkg "github.com/brysontyrrell/voltron/internal/errors"
	"github.com/brysontyrrell/voltron/internal/transport"
)

func channelService(t *testing.T) *Service {
	t.Helper()

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	cfg := &config.Config{PubSubSystem: "channel", WebhookTopic: "voltron.webhooks"}

	return NewService(context.Background(), cfg, testLogger(), ServiceDependencies{
		Transport: &transport.Transport{Publisher: pubsub, Subscriber: pubsub},
	})
}

func TestService_EndToEnd(t *testing.T) {
	svc := channelService(t)

	received := make(chan *message.Message, 1)
	err := RegisterConsumer(svc, ConsumerRegistration{
		Name:         "test-consumer",
		ConsumeTopic: "voltron.webhooks",
		Handler: func(msg *message.Message) error {
			select {
			case received <- msg:
			default:
			}
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	// The gochannel transport drops messages published before the consumer
	// subscription is live, so publish until one lands.
	deadline := time.After(5 * time.Second)
	var got *message.Message
publishLoop:
	for {
		require.NoError(t, svc.Publish(ctx, "voltron.webhooks", []byte(`{"hello":"world"}`)))
		select {
		case got = <-received:
			break publishLoop
		case <-deadline:
			t.Fatal("no message received before deadline")
		case <-time.After(50 * time.Millisecond):
		}
	}

	assert.Equal(t, `{"hello":"world"}`, string(got.Payload))
	assert.NotEmpty(t, got.UUID)
	assert.NotEmpty(t, got.Metadata["correlation_id"], "default middleware assigns a correlation ID")

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("router did not stop after context cancellation")
	}
}

func TestRegisterConsumer_Validation(t *testing.T) {
	svc := channelService(t)

	handler := func(msg *message.Message) error { return nil }

	err := RegisterConsumer(nil, ConsumerRegistration{Name: "n", ConsumeTopic: "t", Handler: handler})
	assert.ErrorIs(t, err, errspkg.ErrServiceRequired)

	err = RegisterConsumer(svc, ConsumerRegistration{Name: "n", ConsumeTopic: "t"})
	assert.ErrorIs(t, err, errspkg.ErrHandlerRequired)

	err = RegisterConsumer(svc, ConsumerRegistration{ConsumeTopic: "t", Handler: handler})
	assert.ErrorIs(t, err, errspkg.ErrHandlerNameRequired)

	err = RegisterConsumer(svc, ConsumerRegistration{Name: "n", Handler: handler})
	assert.ErrorIs(t, err, errspkg.ErrConsumeTopicRequired)
}

func TestPublish_Validation(t *testing.T) {
	err := Publish(context.Background(), nil, "topic", []byte("x"))
	assert.ErrorIs(t, err, errspkg.ErrPublisherRequired)

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	err = Publish(context.Background(), pubsub, "", []byte("x"))
	assert.ErrorIs(t, err, errspkg.ErrTopicRequired)
}

func TestOutcomeMetrics_RegisterTwice(t *testing.T) {
	metrics := NewOutcomeMetrics(prometheus.NewRegistry())
	require.NoError(t, metrics.Register())
	require.NoError(t, metrics.Register())

	metrics.Observe("test-handler", "dispatched")
}

func TestOutcomeMetrics_NilSafe(t *testing.T) {
	var metrics *OutcomeMetrics
	metrics.Observe("test-handler", "dispatched")
}
