package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errspkg "github.com/brysontyrrell/voltron/internal/errors"
	"github.com/brysontyrrell/voltron/internal/jamf"
	"github.com/brysontyrrell/voltron/internal/logging"
)

func testLogger() logging.ServiceLogger {
	return logging.NewWatermillServiceLogger(watermill.NopLogger{})
}

type capturePublisher struct {
	mu       sync.Mutex
	topic    string
	messages []*message.Message
	err      error
}

func (p *capturePublisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topic = topic
	p.messages = append(p.messages, messages...)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) published() []*message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*message.Message(nil), p.messages...)
}

const smartGroupSnapshot = `{"computer_group":{"id":7,"name":"Out of Scope","computers":[{"id":42,"serial_number":"C02ABC123"}]}}`

func pollServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/JSSResource/computergroups/id/7", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(smartGroupSnapshot))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPoll_PublishesSnapshotUnmodified(t *testing.T) {
	server := pollServer(t)
	client := jamf.New(server.URL, "api", "secret", "computers", testLogger())
	publisher := &capturePublisher{}

	p := New(client, publisher, "voltron.poller", "computergroups", "7", testLogger())
	require.NoError(t, p.Poll(context.Background()))

	assert.Equal(t, "voltron.poller", publisher.topic)
	require.Len(t, publisher.messages, 1)
	assert.Equal(t, smartGroupSnapshot, string(publisher.messages[0].Payload))
	assert.NotEmpty(t, publisher.messages[0].UUID)
}

func TestPoll_SurfacesFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := jamf.New(server.URL, "api", "secret", "computers", testLogger())
	publisher := &capturePublisher{}

	p := New(client, publisher, "voltron.poller", "computergroups", "7", testLogger())
	err := p.Poll(context.Background())

	var transportErr *errspkg.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, errspkg.KindRejected, transportErr.Kind)
	assert.Empty(t, publisher.messages, "nothing published after a failed fetch")
}

func TestPoll_SurfacesPublishFailure(t *testing.T) {
	server := pollServer(t)
	client := jamf.New(server.URL, "api", "secret", "computers", testLogger())
	publisher := &capturePublisher{err: errors.New("broker unavailable")}

	p := New(client, publisher, "voltron.poller", "computergroups", "7", testLogger())
	err := p.Poll(context.Background())

	assert.ErrorContains(t, err, "broker unavailable")
}

func TestRunner_PollsImmediatelyAndStopsOnCancel(t *testing.T) {
	server := pollServer(t)
	client := jamf.New(server.URL, "api", "secret", "computers", testLogger())
	publisher := &capturePublisher{}

	p := New(client, publisher, "voltron.poller", "computergroups", "7", testLogger())
	runner := NewRunner(p, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(publisher.published()) == 1
	}, 5*time.Second, 10*time.Millisecond, "first poll happens before the first tick")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after context cancellation")
	}
}

func TestRunner_ContinuesAfterFailedCycle(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(smartGroupSnapshot))
	}))
	t.Cleanup(server.Close)

	client := jamf.New(server.URL, "api", "secret", "computers", testLogger())
	publisher := &capturePublisher{}

	p := New(client, publisher, "voltron.poller", "computergroups", "7", testLogger())
	runner := NewRunner(p, 20*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(publisher.published()) >= 1
	}, 5*time.Second, 10*time.Millisecond, "cycle after a failure still publishes")

	cancel()
	<-done
}
