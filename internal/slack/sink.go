package slack

import (
	"bytes"
	"context"
	"net/http"
	"time"

	errspkg "github.com/brysontyrrell/voltron/internal/errors"
	"github.com/brysontyrrell/voltron/internal/logging"
)

const defaultTimeout = 15 * time.Second

// Sink delivers rendered messages to a channel's inbound webhook. Delivery is
// at-most-once per invocation: failures surface to the caller, no local retry.
type Sink struct {
	webhookURL string
	client     *http.Client
	logger     logging.ServiceLogger
	now        func() time.Time
}

// NewSink builds a Sink posting to the given webhook URL.
func NewSink(webhookURL string, logger logging.ServiceLogger) *Sink {
	return &Sink{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: defaultTimeout},
		logger:     logger,
		now:        time.Now,
	}
}

// Deliver posts the message to the webhook. A transport error or non-2xx
// response returns a *TransportError logged with the target endpoint.
func (s *Sink) Deliver(ctx context.Context, msg *Message) error {
	payload, err := msg.MarshalPayload(s.now().UTC())
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("Unable to post to Slack", err, logging.LogFields{"endpoint": s.webhookURL})
		return errspkg.Unreachable("post slack message", s.webhookURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("Slack webhook rejected message", nil, logging.LogFields{
			"endpoint":    s.webhookURL,
			"status_code": resp.StatusCode,
		})
		return errspkg.Rejected("post slack message", s.webhookURL, resp.StatusCode)
	}

	s.logger.Info("Posted Slack message", logging.LogFields{"title": msg.Title})
	return nil
}
