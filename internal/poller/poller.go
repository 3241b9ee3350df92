// Package poller periodically fetches a configured object from the Jamf Pro
// API and publishes the snapshot, unmodified, onto the poller topic. Poller
// messages are raw API responses and never pass through the notification
// dispatch table.
package poller

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/brysontyrrell/voltron/internal/jamf"
	"github.com/brysontyrrell/voltron/internal/logging"
	"github.com/brysontyrrell/voltron/internal/pipeline"
)

// Poller fetches one configured API object and republishes it.
type Poller struct {
	client         *jamf.Client
	publisher      message.Publisher
	topic          string
	objectEndpoint string
	objectID       string
	logger         logging.ServiceLogger
}

// New creates a Poller targeting /JSSResource/<objectEndpoint>/id/<objectID>.
func New(client *jamf.Client, publisher message.Publisher, topic, objectEndpoint, objectID string, logger logging.ServiceLogger) *Poller {
	return &Poller{
		client:         client,
		publisher:      publisher,
		topic:          topic,
		objectEndpoint: objectEndpoint,
		objectID:       objectID,
		logger:         logger,
	}
}

// Poll performs a single fetch-and-publish cycle. The snapshot payload is
// forwarded byte-for-byte; any fetch or publish failure is returned.
func (p *Poller) Poll(ctx context.Context) error {
	p.logger.Info("Requesting data", logging.LogFields{
		"endpoint":  p.objectEndpoint,
		"object_id": p.objectID,
	})

	snapshot, err := p.client.FetchObject(ctx, p.objectEndpoint, p.objectID)
	if err != nil {
		return err
	}

	p.logger.Info("Publishing snapshot", logging.LogFields{"topic": p.topic})
	return pipeline.Publish(ctx, p.publisher, p.topic, snapshot)
}

// Runner executes a Poller on a fixed interval.
type Runner struct {
	poller   *Poller
	interval time.Duration
	logger   logging.ServiceLogger
}

// NewRunner creates a Runner polling at the given interval.
func NewRunner(poller *Poller, interval time.Duration, logger logging.ServiceLogger) *Runner {
	return &Runner{
		poller:   poller,
		interval: interval,
		logger:   logger,
	}
}

// Run polls immediately and then on every interval tick until the context is
// cancelled. Cycle failures are logged and the next tick proceeds; there is
// no backoff and no retry within a cycle.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if err := r.poller.Poll(ctx); err != nil {
		r.logger.Error("poll cycle failed", err, nil)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.poller.Poll(ctx); err != nil {
				r.logger.Error("poll cycle failed", err, nil)
			}
		}
	}
}
