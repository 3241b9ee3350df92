package pipeline

import (
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/brysontyrrell/voltron/internal/dispatch"
	"github.com/brysontyrrell/voltron/internal/logging"
	"github.com/brysontyrrell/voltron/internal/slack"
	"github.com/brysontyrrell/voltron/internal/webhook"
)

// NotifierHandlerName identifies the chat notification consumer on the router.
const NotifierHandlerName = "slack-notifier"

// Notifier consumes webhook events and delivers chat notifications.
//
// Unparseable payloads and events without a registered transformer are
// acknowledged and dropped. Transformer and delivery failures are returned
// so the router can surface them.
type Notifier struct {
	table   *dispatch.Table
	sink    *slack.Sink
	metrics *OutcomeMetrics
	logger  logging.ServiceLogger
}

// NewNotifier creates the notification consumer. Metrics may be nil.
func NewNotifier(table *dispatch.Table, sink *slack.Sink, metrics *OutcomeMetrics, logger logging.ServiceLogger) *Notifier {
	return &Notifier{
		table:   table,
		sink:    sink,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle processes one webhook event message.
func (n *Notifier) Handle(msg *message.Message) error {
	env, err := webhook.Parse(msg.Payload)
	if err != nil {
		n.logger.Info("discarded unparseable event", logging.LogFields{
			"message_uuid": msg.UUID,
			"reason":       err.Error(),
		})
		n.metrics.Observe(NotifierHandlerName, "parse_error")
		return nil
	}

	payload, outcome, err := n.table.Dispatch(env)
	if err != nil {
		n.metrics.Observe(NotifierHandlerName, "transform_failed")
		return err
	}

	switch outcome {
	case dispatch.Ignored:
		n.logger.Info("ignored event", logging.LogFields{
			"event_type": env.Webhook.WebhookEvent,
		})
		n.metrics.Observe(NotifierHandlerName, outcome.String())
		return nil
	case dispatch.Unsupported:
		n.logger.Info("no transformer registered for event", logging.LogFields{
			"event_type": env.Webhook.WebhookEvent,
		})
		n.metrics.Observe(NotifierHandlerName, outcome.String())
		return nil
	}

	if err := n.sink.Deliver(msg.Context(), payload); err != nil {
		n.metrics.Observe(NotifierHandlerName, "delivery_failed")
		return err
	}

	n.logger.Debug("delivered notification", logging.LogFields{
		"event_type": env.Webhook.WebhookEvent,
		"title":      payload.Title,
	})
	n.metrics.Observe(NotifierHandlerName, outcome.String())
	return nil
}
