package pipeline

import (
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/brysontyrrell/voltron/internal/enrich"
	"github.com/brysontyrrell/voltron/internal/jamf"
	"github.com/brysontyrrell/voltron/internal/logging"
	"github.com/brysontyrrell/voltron/internal/webhook"
)

// PopulatorHandlerName identifies the record population consumer on the router.
const PopulatorHandlerName = "record-populator"

// Populator consumes enrollment events and populates device records from the
// sourcing inventory.
//
// Only ComputerAdded and MobileDeviceEnrolled events trigger a lookup. A
// serial number with no sourced record is a valid no-op. Lookup and update
// failures are returned so the router can surface them.
type Populator struct {
	source  enrich.Source
	client  *jamf.Client
	xmlRoot string
	metrics *OutcomeMetrics
	logger  logging.ServiceLogger
}

// NewPopulator creates the record population consumer. Metrics may be nil.
func NewPopulator(source enrich.Source, client *jamf.Client, xmlRoot string, metrics *OutcomeMetrics, logger logging.ServiceLogger) *Populator {
	return &Populator{
		source:  source,
		client:  client,
		xmlRoot: xmlRoot,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle processes one webhook event message.
func (p *Populator) Handle(msg *message.Message) error {
	env, err := webhook.Parse(msg.Payload)
	if err != nil {
		p.logger.Info("discarded unparseable event", logging.LogFields{
			"message_uuid": msg.UUID,
			"reason":       err.Error(),
		})
		p.metrics.Observe(PopulatorHandlerName, "parse_error")
		return nil
	}

	switch env.Type() {
	case webhook.EventComputerAdded, webhook.EventMobileDeviceEnrolled:
	default:
		p.logger.Debug("event does not trigger record population", logging.LogFields{
			"event_type": env.Webhook.WebhookEvent,
		})
		p.metrics.Observe(PopulatorHandlerName, "not_applicable")
		return nil
	}

	serialNumber, ok := env.SerialNumber()
	if !ok {
		p.logger.Info("enrollment event missing serial number", logging.LogFields{
			"event_type": env.Webhook.WebhookEvent,
		})
		p.metrics.Observe(PopulatorHandlerName, "no_serial")
		return nil
	}

	record, err := p.source.Lookup(msg.Context(), serialNumber)
	if err != nil {
		p.metrics.Observe(PopulatorHandlerName, "lookup_failed")
		return err
	}
	if record == nil {
		p.logger.Info("no sourced record found for serial number", logging.LogFields{
			"serial_number": serialNumber,
		})
		p.metrics.Observe(PopulatorHandlerName, "miss")
		return nil
	}

	doc := enrich.NewDocument(record)
	if doc.Empty() {
		p.logger.Info("sourced record contains no translatable fields", logging.LogFields{
			"serial_number": serialNumber,
		})
		p.metrics.Observe(PopulatorHandlerName, "empty_record")
		return nil
	}

	if err := p.client.UpdateRecord(msg.Context(), serialNumber, doc.Render(p.xmlRoot)); err != nil {
		p.metrics.Observe(PopulatorHandlerName, "update_failed")
		return err
	}

	p.logger.Info("populated device record", logging.LogFields{
		"serial_number": serialNumber,
		"event_type":    env.Webhook.WebhookEvent,
	})
	p.metrics.Observe(PopulatorHandlerName, "updated")
	return nil
}
