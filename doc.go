// Package voltron is a webhook event pipeline for Jamf Pro device-management
// events. An HTTP receiver authenticates inbound webhooks and publishes them to
// a Watermill-backed pub/sub channel (Go channels, AWS SNS/SQS, NATS, Kafka, or
// RabbitMQ, selected by Config). Two consumer families subscribe to the webhook
// topic: the notifier renders per-event-type Slack messages through a fixed
// dispatch table, and the populator enriches device records from a CSV source
// in S3 and pushes XML updates back to the Jamf Pro REST API. A poller fetches
// point-in-time snapshots from the API on a schedule and injects them into the
// same channel.
//
// Each pipeline role ships as its own binary under cmd/: receiver, notifier,
// populator, and poller. All of them are configured from a single immutable
// Config assembled from the environment at startup.
//
// # Transports
//
// The broker is treated as an opaque at-least-once delivery channel. Five
// transports are available out of the box:
//   - channel: In-memory Go channels for testing
//   - aws: AWS SNS/SQS with LocalStack support
//   - nats: High-performance messaging
//   - kafka: High-throughput streaming with consumer groups
//   - rabbitmq: AMQP-based durable queues
//
// # Delivery semantics
//
// Consumers perform at-most-once external side effects per invocation. There
// are no internal retry loops: parse failures, ignored events, unsupported
// event types, and enrichment misses are absorbed as terminal no-op outcomes,
// while transport and missing-field errors surface to the router so the
// broker's own redelivery policy applies. Duplicate deliveries from the broker
// produce duplicate external calls; the pipeline does not deduplicate.
package voltron
