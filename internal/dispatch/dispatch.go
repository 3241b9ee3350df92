// Package dispatch routes webhook envelopes to their per-event-type
// transformers through a fixed table built at startup.
package dispatch

import (
	"strings"

	"github.com/brysontyrrell/voltron/internal/slack"
	"github.com/brysontyrrell/voltron/internal/webhook"
)

// Outcome classifies the result of a dispatch attempt. Ignored and
// Unsupported are both observable no-ops; they are distinguished so logs and
// metrics can tell a configured skip from a registry miss.
type Outcome int

const (
	// Dispatched means a transformer ran and produced a payload.
	Dispatched Outcome = iota

	// Ignored means the event type is in the configured ignored set; no
	// transformer was invoked.
	Ignored

	// Unsupported means no transformer is registered for the event type.
	Unsupported
)

func (o Outcome) String() string {
	switch o {
	case Dispatched:
		return "dispatched"
	case Ignored:
		return "ignored"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// IgnoredSet is the configured set of event-type tags dropped before lookup.
// Loaded once at startup, never mutated, safe for concurrent reads.
type IgnoredSet map[string]struct{}

// NewIgnoredSet builds an IgnoredSet from the configured tag list.
func NewIgnoredSet(events []string) IgnoredSet {
	set := make(IgnoredSet, len(events))
	for _, e := range events {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		set[e] = struct{}{}
	}
	return set
}

// Contains reports whether the raw event tag is configured as ignored.
func (s IgnoredSet) Contains(eventType string) bool {
	_, ok := s[eventType]
	return ok
}

// Table maps event types onto transformers. It is append-only at build time
// and read-only thereafter; concurrent dispatch requires no locking.
type Table struct {
	handlers map[webhook.EventType]slack.Transformer
	ignored  IgnoredSet
}

// New builds the dispatch table over the full transformer registry.
func New(ignored IgnoredSet) *Table {
	return &Table{
		handlers: slack.Transformers(),
		ignored:  ignored,
	}
}

// Dispatch routes the envelope to its transformer. The message is nil unless
// the outcome is Dispatched; an error is returned only when the transformer
// itself failed (a missing required field).
func (t *Table) Dispatch(env *webhook.Envelope) (*slack.Message, Outcome, error) {
	if t.ignored.Contains(env.Webhook.WebhookEvent) {
		return nil, Ignored, nil
	}

	transformer, ok := t.handlers[env.Type()]
	if !ok {
		return nil, Unsupported, nil
	}

	msg, err := transformer(env.Event)
	if err != nil {
		return nil, Dispatched, err
	}
	return msg, Dispatched, nil
}
