// Package webhook parses raw inbound Jamf Pro webhook payloads into typed
// envelopes and event structures. Parsing failures are local, recoverable
// conditions: callers log them and treat the message as a no-op.
package webhook

import (
	"fmt"
	"time"

	"github.com/brysontyrrell/voltron/internal/jsoncodec"
)

// EventType identifies a webhook event. The set of recognized values is closed;
// anything else maps to EventUnrecognized, which is a first-class outcome, not
// an error.
type EventType string

const (
	EventComputerAdded              EventType = "ComputerAdded"
	EventComputerCheckIn            EventType = "ComputerCheckIn"
	EventComputerInventoryCompleted EventType = "ComputerInventoryCompleted"
	EventJSSShutdown                EventType = "JSSShutdown"
	EventJSSStartup                 EventType = "JSSStartup"
	EventMobileDeviceCheckIn        EventType = "MobileDeviceCheckIn"
	EventMobileDeviceEnrolled       EventType = "MobileDeviceEnrolled"
	EventMobileDeviceUnEnrolled     EventType = "MobileDeviceUnEnrolled"
	EventPatchSoftwareTitleUpdated  EventType = "PatchSoftwareTitleUpdated"
	EventRestAPIOperation           EventType = "RestAPIOperation"
	EventUnrecognized               EventType = "Unrecognized"
)

var knownEventTypes = map[string]EventType{
	string(EventComputerAdded):              EventComputerAdded,
	string(EventComputerCheckIn):            EventComputerCheckIn,
	string(EventComputerInventoryCompleted): EventComputerInventoryCompleted,
	string(EventJSSShutdown):                EventJSSShutdown,
	string(EventJSSStartup):                 EventJSSStartup,
	string(EventMobileDeviceCheckIn):        EventMobileDeviceCheckIn,
	string(EventMobileDeviceEnrolled):       EventMobileDeviceEnrolled,
	string(EventMobileDeviceUnEnrolled):     EventMobileDeviceUnEnrolled,
	string(EventPatchSoftwareTitleUpdated):  EventPatchSoftwareTitleUpdated,
	string(EventRestAPIOperation):           EventRestAPIOperation,
}

// ParseEventType maps a raw event-type tag onto the closed EventType set. It
// is total: unknown tags return EventUnrecognized.
func ParseEventType(raw string) EventType {
	if t, ok := knownEventTypes[raw]; ok {
		return t
	}
	return EventUnrecognized
}

// ParseError reports a malformed or incomplete inbound payload.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("voltron: parse webhook: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("voltron: parse webhook: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Info is the outer webhook object describing the event.
type Info struct {
	WebhookEvent string `json:"webhookEvent"`
	ID           int    `json:"id"`
	Name         string `json:"name"`
}

// Envelope is the typed wrapper around a raw inbound event. Unknown keys in
// Event are preserved so transformers stay forward compatible with new fields.
// An Envelope is immutable after Parse and discarded once dispatch completes.
type Envelope struct {
	Webhook    Info
	Event      map[string]any
	ReceivedAt time.Time
}

type rawEnvelope struct {
	Webhook *Info          `json:"webhook"`
	Event   map[string]any `json:"event"`
}

// Parse validates raw bytes into an Envelope. It returns a *ParseError when
// the input is not valid JSON, carries no webhookEvent tag, or has a webhook
// object without the nested event payload.
func Parse(raw []byte) (*Envelope, error) {
	var re rawEnvelope
	if err := jsoncodec.Unmarshal(raw, &re); err != nil {
		return nil, &ParseError{Reason: "no JSON content found", Err: err}
	}

	if re.Webhook == nil || re.Webhook.WebhookEvent == "" {
		return nil, &ParseError{Reason: "missing webhookEvent field"}
	}
	if re.Event == nil {
		return nil, &ParseError{Reason: "inconsistent envelope: webhook present without event payload"}
	}

	return &Envelope{
		Webhook:    *re.Webhook,
		Event:      re.Event,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

// Type maps the envelope's raw event tag onto the closed EventType set.
func (e *Envelope) Type() EventType {
	return ParseEventType(e.Webhook.WebhookEvent)
}

// SerialNumber extracts the device serial number from the event payload, when
// present.
func (e *Envelope) SerialNumber() (string, bool) {
	v, ok := e.Event["serialNumber"]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
