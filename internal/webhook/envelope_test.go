package webhook

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	raw := []byte(`{
		"webhook": {"webhookEvent": "ComputerAdded", "id": 1, "name": "Voltron"},
		"event": {"jssID": 42, "serialNumber": "C02ABC123", "deviceName": "mac-01", "username": "ellen"}
	}`)

	env, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "ComputerAdded", env.Webhook.WebhookEvent)
	assert.Equal(t, 1, env.Webhook.ID)
	assert.Equal(t, "Voltron", env.Webhook.Name)
	assert.Equal(t, EventComputerAdded, env.Type())
	assert.False(t, env.ReceivedAt.IsZero())

	serial, ok := env.SerialNumber()
	assert.True(t, ok)
	assert.Equal(t, "C02ABC123", serial)
}

func TestParse_PreservesUnknownEventKeys(t *testing.T) {
	raw := []byte(`{
		"webhook": {"webhookEvent": "ComputerAdded"},
		"event": {"serialNumber": "C02ABC123", "futureField": "value"}
	}`)

	env, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "value", env.Event["futureField"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "invalid JSON", raw: `{not json`},
		{name: "empty body", raw: ``},
		{name: "no webhook object", raw: `{"event": {}}`},
		{name: "empty webhookEvent", raw: `{"webhook": {"webhookEvent": ""}, "event": {}}`},
		{name: "webhook without event", raw: `{"webhook": {"webhookEvent": "ComputerAdded"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)

			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}

func TestParseEventType(t *testing.T) {
	tests := []struct {
		raw  string
		want EventType
	}{
		{raw: "ComputerAdded", want: EventComputerAdded},
		{raw: "ComputerCheckIn", want: EventComputerCheckIn},
		{raw: "ComputerInventoryCompleted", want: EventComputerInventoryCompleted},
		{raw: "JSSShutdown", want: EventJSSShutdown},
		{raw: "JSSStartup", want: EventJSSStartup},
		{raw: "MobileDeviceCheckIn", want: EventMobileDeviceCheckIn},
		{raw: "MobileDeviceEnrolled", want: EventMobileDeviceEnrolled},
		{raw: "MobileDeviceUnEnrolled", want: EventMobileDeviceUnEnrolled},
		{raw: "PatchSoftwareTitleUpdated", want: EventPatchSoftwareTitleUpdated},
		{raw: "RestAPIOperation", want: EventRestAPIOperation},
		{raw: "SomethingNew", want: EventUnrecognized},
		{raw: "computeradded", want: EventUnrecognized},
		{raw: "", want: EventUnrecognized},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseEventType(tt.raw), "tag %q", tt.raw)
	}
}

func TestEnvelope_SerialNumber_Missing(t *testing.T) {
	tests := []struct {
		name  string
		event map[string]any
	}{
		{name: "absent", event: map[string]any{}},
		{name: "nil value", event: map[string]any{"serialNumber": nil}},
		{name: "empty string", event: map[string]any{"serialNumber": ""}},
		{name: "not a string", event: map[string]any{"serialNumber": 12345.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &Envelope{Event: tt.event}
			_, ok := env.SerialNumber()
			assert.False(t, ok)
		})
	}
}
