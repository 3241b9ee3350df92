package webhook

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceEvent(t *testing.T) {
	fields := map[string]any{
		"jssID":        42.0,
		"serialNumber": "C02ABC123",
		"deviceName":   "mac-01",
		"username":     "ellen",
	}

	event, err := NewDeviceEvent("ComputerAdded", fields)
	require.NoError(t, err)

	assert.Equal(t, "42", event.JSSID)
	assert.Equal(t, "C02ABC123", event.SerialNumber)
	assert.Equal(t, "mac-01", event.DeviceName)
	assert.Equal(t, "ellen", event.Username)
}

func TestNewDeviceEvent_MissingField(t *testing.T) {
	for _, field := range []string{"jssID", "serialNumber", "deviceName", "username"} {
		t.Run(field, func(t *testing.T) {
			fields := map[string]any{
				"jssID":        42.0,
				"serialNumber": "C02ABC123",
				"deviceName":   "mac-01",
				"username":     "ellen",
			}
			delete(fields, field)

			_, err := NewDeviceEvent("ComputerAdded", fields)
			require.Error(t, err)

			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, "ComputerAdded", fieldErr.Event)
			assert.Equal(t, field, fieldErr.Field)
		})
	}
}

func TestNewDeviceEvent_NilFieldValue(t *testing.T) {
	fields := map[string]any{
		"jssID":        42.0,
		"serialNumber": nil,
		"deviceName":   "mac-01",
		"username":     "ellen",
	}

	_, err := NewDeviceEvent("ComputerAdded", fields)

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "serialNumber", fieldErr.Field)
}

func TestNewServerEvent(t *testing.T) {
	event, err := NewServerEvent("JSSStartup", map[string]any{
		"jssUrl":          "https://jss.example.org",
		"isClusterMaster": true,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://jss.example.org", event.JSSURL)
	assert.True(t, event.IsClusterMaster)
}

func TestNewServerEvent_MissingClusterFlag(t *testing.T) {
	_, err := NewServerEvent("JSSStartup", map[string]any{
		"jssUrl": "https://jss.example.org",
	})

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "isClusterMaster", fieldErr.Field)
}

func TestNewPatchEvent(t *testing.T) {
	event, err := NewPatchEvent("PatchSoftwareTitleUpdated", map[string]any{
		"reportUrl":     "https://jss.example.org/patch/1",
		"name":          "Firefox",
		"latestVersion": "133.0",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://jss.example.org/patch/1", event.ReportURL)
	assert.Equal(t, "Firefox", event.Name)
	assert.Equal(t, "133.0", event.LatestVersion)
}

func TestNewRESTOperationEvent(t *testing.T) {
	event, err := NewRESTOperationEvent("RestAPIOperation", map[string]any{
		"objectTypeName":       "policy",
		"objectName":           "Install Apps",
		"objectID":             7.0,
		"authorizedUsername":   "admin",
		"restAPIOperationType": "PUT",
		"operationSuccessful":  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "policy", event.ObjectTypeName)
	assert.Equal(t, "Install Apps", event.ObjectName)
	assert.Equal(t, "7", event.ObjectID)
	assert.Equal(t, "admin", event.AuthorizedUsername)
	assert.Equal(t, "PUT", event.OperationType)
	assert.True(t, event.Successful)
}

func TestStringify(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{value: "text", want: "text"},
		{value: 42.0, want: "42"},
		{value: 42.5, want: "42.5"},
		{value: true, want: "true"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, stringify(tt.value))
	}
}
