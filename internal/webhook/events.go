package webhook

import (
	"fmt"
	"strconv"
)

// FieldError reports a required field missing from an otherwise well-formed
// event. It is fatal for the invocation: transformers fail construction rather
// than emit a partially-filled payload.
type FieldError struct {
	Event string
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("voltron: %s event is missing required field %q", e.Event, e.Field)
}

// DeviceEvent carries the identity fields shared by computer and mobile device
// events.
type DeviceEvent struct {
	JSSID        string
	SerialNumber string
	DeviceName   string
	Username     string
}

// NewDeviceEvent builds a DeviceEvent from raw event fields, failing fast with
// a *FieldError when any identity field is absent.
func NewDeviceEvent(event string, fields map[string]any) (*DeviceEvent, error) {
	jssID, err := stringField(event, fields, "jssID")
	if err != nil {
		return nil, err
	}
	serial, err := stringField(event, fields, "serialNumber")
	if err != nil {
		return nil, err
	}
	name, err := stringField(event, fields, "deviceName")
	if err != nil {
		return nil, err
	}
	user, err := stringField(event, fields, "username")
	if err != nil {
		return nil, err
	}
	return &DeviceEvent{JSSID: jssID, SerialNumber: serial, DeviceName: name, Username: user}, nil
}

// ServerEvent carries the fields of JSS startup and shutdown events.
type ServerEvent struct {
	JSSURL          string
	IsClusterMaster bool
}

// NewServerEvent builds a ServerEvent from raw event fields.
func NewServerEvent(event string, fields map[string]any) (*ServerEvent, error) {
	jssURL, err := stringField(event, fields, "jssUrl")
	if err != nil {
		return nil, err
	}
	master, err := boolField(event, fields, "isClusterMaster")
	if err != nil {
		return nil, err
	}
	return &ServerEvent{JSSURL: jssURL, IsClusterMaster: master}, nil
}

// PatchEvent carries the fields of a patch definition update.
type PatchEvent struct {
	ReportURL     string
	Name          string
	LatestVersion string
}

// NewPatchEvent builds a PatchEvent from raw event fields.
func NewPatchEvent(event string, fields map[string]any) (*PatchEvent, error) {
	reportURL, err := stringField(event, fields, "reportUrl")
	if err != nil {
		return nil, err
	}
	name, err := stringField(event, fields, "name")
	if err != nil {
		return nil, err
	}
	version, err := stringField(event, fields, "latestVersion")
	if err != nil {
		return nil, err
	}
	return &PatchEvent{ReportURL: reportURL, Name: name, LatestVersion: version}, nil
}

// RESTOperationEvent carries the fields of a REST API operation notification.
type RESTOperationEvent struct {
	ObjectTypeName     string
	ObjectName         string
	ObjectID           string
	AuthorizedUsername string
	OperationType      string
	Successful         bool
}

// NewRESTOperationEvent builds a RESTOperationEvent from raw event fields.
func NewRESTOperationEvent(event string, fields map[string]any) (*RESTOperationEvent, error) {
	objectType, err := stringField(event, fields, "objectTypeName")
	if err != nil {
		return nil, err
	}
	objectName, err := stringField(event, fields, "objectName")
	if err != nil {
		return nil, err
	}
	objectID, err := stringField(event, fields, "objectID")
	if err != nil {
		return nil, err
	}
	user, err := stringField(event, fields, "authorizedUsername")
	if err != nil {
		return nil, err
	}
	operation, err := stringField(event, fields, "restAPIOperationType")
	if err != nil {
		return nil, err
	}
	success, err := boolField(event, fields, "operationSuccessful")
	if err != nil {
		return nil, err
	}
	return &RESTOperationEvent{
		ObjectTypeName:     objectType,
		ObjectName:         objectName,
		ObjectID:           objectID,
		AuthorizedUsername: user,
		OperationType:      operation,
		Successful:         success,
	}, nil
}

func stringField(event string, fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", &FieldError{Event: event, Field: key}
	}
	return stringify(v), nil
}

func boolField(event string, fields map[string]any, key string) (bool, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return false, &FieldError{Event: event, Field: key}
	}
	b, ok := v.(bool)
	if !ok {
		return false, &FieldError{Event: event, Field: key}
	}
	return b, nil
}

// stringify renders a decoded JSON scalar the way it would appear in a
// message body. Numbers arrive as float64 and are rendered without a trailing
// fractional part when integral.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
