package errors

import (
	"fmt"

	sterrors "errors"
)

var (
	ErrServiceRequired      = sterrors.New("voltron: event service is required")
	ErrHandlerRequired      = sterrors.New("voltron: handler function is required")
	ErrHandlerNameRequired  = sterrors.New("voltron: handler name is required")
	ErrConsumeTopicRequired = sterrors.New("voltron: consume topic is required")
	ErrPublisherRequired    = sterrors.New("voltron: publisher is required")
	ErrTopicRequired        = sterrors.New("voltron: topic is required")
	ErrConfigRequired       = sterrors.New("voltron: config is required")
	ErrLoggerRequired       = sterrors.New("voltron: logger is required")
)

// TransportKind classifies a failed call to an external sink or source.
type TransportKind int

const (
	// KindUnreachable covers connection failures and timeouts, before any
	// response was received.
	KindUnreachable TransportKind = iota

	// KindRejected covers non-2xx responses from an endpoint that was reached.
	KindRejected
)

func (k TransportKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// TransportError reports a failed external call. It is always surfaced to the
// invoking boundary and never retried inside the pipeline.
type TransportError struct {
	Kind       TransportKind
	Op         string
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Kind == KindRejected {
		return fmt.Sprintf("voltron: %s: %s returned status %d", e.Op, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("voltron: %s: %s unreachable: %v", e.Op, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Unreachable wraps a connection-level failure against an endpoint.
func Unreachable(op, endpoint string, err error) *TransportError {
	return &TransportError{Kind: KindUnreachable, Op: op, Endpoint: endpoint, Err: err}
}

// Rejected reports a non-2xx response from an endpoint.
func Rejected(op, endpoint string, statusCode int) *TransportError {
	return &TransportError{Kind: KindRejected, Op: op, Endpoint: endpoint, StatusCode: statusCode}
}

// IsTransport reports whether err is (or wraps) a TransportError of the given kind.
func IsTransport(err error, kind TransportKind) bool {
	var te *TransportError
	if !sterrors.As(err, &te) {
		return false
	}
	return te.Kind == kind
}
