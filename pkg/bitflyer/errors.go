package bitflyer

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication is returned before any network I/O when a private
	// endpoint is called without both an API key and an API secret.
	ErrAuthentication = errors.New("bitflyer: api key and api secret are required")
	// ErrInvalidRequest reports a malformed request descriptor.
	ErrInvalidRequest = errors.New("bitflyer: invalid request")
	// ErrMissingParam reports a required endpoint parameter that was not supplied.
	ErrMissingParam = errors.New("bitflyer: missing required parameter")
)

// TransportError wraps a network or connection failure.
type TransportError struct {
	Method Method
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("bitflyer: %s %s: transport: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is returned when a non-empty response body is not valid JSON.
// Body holds the raw bytes as received.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bitflyer: decode response: %v (body=%q)", e.Err, snippet(e.Body))
}

func (e *DecodeError) Unwrap() error { return e.Err }

// APIError reports a non-2xx status. Response holds the decoded JSON payload,
// or the raw text when the body is not JSON.
type APIError struct {
	Endpoint   string
	Method     Method
	StatusCode int
	Response   any
	Params     Params
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bitflyer: %s %s: status %d: %v", e.Method, e.Endpoint, e.StatusCode, e.Response)
}

// ErrorKind tags the failure classes callers usually branch on.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindAuthentication
	KindTransport
	KindDecode
	KindAPI
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuthentication:
		return "authentication"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindAPI:
		return "api"
	default:
		return "other"
	}
}

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		transportErr *TransportError
		decodeErr    *DecodeError
		apiErr       *APIError
	)
	switch {
	case errors.Is(err, ErrAuthentication):
		return KindAuthentication
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &apiErr):
		return KindAPI
	default:
		return KindOther
	}
}

func snippet(body []byte) string {
	const maxLen = 512
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
