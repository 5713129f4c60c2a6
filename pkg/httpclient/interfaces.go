package httpclient

import "context"

// Request describes a single outbound call made through a Session.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Session is a reusable transport handle. Implementations may keep TCP
// connections alive between calls until Close is invoked.
type Session interface {
	Do(ctx context.Context, req Request) (Response, error)
	Close() error
}
