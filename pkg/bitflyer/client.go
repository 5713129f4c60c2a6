// Package bitflyer is a client for the bitFlyer Lightning HTTP API.
//
// Every call is a synchronous request/response pair: the request is encoded,
// signed when credentials are configured, sent through an httpclient.Session
// and the JSON response is decoded into generic values (map[string]any,
// []any or scalars).
package bitflyer

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/samvad-hq/bitflyer-go/pkg/httpclient"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://api.bitflyer.com"

// SessionFactory builds a fresh transport handle.
type SessionFactory func() httpclient.Session

// Client issues API calls. It is safe for concurrent use.
type Client struct {
	baseURL     string
	creds       Credentials
	keepSession bool
	timeout     time.Duration
	retry       int
	lock        sync.Locker
	log         Logger
	sessionCfg  httpclient.SessionConfig
	newSession  SessionFactory
	now         func() time.Time

	// mu guards session. It is held only while the pointer is read or swapped.
	mu      sync.Mutex
	session httpclient.Session
}

// New builds a Client. Without options it talks to DefaultBaseURL, is
// unauthenticated and opens a fresh session per call.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		log:     noopLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.newSession == nil {
		c.newSession = c.defaultSession
	}
	if c.keepSession {
		c.session = c.newSession()
	}
	return c
}

func (c *Client) defaultSession() httpclient.Session {
	cfg := c.sessionCfg
	cfg.Timeout = c.timeout
	cfg.RetryCount = c.retry
	return httpclient.NewRestySession(cfg)
}

// Authenticated reports whether requests will be signed.
func (c *Client) Authenticated() bool {
	return c.creds.Complete()
}

// Close releases the retained session. It is a no-op for per-call clients.
// A kept-session client used after Close opens a new retained session.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

// Execute performs one API call and returns the decoded JSON body. An empty
// body yields a nil result and a nil error.
func (c *Client) Execute(ctx context.Context, req Request) (any, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.Private && !c.creds.Complete() {
		return nil, ErrAuthentication
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if c.lock != nil {
		c.lock.Lock()
		defer c.lock.Unlock()
	}
	return c.execute(ctx, req)
}

func (c *Client) execute(ctx context.Context, req Request) (any, error) {
	body, err := encodeBody(req.Method, req.Params)
	if err != nil {
		return nil, err
	}

	httpReq := httpclient.Request{
		Method:  string(req.Method),
		URL:     c.baseURL + req.Path,
		Headers: buildHeaders(c.creds, c.now(), req.Method, req.Path, body),
	}
	if req.Method == MethodPost {
		httpReq.Body = []byte(body)
	} else {
		httpReq.URL += body
	}

	sess, release := c.acquire()
	defer release()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := sess.Do(ctx, httpReq)
	if err != nil {
		c.log.ErrorObj("bitflyer request failed", "bitflyer_transport_error", map[string]any{
			"method": req.Method,
			"path":   req.Path,
			"error":  err.Error(),
		})
		if c.keepSession {
			c.replaceSession(sess)
		}
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}
	return c.decode(req, resp)
}

// acquire returns the session for one call and the function that releases it.
func (c *Client) acquire() (httpclient.Session, func()) {
	if c.keepSession {
		c.mu.Lock()
		if c.session == nil {
			c.session = c.newSession()
		}
		sess := c.session
		c.mu.Unlock()
		return sess, func() {}
	}

	sess := c.newSession()
	return sess, func() {
		if err := sess.Close(); err != nil {
			c.log.WarnObj("bitflyer session close failed", "error", err.Error())
		}
	}
}

// replaceSession swaps a failed retained session for a new one unless another
// call already did.
func (c *Client) replaceSession(failed httpclient.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != failed {
		return
	}
	if err := failed.Close(); err != nil {
		c.log.WarnObj("bitflyer session close failed", "error", err.Error())
	}
	c.session = c.newSession()
}

func (c *Client) decode(req Request, resp httpclient.Response) (any, error) {
	raw := resp.Body()
	status := resp.StatusCode()

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &APIError{
			Endpoint:   req.Path,
			Method:     req.Method,
			StatusCode: status,
			Response:   decodeLenient(raw),
			Params:     req.Params,
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.ErrorObj("bitflyer response decode failed", "bitflyer_decode_error", map[string]any{
			"path": req.Path,
			"body": snippet(raw),
		})
		return nil, &DecodeError{Body: raw, Err: err}
	}
	return out, nil
}

// decodeLenient decodes an error payload, falling back to the raw text.
func decodeLenient(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return string(raw)
	}
	return out
}
