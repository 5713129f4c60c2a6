package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// RetryBaseDelay is the first backoff step; each further attempt doubles it.
	RetryBaseDelay = 200 * time.Millisecond
	// RetryMaxDelay caps a single backoff step.
	RetryMaxDelay = 120 * time.Second

	dialTimeout       = 30 * time.Second
	keepAliveIdle     = 60 * time.Second
	keepAliveInterval = 30 * time.Second
	keepAliveProbes   = 3
)

// SessionConfig controls how a RestySession is built.
type SessionConfig struct {
	// Timeout bounds a whole call including retries. Zero disables it.
	Timeout time.Duration
	// RetryCount is the number of retries after the first attempt. Zero disables retries.
	RetryCount int
	// Logger receives resty's internal warnings. Nil discards them.
	Logger resty.Logger
}

// RestySession adapts resty.Client to the Session interface.
type RestySession struct {
	client *resty.Client
}

// NewRestySession creates a session with TCP keep-alive, no cookie storage and
// the configured retry policy.
func NewRestySession(cfg SessionConfig) *RestySession {
	return &RestySession{client: newRestyBaseClient(cfg)}
}

// newRestyBaseClient creates a new resty.Client from cfg.
func newRestyBaseClient(cfg SessionConfig) *resty.Client {
	c := resty.New()
	c.SetTransport(newKeepAliveTransport())
	c.SetCookieJar(rejectAllJar{})
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	if cfg.Logger != nil {
		c.SetLogger(cfg.Logger)
	} else {
		c.SetLogger(discardLogger{})
	}
	if cfg.RetryCount > 0 {
		c.SetRetryCount(cfg.RetryCount).
			SetRetryWaitTime(RetryBaseDelay).
			SetRetryMaxWaitTime(RetryMaxDelay).
			SetRetryAfter(retryAfter).
			AddRetryCondition(shouldRetry)
	}
	return c
}

func newKeepAliveTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout: dialTimeout,
		KeepAliveConfig: net.KeepAliveConfig{
			Enable:   true,
			Idle:     keepAliveIdle,
			Interval: keepAliveInterval,
			Count:    keepAliveProbes,
		},
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = dialer.DialContext
	return tr
}

// Do sends req and returns the buffered response.
func (s *RestySession) Do(ctx context.Context, req Request) (Response, error) {
	r := s.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}
	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// Close releases idle connections held by the session.
func (s *RestySession) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	s.client.GetClient().CloseIdleConnections()
	return nil
}

// shouldRetry retries GET and POST calls on transport errors and on 500, 502 and 504.
func shouldRetry(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil {
		return false
	}
	switch resp.Request.Method {
	case http.MethodGet, http.MethodPost:
	default:
		return false
	}
	if err != nil {
		return true
	}
	switch resp.StatusCode() {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func retryAfter(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
	attempt := 1
	if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
		attempt = resp.Request.Attempt
	}
	return BackoffDelay(attempt), nil
}

// BackoffDelay returns the wait before retry number attempt (1-based).
func BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := RetryBaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= RetryMaxDelay {
			return RetryMaxDelay
		}
	}
	return d
}

// rejectAllJar neither stores nor returns cookies.
type rejectAllJar struct{}

func (rejectAllJar) SetCookies(*url.URL, []*http.Cookie) {}
func (rejectAllJar) Cookies(*url.URL) []*http.Cookie     { return nil }

type discardLogger struct{}

func (discardLogger) Errorf(string, ...interface{}) {}
func (discardLogger) Warnf(string, ...interface{})  {}
func (discardLogger) Debugf(string, ...interface{}) {}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
