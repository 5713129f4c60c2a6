package bitflyer

import (
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the API key pair used to sign requests.
func WithCredentials(key, secret string) Option {
	return func(c *Client) {
		c.creds = Credentials{Key: strings.TrimSpace(key), Secret: strings.TrimSpace(secret)}
	}
}

// WithKeepSession retains one session across calls until Close.
func WithKeepSession(keep bool) Option {
	return func(c *Client) { c.keepSession = keep }
}

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetry enables up to n retries on transient failures.
func WithRetry(n int) Option {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.retry = n
	}
}

// WithLock serializes every call on l. The caller owns l.
func WithLock(l sync.Locker) Option {
	return func(c *Client) { c.lock = l }
}

// WithLogger sets the logger used for transport and decode failures.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// WithTransportLogger forwards resty's internal warnings to log.
func WithTransportLogger(log resty.Logger) Option {
	return func(c *Client) { c.sessionCfg.Logger = log }
}

// WithBaseURL overrides the API host.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithSessionFactory replaces the default resty-backed session constructor.
func WithSessionFactory(f SessionFactory) Option {
	return func(c *Client) { c.newSession = f }
}

// WithClock overrides the time source used for ACCESS-TIMESTAMP.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
