package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/bitflyer-go/pkg/httpclient"
)

// httpPublisher delivers each event as a JSON document to a webhook.
type httpPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	session httpclient.Session
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	c := *cfg.HTTP
	if c.Method == "" {
		c.Method = httpDefaultMethod
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = httpDefaultTimeoutSeconds
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range c.Headers {
		headers[k] = v
	}
	return &httpPublisher{
		id:      cfg.ID,
		method:  c.Method,
		url:     c.URL,
		headers: headers,
		session: httpclient.NewRestySession(httpclient.SessionConfig{
			Timeout:    time.Duration(c.TimeoutSeconds) * time.Second,
			RetryCount: c.RetryCount,
		}),
		log: ensureLogger(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	headers := make(map[string]string, len(h.headers)+1)
	for k, v := range h.headers {
		headers[k] = v
	}
	headers["X-Event-Id"] = evt.ID

	resp, err := h.session.Do(ctx, httpclient.Request{
		Method:  h.method,
		URL:     h.url,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return fmt.Errorf("http response status %d: %s", code, bodySnippet(resp.Body()))
	}
	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"event_id":     evt.ID,
		"status":       resp.StatusCode(),
	})
	return nil
}

// Close releases idle webhook connections.
func (h *httpPublisher) Close() error {
	return h.session.Close()
}

func bodySnippet(body []byte) string {
	const limit = 512
	if len(body) > limit {
		body = body[:limit]
	}
	return strings.TrimSpace(string(body))
}
