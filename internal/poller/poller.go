// Package poller calls configured feeds and publishes snapshots whose content
// changed since the last publication.
package poller

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic fingerprint
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samvad-hq/bitflyer-go/pkg/feeds"
	"github.com/samvad-hq/bitflyer-go/pkg/publishers"
)

// Service polls feeds one pass at a time.
type Service struct {
	caller    Caller
	publisher EventPublisher
	deduper   Deduper
	log       Logger
}

// NewService wires a poller. publisher and deduper may be nil.
func NewService(caller Caller, publisher EventPublisher, log Logger, deduper Deduper) *Service {
	if log == nil {
		log = noopLogger{}
	}
	return &Service{
		caller:    caller,
		publisher: publisher,
		deduper:   deduper,
		log:       log,
	}
}

// Run executes one polling pass over fs. Feed failures are collected and
// returned together; they do not stop the pass.
func (s *Service) Run(ctx context.Context, fs []feeds.Feed) error {
	if s == nil || s.caller == nil {
		return fmt.Errorf("poller service is not initialized")
	}
	if len(fs) == 0 {
		return fmt.Errorf("no feeds configured for polling")
	}
	return errors.Join(s.runAll(ctx, fs)...)
}

func (s *Service) runAll(ctx context.Context, fs []feeds.Feed) []error {
	var errs []error
	for _, f := range fs {
		if ctx.Err() != nil {
			break
		}
		if err := s.runFeed(ctx, f); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("feed poll failed", "feed_error", map[string]any{
				"feed_id":  f.ID,
				"endpoint": f.Endpoint,
				"error":    err.Error(),
			})
		}
	}
	return errs
}

func (s *Service) runFeed(ctx context.Context, f feeds.Feed) error {
	ep, ok := f.EndpointSpec()
	if !ok {
		return fmt.Errorf("feed %s: unknown endpoint %q", f.ID, f.Endpoint)
	}

	payload, err := s.caller.Call(ctx, ep, f.Params)
	if err != nil {
		return fmt.Errorf("call feed %s: %w", f.ID, err)
	}

	fp, err := Fingerprint(f.ID, payload)
	if err != nil {
		return fmt.Errorf("fingerprint feed %s: %w", f.ID, err)
	}
	if s.seen(f, fp) {
		s.log.DebugObj("feed snapshot unchanged", "feed_result", map[string]any{
			"feed_id":     f.ID,
			"fingerprint": fp,
		})
		return nil
	}

	evt := publishers.NewEvent(f.ID, ep.Name, payload)
	if s.publisher != nil {
		delivered, err := s.publisher.Publish(ctx, evt)
		if err != nil {
			return fmt.Errorf("publish feed %s: %w", f.ID, err)
		}
		if delivered == 0 {
			return nil
		}
	}

	if s.deduper != nil {
		if err := s.deduper.Mark(fp); err != nil {
			s.log.WarnObj("fingerprint mark failed", "dedupe_error", map[string]any{
				"feed_id": f.ID,
				"error":   err.Error(),
			})
		}
	}
	s.log.InfoObj("feed snapshot published", "feed_result", map[string]any{
		"feed_id":  f.ID,
		"event_id": evt.ID,
		"endpoint": ep.Name,
	})
	return nil
}

// seen treats deduper failures as unseen so a snapshot is never silently lost.
func (s *Service) seen(f feeds.Feed, fp string) bool {
	if s.deduper == nil {
		return false
	}
	ok, err := s.deduper.Seen(fp)
	if err != nil {
		s.log.WarnObj("fingerprint lookup failed", "dedupe_error", map[string]any{
			"feed_id": f.ID,
			"error":   err.Error(),
		})
		return false
	}
	return ok
}

// Fingerprint identifies a feed snapshot by the SHA-1 of the feed id and the
// JSON form of the payload.
func Fingerprint(feedID string, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	h := sha1.New()
	h.Write([]byte(feedID))
	h.Write([]byte{0})
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil)), nil
}
