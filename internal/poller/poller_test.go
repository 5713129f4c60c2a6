package poller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/bitflyer-go/pkg/bitflyer"
	"github.com/samvad-hq/bitflyer-go/pkg/feeds"
	"github.com/samvad-hq/bitflyer-go/pkg/publishers"
)

// fakeCaller returns canned payloads keyed by endpoint name.
type fakeCaller struct {
	mu       sync.Mutex
	payloads map[string]any
	errs     map[string]error
	calls    []string
}

func (f *fakeCaller) Call(_ context.Context, ep bitflyer.Endpoint, _ bitflyer.Params) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ep.Name)
	if err := f.errs[ep.Name]; err != nil {
		return nil, err
	}
	return f.payloads[ep.Name], nil
}

// fakePublisher records published events and can inject errors.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishers.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

// fakeDeduper tracks seen fingerprints.
type fakeDeduper struct {
	mu      sync.Mutex
	seen    map[string]bool
	failErr error
}

func (f *fakeDeduper) Seen(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return false, f.failErr
	}
	return f.seen[id], nil
}

func (f *fakeDeduper) Mark(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	f.seen[id] = true
	return nil
}

func feedList(t *testing.T, fs ...feeds.Feed) []feeds.Feed {
	t.Helper()
	reg, err := feeds.NewRegistry(fs)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg.All()
}

func TestRunPublishesChangedSnapshotsOnly(t *testing.T) {
	caller := &fakeCaller{payloads: map[string]any{
		"ticker":    map[string]any{"ltp": 100.0},
		"gethealth": map[string]any{"status": "NORMAL"},
	}}
	pub := &fakePublisher{}
	dedupe := &fakeDeduper{}
	svc := NewService(caller, pub, nil, dedupe)
	fs := feedList(t,
		feeds.Feed{ID: "ticker", Endpoint: "ticker"},
		feeds.Feed{ID: "health", Endpoint: "gethealth"},
	)

	if err := svc.Run(context.Background(), fs); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}

	caller.payloads["ticker"] = map[string]any{"ltp": 101.0}
	if err := svc.Run(context.Background(), fs); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(pub.events) != 3 {
		t.Fatalf("expected only the changed ticker to republish, got %d events", len(pub.events))
	}
	last := pub.events[2]
	if last.FeedID != "ticker" || last.Endpoint != "ticker" {
		t.Fatalf("unexpected event %+v", last)
	}
}

func TestRunAggregatesFeedErrors(t *testing.T) {
	caller := &fakeCaller{
		payloads: map[string]any{"ticker": map[string]any{"ltp": 1.0}},
		errs:     map[string]error{"board": &bitflyer.TransportError{Method: bitflyer.MethodGet, Path: "/v1/board", Err: errors.New("reset")}},
	}
	pub := &fakePublisher{}
	svc := NewService(caller, pub, nil, nil)
	fs := feedList(t,
		feeds.Feed{ID: "board", Endpoint: "board"},
		feeds.Feed{ID: "ticker", Endpoint: "ticker"},
	)

	err := svc.Run(context.Background(), fs)
	if err == nil || !strings.Contains(err.Error(), "board") {
		t.Fatalf("expected error mentioning board, got %v", err)
	}
	if bitflyer.KindOf(err) != bitflyer.KindTransport {
		t.Fatalf("expected transport kind through the joined error, got %v", bitflyer.KindOf(err))
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected ticker to publish despite board failure, got %d", len(pub.events))
	}
}

func TestRunDoesNotMarkWhenPublishFails(t *testing.T) {
	caller := &fakeCaller{payloads: map[string]any{"ticker": map[string]any{"ltp": 1.0}}}
	dedupe := &fakeDeduper{}
	svc := NewService(caller, &fakePublisher{err: errors.New("sink down")}, nil, dedupe)

	if err := svc.Run(context.Background(), feedList(t, feeds.Feed{ID: "t", Endpoint: "ticker"})); err == nil {
		t.Fatalf("expected publish error")
	}
	if len(dedupe.seen) != 0 {
		t.Fatalf("fingerprint must not be marked after a failed publish")
	}
}

func TestRunTreatsDeduperErrorsAsUnseen(t *testing.T) {
	caller := &fakeCaller{payloads: map[string]any{"ticker": map[string]any{"ltp": 1.0}}}
	pub := &fakePublisher{}
	svc := NewService(caller, pub, nil, &fakeDeduper{failErr: errors.New("lookup failed")})

	if err := svc.Run(context.Background(), feedList(t, feeds.Feed{ID: "t", Endpoint: "ticker"})); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected event to publish when lookup fails, got %d", len(pub.events))
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	caller := &fakeCaller{}
	svc := NewService(caller, nil, nil, nil)
	if err := svc.Run(ctx, feedList(t, feeds.Feed{ID: "t", Endpoint: "ticker"})); err != nil {
		t.Fatalf("expected no errors on cancelled context, got %v", err)
	}
	if len(caller.calls) != 0 {
		t.Fatalf("expected no calls after cancellation, got %v", caller.calls)
	}
}

func TestRunRejectsEmptyFeeds(t *testing.T) {
	svc := NewService(&fakeCaller{}, nil, nil, nil)
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error when feed list is empty")
	}
}

func TestFingerprintDependsOnFeedAndPayload(t *testing.T) {
	a, err := Fingerprint("f1", map[string]any{"b": 1, "a": 2})
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	b, _ := Fingerprint("f1", map[string]any{"a": 2, "b": 1})
	c, _ := Fingerprint("f2", map[string]any{"a": 2, "b": 1})
	if a != b {
		t.Fatalf("fingerprint should not depend on map order")
	}
	if a == c {
		t.Fatalf("fingerprint should depend on feed id")
	}
	if len(a) != 40 {
		t.Fatalf("expected hex sha1, got %q", a)
	}
}
