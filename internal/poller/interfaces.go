package poller

import (
	"context"

	"github.com/samvad-hq/bitflyer-go/pkg/bitflyer"
	"github.com/samvad-hq/bitflyer-go/pkg/publishers"
)

// Caller performs one catalogued API call.
type Caller interface {
	Call(ctx context.Context, ep bitflyer.Endpoint, params bitflyer.Params) (any, error)
}

// EventPublisher publishes snapshots downstream and reports how many sinks
// accepted the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers snapshot fingerprints that were already published.
type Deduper interface {
	Seen(id string) (bool, error)
	Mark(id string) error
}

// Logger is the structured logging surface used by the poller.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}
