package publishers

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Builder constructs a Publisher for one config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Registry resolves publisher types to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

// DefaultRegistry knows every built-in sink type.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeHTTP, newHTTPPublisher)
	r.Register(TypeSQS, newSQSPublisher)
	r.Register(TypeSNS, newSNSPublisher)
	r.Register(TypeGCPPubSub, newGCPPubSubPublisher)
	return r
}

// Register binds typ to b, replacing any previous builder. Blank types and
// nil builders are ignored.
func (r *Registry) Register(typ string, b Builder) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" || b == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[typ] = b
}

// Build constructs the publisher for cfg.
func (r *Registry) Build(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	r.mu.RLock()
	b, ok := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no publisher registered for type %q", cfg.Type)
	}
	return b(ctx, cfg, log)
}

// BuildAll constructs publishers for the enabled entries of cfgs. On failure
// the publishers already built are closed.
func BuildAll(ctx context.Context, reg *Registry, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	if reg == nil {
		return nil, fmt.Errorf("publisher registry is nil")
	}
	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		if !cfg.EnabledValue() {
			continue
		}
		p, err := reg.Build(ctx, cfg, log)
		if err != nil {
			_ = closeAll(pubs)
			return nil, fmt.Errorf("build publisher %q: %w", cfg.ID, err)
		}
		pubs = append(pubs, p)
	}
	return pubs, nil
}
