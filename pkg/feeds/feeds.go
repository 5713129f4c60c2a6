package feeds

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/bitflyer-go/internal/configfile"
	"github.com/samvad-hq/bitflyer-go/pkg/bitflyer"
)

// Feed is one endpoint polled by the collector.
type Feed struct {
	ID       string         `json:"id" yaml:"id"`
	Endpoint string         `json:"endpoint" yaml:"endpoint"`
	Params   map[string]any `json:"params" yaml:"params"`
	Enabled  *bool          `json:"enabled" yaml:"enabled"`
}

// Registry holds the feeds loaded from a config file.
type Registry struct {
	mu    sync.RWMutex
	feeds []Feed
	idx   map[string]Feed
}

// LoadRegistry loads feeds from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	var file struct {
		Feeds []Feed `json:"feeds" yaml:"feeds"`
	}
	if err := configfile.Decode(path, &file); err != nil {
		return nil, fmt.Errorf("load feeds file: %w", err)
	}
	if len(file.Feeds) == 0 {
		return nil, errors.New("feeds file contains no feeds entries")
	}
	return NewRegistry(file.Feeds)
}

// NewRegistry validates feeds and indexes them by id.
func NewRegistry(feeds []Feed) (*Registry, error) {
	reg := &Registry{
		feeds: make([]Feed, len(feeds)),
		idx:   make(map[string]Feed, len(feeds)),
	}
	for i := range feeds {
		f := sanitizeFeed(feeds[i])
		if err := validateFeed(f); err != nil {
			return nil, fmt.Errorf("feeds[%d]: %w", i, err)
		}
		if _, exists := reg.idx[f.ID]; exists {
			return nil, fmt.Errorf("duplicate feed id %q", f.ID)
		}
		reg.feeds[i] = f
		reg.idx[f.ID] = f
	}
	return reg, nil
}

func sanitizeFeed(f Feed) Feed {
	f.ID = strings.TrimSpace(f.ID)
	f.Endpoint = strings.ToLower(strings.TrimSpace(f.Endpoint))
	if f.Params == nil {
		f.Params = map[string]any{}
	}
	if f.Enabled == nil {
		def := true
		f.Enabled = &def
	}
	return f
}

func validateFeed(f Feed) error {
	if f.ID == "" {
		return errors.New("id is required")
	}
	if f.Endpoint == "" {
		return fmt.Errorf("endpoint is required for feed %q", f.ID)
	}
	if _, ok := bitflyer.Lookup(f.Endpoint); !ok {
		return fmt.Errorf("unknown endpoint %q for feed %q", f.Endpoint, f.ID)
	}
	return nil
}

// ByID returns the feed by id.
func (r *Registry) ByID(id string) (Feed, bool) {
	if r == nil {
		return Feed{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.idx[strings.TrimSpace(id)]
	return f, ok
}

// All returns every configured feed.
func (r *Registry) All() []Feed {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Feed, len(r.feeds))
	copy(out, r.feeds)
	return out
}

// Enabled returns feeds that are enabled.
func (r *Registry) Enabled() []Feed {
	all := r.All()
	out := make([]Feed, 0, len(all))
	for _, f := range all {
		if f.EnabledValue() {
			out = append(out, f)
		}
	}
	return out
}

// EnabledValue returns the enabled flag defaulting to true.
func (f Feed) EnabledValue() bool {
	if f.Enabled == nil {
		return true
	}
	return *f.Enabled
}

// EndpointSpec resolves the feed's catalogued endpoint.
func (f Feed) EndpointSpec() (bitflyer.Endpoint, bool) {
	return bitflyer.Lookup(f.Endpoint)
}
