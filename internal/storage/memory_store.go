package storage

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// memoryStore keeps fingerprints in an in-process cache. Entries vanish on
// restart and may be evicted early under memory pressure, which only causes
// a snapshot to be republished.
type memoryStore struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func openMemory(opts Options) (Store, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1e4,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &memoryStore{cache: cache, ttl: opts.TTL}, nil
}

func (m *memoryStore) Close() error {
	m.cache.Close()
	return nil
}

func (m *memoryStore) Seen(id string) (bool, error) {
	_, ok := m.cache.Get(id)
	return ok, nil
}

// Mark waits for the write buffer so the fingerprint is visible to the next Seen.
func (m *memoryStore) Mark(id string) error {
	m.cache.SetWithTTL(id, struct{}{}, 1, m.ttl)
	m.cache.Wait()
	return nil
}
