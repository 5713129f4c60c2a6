package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var fingerprintBucket = []byte("fingerprints")

var errBucketMissing = errors.New("fingerprint bucket missing")

// boltStore persists fingerprints with an expiry. Lookups treat expired
// entries as absent; a background sweeper deletes them every cleanup interval.
type boltStore struct {
	db   *bolt.DB
	ttl  time.Duration
	now  func() time.Time
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func openBolt(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(fingerprintBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	s := &boltStore{
		db:   db,
		ttl:  opts.TTL,
		now:  time.Now,
		stop: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop(opts.CleanupInterval)
	return s, nil
}

// Close stops the sweeper and closes the database. It is safe to call twice.
func (s *boltStore) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *boltStore) Seen(id string) (bool, error) {
	var seen bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(fingerprintBucket)
		if b == nil {
			return errBucketMissing
		}
		exp, ok := expiryOf(b.Get([]byte(id)))
		seen = ok && exp.After(s.now())
		return nil
	})
	return seen, err
}

func (s *boltStore) Mark(id string) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(s.now().Add(s.ttl).Unix()))
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(fingerprintBucket)
		if b == nil {
			return errBucketMissing
		}
		return b.Put([]byte(id), buf[:])
	})
}

func (s *boltStore) sweepLoop(every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			// A failed sweep is retried on the next tick; lookups already
			// ignore expired entries.
			_, _ = s.sweep()
		}
	}
}

// sweep deletes expired or malformed entries and returns how many it removed.
func (s *boltStore) sweep() (int, error) {
	now := s.now()
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(fingerprintBucket)
		if b == nil {
			return errBucketMissing
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if exp, ok := expiryOf(v); ok && exp.After(now) {
				continue
			}
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func expiryOf(v []byte) (time.Time, bool) {
	if len(v) != 8 {
		return time.Time{}, false
	}
	sec := int64(binary.BigEndian.Uint64(v))
	if sec <= 0 {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}
