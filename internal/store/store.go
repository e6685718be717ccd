// Package store implements the in-memory data model owned exclusively by
// one shard executor: a keyspace of typed values with per-key TTLs, lazy
// expiration on every access path, and active expiration sampling driven by
// the owning shard between work items.
//
// Nothing in this package is safe for concurrent use — that is the point.
// Exactly one goroutine, the shard's executor, ever calls into a Store.
package store

import (
	"time"
)

// entry is the internal representation of one key's value plus its TTL.
// A zero deadline means no TTL is set.
type entry struct {
	kind Kind

	str  []byte
	list [][]byte
	set  map[string]struct{}
	hash map[string][]byte

	deadline time.Time
}

func (e *entry) hasTTL() bool { return !e.deadline.IsZero() }

func (e *entry) expired(now time.Time) bool {
	return e.hasTTL() && !now.Before(e.deadline)
}

// Store is one shard's keyspace.
type Store struct {
	data map[string]*entry

	// now is the clock the store consults for TTL comparisons. It defaults
	// to time.Now; tests substitute a controllable clock to exercise
	// expiration without sleeping.
	now func() time.Time
}

// New returns an empty Store using the wall clock.
func New() *Store {
	return &Store{data: make(map[string]*entry), now: time.Now}
}

// NewWithClock returns an empty Store that consults clock instead of
// time.Now, for deterministic TTL tests.
func NewWithClock(clock func() time.Time) *Store {
	return &Store{data: make(map[string]*entry), now: clock}
}

// lookup returns the live entry for key, applying lazy expiration: an
// entry whose deadline has passed is deleted and reported absent.
func (s *Store) lookup(key []byte) (*entry, bool) {
	e, ok := s.data[string(key)]
	if !ok {
		return nil, false
	}

	if e.expired(s.now()) {
		delete(s.data, string(key))

		return nil, false
	}

	return e, true
}

// Len reports the number of live keys, applying lazy expiration to every
// key with a TTL as it scans. Used by INFO's keyspace accounting.
func (s *Store) Len() int {
	now := s.now()

	for k, e := range s.data {
		if e.expired(now) {
			delete(s.data, k)
		}
	}

	return len(s.data)
}

// SampleExpired removes up to k keys carrying a TTL whose deadline has
// passed, chosen from Go's unspecified map iteration order (a stand-in for
// "randomly chosen" — grounded on spec.md §4.3's active-expiration sweep).
// It returns the number of keys reaped.
func (s *Store) SampleExpired(k int) int {
	now := s.now()
	reaped := 0
	scanned := 0

	for key, e := range s.data {
		if !e.hasTTL() {
			continue
		}

		if scanned >= k {
			break
		}

		scanned++

		if e.expired(now) {
			delete(s.data, key)
			reaped++
		}
	}

	return reaped
}
