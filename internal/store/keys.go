package store

// Del removes keys and returns the count actually removed.
func (s *Store) Del(keys ...[]byte) int {
	removed := 0

	for _, k := range keys {
		if _, ok := s.lookup(k); ok {
			delete(s.data, string(k))
			removed++
		}
	}

	return removed
}

// Exists returns the count of keys that exist, after lazy expiry. A key
// repeated in the argument list is counted once per occurrence, matching
// the reference server's EXISTS semantics.
func (s *Store) Exists(keys ...[]byte) int {
	count := 0

	for _, k := range keys {
		if _, ok := s.lookup(k); ok {
			count++
		}
	}

	return count
}

// Keys returns every live key matching the glob pattern.
func (s *Store) Keys(pattern []byte) [][]byte {
	now := s.now()

	var out [][]byte

	for k, e := range s.data {
		if e.expired(now) {
			delete(s.data, k)

			continue
		}

		if globMatch(pattern, []byte(k)) {
			out = append(out, []byte(k))
		}
	}

	return out
}

// FlushDB wipes the entire shard keyspace.
func (s *Store) FlushDB() {
	s.data = make(map[string]*entry)
}

// Type reports the kind of key's value, KindNone if absent.
func (s *Store) Type(key []byte) Kind {
	e, ok := s.lookup(key)
	if !ok {
		return KindNone
	}

	return e.kind
}

// RandomKey returns one live key from this store's namespace, chosen from
// Go's unspecified map iteration order, or ok=false if the store is empty.
func (s *Store) RandomKey() (key []byte, ok bool) {
	now := s.now()

	for k, e := range s.data {
		if e.expired(now) {
			delete(s.data, k)

			continue
		}

		return []byte(k), true
	}

	return nil, false
}

// Rename moves the value and TTL at src to dst, overwriting dst if it
// exists. It assumes both keys belong to this store; the cross-shard
// same-shard requirement is enforced by the caller before dispatch, since a
// Store has no visibility beyond its own shard's keyspace.
func (s *Store) Rename(src, dst []byte) error {
	e, ok := s.lookup(src)
	if !ok {
		return newError("ERR", "no such key")
	}

	delete(s.data, string(src))
	s.data[string(dst)] = e

	return nil
}
