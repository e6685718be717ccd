package store

import "strconv"

func (s *Store) hashEntry(key []byte, create bool) (*entry, error) {
	e, ok := s.lookup(key)
	if !ok {
		if !create {
			return nil, nil
		}

		e = &entry{kind: KindHash, hash: make(map[string][]byte)}
		s.data[string(key)] = e

		return e, nil
	}

	if e.kind != KindHash {
		return nil, ErrWrongType
	}

	return e, nil
}

// HSet writes field/value pairs into key's hash, creating it if absent,
// and returns the count of fields that were newly created (not merely
// overwritten).
func (s *Store) HSet(key []byte, pairs ...[2][]byte) (int, error) {
	e, err := s.hashEntry(key, true)
	if err != nil {
		return 0, err
	}

	created := 0

	for _, p := range pairs {
		field, val := string(p[0]), p[1]

		if _, exists := e.hash[field]; !exists {
			created++
		}

		e.hash[field] = append([]byte(nil), val...)
	}

	return created, nil
}

// HSetNX sets field to val only if it does not already exist in key's
// hash. It reports whether the write happened.
func (s *Store) HSetNX(key, field, val []byte) (bool, error) {
	e, err := s.hashEntry(key, true)
	if err != nil {
		return false, err
	}

	if _, exists := e.hash[string(field)]; exists {
		return false, nil
	}

	e.hash[string(field)] = append([]byte(nil), val...)

	return true, nil
}

// HGet returns field's value from key's hash. ok is false if the key or
// field is absent.
func (s *Store) HGet(key, field []byte) (val []byte, ok bool, err error) {
	e, present := s.lookup(key)
	if !present {
		return nil, false, nil
	}

	if e.kind != KindHash {
		return nil, false, ErrWrongType
	}

	v, exists := e.hash[string(field)]

	return v, exists, nil
}

// HGetAll returns key's hash flattened as [field1, value1, field2, value2, ...].
func (s *Store) HGetAll(key []byte) ([][]byte, error) {
	e, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}

	if e.kind != KindHash {
		return nil, ErrWrongType
	}

	out := make([][]byte, 0, len(e.hash)*2)
	for f, v := range e.hash {
		out = append(out, []byte(f), v)
	}

	return out, nil
}

// HDel removes fields from key's hash and returns the count removed.
func (s *Store) HDel(key []byte, fields ...[]byte) (int, error) {
	e, ok := s.lookup(key)
	if !ok {
		return 0, nil
	}

	if e.kind != KindHash {
		return 0, ErrWrongType
	}

	removed := 0

	for _, f := range fields {
		if _, exists := e.hash[string(f)]; exists {
			delete(e.hash, string(f))
			removed++
		}
	}

	return removed, nil
}

// HKeys returns key's field names.
func (s *Store) HKeys(key []byte) ([][]byte, error) {
	e, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}

	if e.kind != KindHash {
		return nil, ErrWrongType
	}

	out := make([][]byte, 0, len(e.hash))
	for f := range e.hash {
		out = append(out, []byte(f))
	}

	return out, nil
}

// HVals returns key's field values.
func (s *Store) HVals(key []byte) ([][]byte, error) {
	e, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}

	if e.kind != KindHash {
		return nil, ErrWrongType
	}

	out := make([][]byte, 0, len(e.hash))
	for _, v := range e.hash {
		out = append(out, v)
	}

	return out, nil
}

// HLen returns the number of fields in key's hash, 0 if absent.
func (s *Store) HLen(key []byte) (int, error) {
	e, ok := s.lookup(key)
	if !ok {
		return 0, nil
	}

	if e.kind != KindHash {
		return 0, ErrWrongType
	}

	return len(e.hash), nil
}

// HExists reports whether field is present in key's hash.
func (s *Store) HExists(key, field []byte) (bool, error) {
	e, ok := s.lookup(key)
	if !ok {
		return false, nil
	}

	if e.kind != KindHash {
		return false, ErrWrongType
	}

	_, exists := e.hash[string(field)]

	return exists, nil
}

// HIncrBy parses field's current value as a signed 64-bit decimal integer
// (a missing field treated as 0), adds n, and writes back the result.
func (s *Store) HIncrBy(key, field []byte, n int64) (int64, error) {
	e, err := s.hashEntry(key, true)
	if err != nil {
		return 0, err
	}

	cur, err := parseCounter(e.hash[string(field)])
	if err != nil {
		return 0, err
	}

	next, ok := addOverflow(cur, n)
	if !ok {
		return 0, ErrOutOfRange
	}

	e.hash[string(field)] = []byte(strconv.FormatInt(next, 10))

	return next, nil
}
