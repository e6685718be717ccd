package store

import (
	"math"
	"strconv"
)

func (s *Store) stringEntry(key []byte, create bool) (*entry, error) {
	e, ok := s.lookup(key)
	if !ok {
		if !create {
			return nil, nil
		}

		e = &entry{kind: KindString}
		s.data[string(key)] = e

		return e, nil
	}

	if e.kind != KindString {
		return nil, ErrWrongType
	}

	return e, nil
}

// Set overwrites key to String(val), clearing any existing TTL.
func (s *Store) Set(key, val []byte) {
	e := &entry{kind: KindString, str: append([]byte(nil), val...)}
	s.data[string(key)] = e
}

// Get returns key's string value. ok is false if the key is absent.
func (s *Store) Get(key []byte) (val []byte, ok bool, err error) {
	e, present := s.lookup(key)
	if !present {
		return nil, false, nil
	}

	if e.kind != KindString {
		return nil, false, ErrWrongType
	}

	return e.str, true, nil
}

// Append concatenates val onto key's string value, creating it if absent,
// and returns the resulting length.
func (s *Store) Append(key, val []byte) (int, error) {
	e, err := s.stringEntry(key, true)
	if err != nil {
		return 0, err
	}

	e.str = append(e.str, val...)

	return len(e.str), nil
}

// Strlen returns the length of key's string value, 0 if absent.
func (s *Store) Strlen(key []byte) (int, error) {
	e, ok := s.lookup(key)
	if !ok {
		return 0, nil
	}

	if e.kind != KindString {
		return 0, ErrWrongType
	}

	return len(e.str), nil
}

// GetSet atomically sets key to val and returns the previous value. ok is
// false if the key was absent before the write.
func (s *Store) GetSet(key, val []byte) (old []byte, ok bool, err error) {
	e, present := s.lookup(key)

	if present {
		if e.kind != KindString {
			return nil, false, ErrWrongType
		}

		old = e.str
	}

	s.Set(key, val)

	return old, present, nil
}

// SetNX sets key to val only if key does not already exist. It reports
// whether the write happened.
func (s *Store) SetNX(key, val []byte) bool {
	if _, ok := s.lookup(key); ok {
		return false
	}

	s.Set(key, val)

	return true
}

// Incr is IncrBy(key, 1).
func (s *Store) Incr(key []byte) (int64, error) { return s.IncrBy(key, 1) }

// Decr is equivalent to subtracting 1, without risking overflow on negation
// of math.MinInt64 the way a naive IncrBy(key, -1) would for DecrBy(key,
// math.MinInt64).
func (s *Store) Decr(key []byte) (int64, error) { return s.addDelta(key, -1) }

// IncrBy parses key's current value as a signed 64-bit decimal integer
// (treating a missing key as 0), adds delta, and writes back the result.
// Overflow leaves the stored value untouched and returns ErrOutOfRange.
func (s *Store) IncrBy(key []byte, delta int64) (int64, error) {
	return s.addDelta(key, delta)
}

// DecrBy subtracts n from key's current integer value.
func (s *Store) DecrBy(key []byte, n int64) (int64, error) {
	e, err := s.stringEntry(key, true)
	if err != nil {
		return 0, err
	}

	cur, err := parseCounter(e.str)
	if err != nil {
		return 0, err
	}

	next, ok := subOverflow(cur, n)
	if !ok {
		return 0, ErrOutOfRange
	}

	e.str = []byte(strconv.FormatInt(next, 10))

	return next, nil
}

func (s *Store) addDelta(key []byte, delta int64) (int64, error) {
	e, err := s.stringEntry(key, true)
	if err != nil {
		return 0, err
	}

	cur, err := parseCounter(e.str)
	if err != nil {
		return 0, err
	}

	next, ok := addOverflow(cur, delta)
	if !ok {
		return 0, ErrOutOfRange
	}

	e.str = []byte(strconv.FormatInt(next, 10))

	return next, nil
}

func parseCounter(raw []byte) (int64, error) {
	if len(raw) == 0 {
		return 0, nil
	}

	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}

	return n, nil
}

func addOverflow(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}

	return sum, true
}

func subOverflow(a, b int64) (int64, bool) {
	if b == math.MinInt64 {
		// -(math.MinInt64) is not representable, so a decrement by
		// MinInt64 is rejected for every a, including a < 0 where
		// a - MinInt64 would still fit.
		return 0, false
	}

	return addOverflow(a, -b)
}
