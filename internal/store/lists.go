package store

func (s *Store) listEntry(key []byte, create bool) (*entry, error) {
	e, ok := s.lookup(key)
	if !ok {
		if !create {
			return nil, nil
		}

		e = &entry{kind: KindList}
		s.data[string(key)] = e

		return e, nil
	}

	if e.kind != KindList {
		return nil, ErrWrongType
	}

	return e, nil
}

// LPush prepends values to key's list, creating it if absent, one at a time
// in argument order (so the last argument ends up at the head). It returns
// the resulting length.
func (s *Store) LPush(key []byte, values ...[]byte) (int, error) {
	e, err := s.listEntry(key, true)
	if err != nil {
		return 0, err
	}

	for _, v := range values {
		e.list = append([][]byte{append([]byte(nil), v...)}, e.list...)
	}

	return len(e.list), nil
}

// RPush appends values to key's list, creating it if absent, in argument
// order. It returns the resulting length.
func (s *Store) RPush(key []byte, values ...[]byte) (int, error) {
	e, err := s.listEntry(key, true)
	if err != nil {
		return 0, err
	}

	for _, v := range values {
		e.list = append(e.list, append([]byte(nil), v...))
	}

	return len(e.list), nil
}

// LLen returns key's list length, 0 if absent.
func (s *Store) LLen(key []byte) (int, error) {
	e, ok := s.lookup(key)
	if !ok {
		return 0, nil
	}

	if e.kind != KindList {
		return 0, ErrWrongType
	}

	return len(e.list), nil
}

// LRange returns the inclusive sublist [start, end], with negative indices
// counting from the tail (-1 = last element). Out-of-range endpoints clamp
// to the list bounds; if start ends up after end, the result is empty.
func (s *Store) LRange(key []byte, start, end int) ([][]byte, error) {
	e, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}

	if e.kind != KindList {
		return nil, ErrWrongType
	}

	n := len(e.list)
	start = normalizeIndex(start, n)
	end = normalizeIndex(end, n)

	if start < 0 {
		start = 0
	}

	if end >= n {
		end = n - 1
	}

	if start > end || n == 0 {
		return [][]byte{}, nil
	}

	out := make([][]byte, end-start+1)
	copy(out, e.list[start:end+1])

	return out, nil
}

// LIndex returns the element at index (negative counts from the tail), or
// ok=false if the index is out of range or the key is absent.
func (s *Store) LIndex(key []byte, index int) (val []byte, ok bool, err error) {
	e, present := s.lookup(key)
	if !present {
		return nil, false, nil
	}

	if e.kind != KindList {
		return nil, false, ErrWrongType
	}

	n := len(e.list)
	idx := normalizeIndex(index, n)

	if idx < 0 || idx >= n {
		return nil, false, nil
	}

	return e.list[idx], true, nil
}

// LSet overwrites the element at index (negative counts from the tail).
// It returns an ERR "index out of range" error when the index is out of
// range, and an ERR "no such key" error when key is absent.
func (s *Store) LSet(key []byte, index int, val []byte) error {
	e, ok := s.lookup(key)
	if !ok {
		return newError("ERR", "no such key")
	}

	if e.kind != KindList {
		return ErrWrongType
	}

	n := len(e.list)
	idx := normalizeIndex(index, n)

	if idx < 0 || idx >= n {
		return newError("ERR", "index out of range")
	}

	e.list[idx] = append([]byte(nil), val...)

	return nil
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		return n + i
	}

	return i
}
