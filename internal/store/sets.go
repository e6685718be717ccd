package store

func (s *Store) setEntry(key []byte, create bool) (*entry, error) {
	e, ok := s.lookup(key)
	if !ok {
		if !create {
			return nil, nil
		}

		e = &entry{kind: KindSet, set: make(map[string]struct{})}
		s.data[string(key)] = e

		return e, nil
	}

	if e.kind != KindSet {
		return nil, ErrWrongType
	}

	return e, nil
}

// SAdd adds members to key's set, creating it if absent, and returns the
// count of members newly added.
func (s *Store) SAdd(key []byte, members ...[]byte) (int, error) {
	e, err := s.setEntry(key, true)
	if err != nil {
		return 0, err
	}

	added := 0

	for _, m := range members {
		if _, exists := e.set[string(m)]; !exists {
			e.set[string(m)] = struct{}{}
			added++
		}
	}

	return added, nil
}

// SRem removes members from key's set and returns the count removed.
func (s *Store) SRem(key []byte, members ...[]byte) (int, error) {
	e, ok := s.lookup(key)
	if !ok {
		return 0, nil
	}

	if e.kind != KindSet {
		return 0, ErrWrongType
	}

	removed := 0

	for _, m := range members {
		if _, exists := e.set[string(m)]; exists {
			delete(e.set, string(m))
			removed++
		}
	}

	return removed, nil
}

// SMembers returns all members of key's set, in unspecified order.
func (s *Store) SMembers(key []byte) ([][]byte, error) {
	e, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}

	if e.kind != KindSet {
		return nil, ErrWrongType
	}

	out := make([][]byte, 0, len(e.set))
	for m := range e.set {
		out = append(out, []byte(m))
	}

	return out, nil
}

// SCard returns key's set cardinality, 0 if absent.
func (s *Store) SCard(key []byte) (int, error) {
	e, ok := s.lookup(key)
	if !ok {
		return 0, nil
	}

	if e.kind != KindSet {
		return 0, ErrWrongType
	}

	return len(e.set), nil
}

// SIsMember reports whether member belongs to key's set.
func (s *Store) SIsMember(key, member []byte) (bool, error) {
	e, ok := s.lookup(key)
	if !ok {
		return false, nil
	}

	if e.kind != KindSet {
		return false, ErrWrongType
	}

	_, present := e.set[string(member)]

	return present, nil
}
