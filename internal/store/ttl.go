package store

import "time"

// Expire sets key's TTL to seconds from now. It returns true if the key
// exists and the deadline was set.
func (s *Store) Expire(key []byte, seconds int64) bool {
	return s.expireIn(key, time.Duration(seconds)*time.Second)
}

// PExpire is Expire with millisecond resolution.
func (s *Store) PExpire(key []byte, millis int64) bool {
	return s.expireIn(key, time.Duration(millis)*time.Millisecond)
}

func (s *Store) expireIn(key []byte, d time.Duration) bool {
	e, ok := s.lookup(key)
	if !ok {
		return false
	}

	e.deadline = s.now().Add(d)

	return true
}

// TTL returns the remaining whole seconds until key expires (rounded toward
// zero, floored at 0), -1 if key exists with no TTL, or -2 if key is absent.
func (s *Store) TTL(key []byte) int64 {
	remaining, ok := s.remaining(key)
	if !ok {
		return -2
	}

	if remaining < 0 {
		return -1
	}

	secs := int64(remaining / time.Second)
	if secs < 0 {
		secs = 0
	}

	return secs
}

// PTTL is TTL with millisecond resolution.
func (s *Store) PTTL(key []byte) int64 {
	remaining, ok := s.remaining(key)
	if !ok {
		return -2
	}

	if remaining < 0 {
		return -1
	}

	millis := int64(remaining / time.Millisecond)
	if millis < 0 {
		millis = 0
	}

	return millis
}

// remaining returns the time left on key's TTL. ok is false if the key is
// absent. A negative remaining duration with ok true signals "no TTL set".
func (s *Store) remaining(key []byte) (time.Duration, bool) {
	e, ok := s.lookup(key)
	if !ok {
		return 0, false
	}

	if !e.hasTTL() {
		return -1, true
	}

	return e.deadline.Sub(s.now()), true
}

// PExpireAt sets key's TTL to the absolute deadline given as epoch
// milliseconds. It returns true if the key exists and the deadline was set.
func (s *Store) PExpireAt(key []byte, epochMillis int64) bool {
	e, ok := s.lookup(key)
	if !ok {
		return false
	}

	e.deadline = time.UnixMilli(epochMillis)

	return true
}

// ExpireAtMillis reports key's absolute TTL deadline as epoch milliseconds.
// ok is false if key is absent or has no TTL. The shard executor calls this
// right after a successful EXPIRE/PEXPIRE to normalize the command it
// appends to the AOF into its absolute-deadline form, so replay reconstructs
// the original expiration instead of restarting it relative to replay time.
func (s *Store) ExpireAtMillis(key []byte) (int64, bool) {
	e, ok := s.lookup(key)
	if !ok || !e.hasTTL() {
		return 0, false
	}

	return e.deadline.UnixMilli(), true
}

// Persist clears key's TTL, reporting whether a TTL had been set.
func (s *Store) Persist(key []byte) bool {
	e, ok := s.lookup(key)
	if !ok || !e.hasTTL() {
		return false
	}

	e.deadline = time.Time{}

	return true
}
