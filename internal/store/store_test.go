package store_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalbasit/ferrumdb/internal/store"
)

func TestSetGet(t *testing.T) {
	s := store.New()
	s.Set([]byte("foo"), []byte("bar"))

	v, ok, err := s.Get([]byte("foo"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bar", string(v))
}

func TestGetMissing(t *testing.T) {
	s := store.New()

	_, ok, err := s.Get([]byte("nope"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWrongType(t *testing.T) {
	s := store.New()
	s.Set([]byte("k"), []byte("1"))

	_, err := s.LPush([]byte("k"), []byte("x"))
	assert.ErrorIs(t, err, store.ErrWrongType)
}

func TestDelExists(t *testing.T) {
	s := store.New()
	s.Set([]byte("a"), []byte("1"))
	s.Set([]byte("b"), []byte("2"))

	assert.Equal(t, 2, s.Exists([]byte("a"), []byte("b"), []byte("missing")))
	assert.Equal(t, 2, s.Del([]byte("a"), []byte("b"), []byte("missing")))
	assert.Equal(t, 0, s.Exists([]byte("a"), []byte("b")))
}

func TestCounterOverflow(t *testing.T) {
	s := store.New()
	s.Set([]byte("n"), []byte("9223372036854775807"))

	_, err := s.IncrBy([]byte("n"), 1)
	assert.ErrorIs(t, err, store.ErrOutOfRange)

	v, ok, err := s.Get([]byte("n"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "9223372036854775807", string(v))
}

func TestDecrByMinInt64DoesNotPanic(t *testing.T) {
	s := store.New()
	s.Set([]byte("n"), []byte("0"))

	_, err := s.DecrBy([]byte("n"), math.MinInt64)
	assert.ErrorIs(t, err, store.ErrOutOfRange)
}

func TestIncrMissingKeyTreatedAsZero(t *testing.T) {
	s := store.New()

	n, err := s.Incr([]byte("c"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestIncrNotAnInteger(t *testing.T) {
	s := store.New()
	s.Set([]byte("k"), []byte("not-a-number"))

	_, err := s.Incr([]byte("k"))
	assert.ErrorIs(t, err, store.ErrNotInteger)
}

func TestListRangeNormalization(t *testing.T) {
	s := store.New()

	n, err := s.RPush([]byte("L"), []byte("a"), []byte("b"), []byte("c"), []byte("d"), []byte("e"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	vals, err := s.LRange([]byte("L"), -100, 100)
	require.NoError(t, err)
	require.Len(t, vals, 5)
	assert.Equal(t, "a", string(vals[0]))
	assert.Equal(t, "e", string(vals[4]))

	empty, err := s.LRange([]byte("L"), 3, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLPushOrder(t *testing.T) {
	s := store.New()

	_, err := s.LPush([]byte("L"), []byte("a"), []byte("b"))
	require.NoError(t, err)

	vals, err := s.LRange([]byte("L"), 0, -1)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.Equal(t, "b", string(vals[0]))
	assert.Equal(t, "a", string(vals[1]))
}

func TestLIndexLSet(t *testing.T) {
	s := store.New()

	_, err := s.RPush([]byte("L"), []byte("a"), []byte("b"), []byte("c"))
	require.NoError(t, err)

	v, ok, err := s.LIndex([]byte("L"), -1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", string(v))

	require.NoError(t, s.LSet([]byte("L"), 0, []byte("z")))

	v, ok, err = s.LIndex([]byte("L"), 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "z", string(v))
}

func TestSetOps(t *testing.T) {
	s := store.New()

	added, err := s.SAdd([]byte("S"), []byte("a"), []byte("b"), []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	card, err := s.SCard([]byte("S"))
	require.NoError(t, err)
	assert.Equal(t, 2, card)

	isMember, err := s.SIsMember([]byte("S"), []byte("a"))
	require.NoError(t, err)
	assert.True(t, isMember)

	removed, err := s.SRem([]byte("S"), []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestHashOps(t *testing.T) {
	s := store.New()

	created, err := s.HSet([]byte("H"), [2][]byte{[]byte("f1"), []byte("v1")}, [2][]byte{[]byte("f2"), []byte("v2")})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = s.HSet([]byte("H"), [2][]byte{[]byte("f1"), []byte("updated")})
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	v, ok, err := s.HGet([]byte("H"), []byte("f1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "updated", string(v))

	n, err := s.HLen([]byte("H"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	removed, err := s.HDel([]byte("H"), []byte("f1"))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestHIncrBy(t *testing.T) {
	s := store.New()

	n, err := s.HIncrBy([]byte("H"), []byte("f"), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = s.HIncrBy([]byte("H"), []byte("f"), -2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestTTLCorrectness(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	s := store.NewWithClock(clock)

	s.Set([]byte("k"), []byte("v"))
	assert.True(t, s.Expire([]byte("k"), 10))

	now = now.Add(3 * time.Second)
	assert.Equal(t, int64(7), s.TTL([]byte("k")))

	now = now.Add(8 * time.Second)

	_, ok, err := s.Get([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(-2), s.TTL([]byte("k")))
}

func TestTTLNoTTLSet(t *testing.T) {
	s := store.New()
	s.Set([]byte("k"), []byte("v"))
	assert.Equal(t, int64(-1), s.TTL([]byte("k")))
}

func TestPersist(t *testing.T) {
	now := time.Now()
	s := store.NewWithClock(func() time.Time { return now })
	s.Set([]byte("k"), []byte("v"))
	s.Expire([]byte("k"), 10)

	assert.True(t, s.Persist([]byte("k")))
	assert.Equal(t, int64(-1), s.TTL([]byte("k")))
	assert.False(t, s.Persist([]byte("k")))
}

func TestExpiredKeyLazilyRemoved(t *testing.T) {
	now := time.Now()
	s := store.NewWithClock(func() time.Time { return now })
	s.Set([]byte("k"), []byte("v"))
	s.Expire([]byte("k"), 1)

	now = now.Add(2 * time.Second)

	assert.Equal(t, 0, s.Exists([]byte("k")))
}

func TestSampleExpired(t *testing.T) {
	now := time.Now()
	s := store.NewWithClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		key := []byte{byte('a' + i)}
		s.Set(key, []byte("v"))
		s.Expire(key, 1)
	}

	now = now.Add(2 * time.Second)

	reaped := s.SampleExpired(20)
	assert.Equal(t, 5, reaped)
}

func TestKeysGlob(t *testing.T) {
	s := store.New()
	s.Set([]byte("foo"), []byte("1"))
	s.Set([]byte("foobar"), []byte("1"))
	s.Set([]byte("baz"), []byte("1"))

	matches := s.Keys([]byte("foo*"))
	assert.Len(t, matches, 2)

	matches = s.Keys([]byte("ba?"))
	assert.Len(t, matches, 1)

	matches = s.Keys([]byte("[fb]*"))
	assert.Len(t, matches, 3)
}

func TestFlushDB(t *testing.T) {
	s := store.New()
	s.Set([]byte("a"), []byte("1"))
	s.Set([]byte("b"), []byte("2"))

	s.FlushDB()
	assert.Equal(t, 0, s.Len())
}

func TestTypeAndRandomKey(t *testing.T) {
	s := store.New()
	assert.Equal(t, store.KindNone, s.Type([]byte("missing")))

	s.Set([]byte("k"), []byte("v"))
	assert.Equal(t, store.KindString, s.Type([]byte("k")))

	key, ok := s.RandomKey()
	require.True(t, ok)
	assert.Equal(t, "k", string(key))
}

func TestRename(t *testing.T) {
	s := store.New()
	s.Set([]byte("a"), []byte("1"))

	require.NoError(t, s.Rename([]byte("a"), []byte("b")))

	_, ok, _ := s.Get([]byte("a"))
	assert.False(t, ok)

	v, ok, _ := s.Get([]byte("b"))
	assert.True(t, ok)
	assert.Equal(t, "1", string(v))
}

func TestAppendStrlenGetSetSetNX(t *testing.T) {
	s := store.New()

	n, err := s.Append([]byte("k"), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = s.Append([]byte("k"), []byte(" world"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	l, err := s.Strlen([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, 11, l)

	old, existed, err := s.GetSet([]byte("k"), []byte("new"))
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, "hello world", string(old))

	assert.False(t, s.SetNX([]byte("k"), []byte("other")))
	assert.True(t, s.SetNX([]byte("new-key"), []byte("v")))
}
