package router_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalbasit/ferrumdb/internal/router"
)

func TestRoute_Stability(t *testing.T) {
	r := router.New(8)

	for i := 0; i < 1000; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		first := r.Route(key)
		second := r.Route(key)
		assert.Equal(t, first, second)
	}
}

func TestRoute_StableAcrossRestarts(t *testing.T) {
	// Two independently constructed routers stand in for a process
	// restart: a key must land on the same shard both times, or a
	// shard's AOF replay would hand its keys to the wrong shard.
	r1 := router.New(8)
	r2 := router.New(8)

	for i := 0; i < 1000; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		assert.Equal(t, r1.Route(key), r2.Route(key))
	}
}

func TestRoute_WithinBounds(t *testing.T) {
	r := router.New(5)

	for i := 0; i < 1000; i++ {
		s := r.Route([]byte(fmt.Sprintf("k%d", i)))
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, 5)
	}
}

func TestRoute_Distribution(t *testing.T) {
	const n = 8

	r := router.New(n)
	counts := make([]int, n)

	const total = 8000

	for i := 0; i < total; i++ {
		counts[r.Route([]byte(fmt.Sprintf("distkey-%d", i)))]++
	}

	expected := float64(total) / float64(n)

	for _, c := range counts {
		assert.InDelta(t, expected, float64(c), expected*0.5)
	}
}

func TestRouteAll_Partitions(t *testing.T) {
	r := router.New(4)

	keys := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}

	byShard := r.RouteAll(keys)

	total := 0
	for _, ks := range byShard {
		total += len(ks)
	}

	assert.Equal(t, len(keys), total)

	for _, k := range keys {
		s := r.Route(k)
		found := false

		for _, candidate := range byShard[s] {
			if string(candidate) == string(k) {
				found = true
			}
		}

		assert.True(t, found)
	}
}

func TestNumShards_Bounds(t *testing.T) {
	n := router.NumShards()
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, router.MaxShards)
}

func TestBroadcast_CollectsInShardOrder(t *testing.T) {
	results, err := router.Broadcast(context.Background(), 5, func(_ context.Context, shard int) (int, error) {
		return shard * shard, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 5)

	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
}

func TestBroadcast_PropagatesError(t *testing.T) {
	boom := fmt.Errorf("boom")

	_, err := router.Broadcast(context.Background(), 4, func(_ context.Context, shard int) (int, error) {
		if shard == 2 {
			return 0, boom
		}

		return shard, nil
	})
	require.Error(t, err)
}

func TestNew_ReportsShardCount(t *testing.T) {
	r := router.New(math.MaxInt8)
	assert.Equal(t, math.MaxInt8, r.N())
}
