package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalbasit/ferrumdb/internal/aof"
	"github.com/kalbasit/ferrumdb/internal/server"
)

func startTestServer(t *testing.T) (addr string, shutdown func()) {
	t.Helper()

	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))

	// Server.Run doesn't surface the bound address when Port is 0, so
	// probe for a free loopback port and tell the server to use it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := server.Config{
		Bind:                   "127.0.0.1",
		Port:                   port,
		Shards:                 2,
		AOFDir:                 t.TempDir(),
		AOFSync:                aof.SyncNo,
		AOFReplay:              true,
		ActiveExpireSampleSize: 20,
	}

	s, err := server.New(ctx, cfg)
	require.NoError(t, err)

	errCh := make(chan error, 1)

	go func() { errCh <- s.Run(ctx) }()

	addr = net.JoinHostPort(cfg.Bind, itoa(port))

	waitForListener(t, addr)

	return addr, func() {
		cancel()

		select {
		case <-errCh:
		case <-time.After(2 * time.Second):
		}
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	neg := n < 0
	if neg {
		n = -n
	}

	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}

	if neg {
		digits = append([]byte{'-'}, digits...)
	}

	return string(digits)
}

func waitForListener(t *testing.T, addr string) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)

	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			conn.Close()

			return
		}

		time.Sleep(20 * time.Millisecond)
	}

	t.Fatalf("server never started listening on %s", addr)
}

func TestServer_BasicSetGet(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "foo", "bar", 0).Err())

	v, err := client.Get(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, "bar", v)
}

func TestServer_WrongType(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "1", 0).Err())

	err := client.LPush(ctx, "k", "x").Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WRONGTYPE")
}

func TestServer_ExpireThenGet(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())

	ok, err := client.Expire(ctx, "k", time.Second).Result()
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(1100 * time.Millisecond)

	n, err := client.Exists(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	ttl, err := client.TTL(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-2), ttl) // go-redis maps -2 to a sentinel
}

func TestServer_DelAcrossShards(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()

	keys := []string{}
	for i := 0; i < 50; i++ {
		k := "key-" + itoa(i)
		keys = append(keys, k)
		require.NoError(t, client.Set(ctx, k, "v", 0).Err())
	}

	n, err := client.Del(ctx, keys...).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(50), n)
}

func TestServer_KeysBroadcastsAcrossShards(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()

	want := map[string]bool{}
	for i := 0; i < 50; i++ {
		k := "kk-" + itoa(i)
		want[k] = true
		require.NoError(t, client.Set(ctx, k, "v", 0).Err())
	}

	got, err := client.Keys(ctx, "*").Result()
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for _, k := range got {
		assert.True(t, want[k])
	}
}

func TestServer_ListRangeNormalization(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()

	n, err := client.RPush(ctx, "L", "a", "b", "c", "d", "e").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	vals, err := client.LRange(ctx, "L", -100, 100).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, vals)

	empty, err := client.LRange(ctx, "L", 3, 1).Result()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestServer_RawConnPipelinedPartial(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	first := "*3\r\n$3\r\nSET\r\n$1\r\na\r\n$1\r\n1\r\n*2\r\n$3\r\nGET\r\n$1\r\na"

	_, err = conn.Write([]byte(first))
	require.NoError(t, err)

	buf := make([]byte, 5)

	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))

	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "+OK\r\n", string(buf[:n]))

	_, err = conn.Write([]byte("\r\n"))
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))

	buf2 := make([]byte, 64)
	n2, err := conn.Read(buf2)
	require.NoError(t, err)
	assert.Equal(t, "$1\r\n1\r\n", string(buf2[:n2]))
}

func TestServer_CounterOverflow(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "n", "9223372036854775807", 0).Err())

	err := client.Incr(ctx, "n").Err()
	require.Error(t, err)

	v, err := client.Get(ctx, "n").Result()
	require.NoError(t, err)
	assert.Equal(t, "9223372036854775807", v)
}

func TestServer_ClientIDAndSetName(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()

	id, err := client.ClientID(ctx).Result()
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	require.NoError(t, client.ClientSetName(ctx, "my-conn").Err())

	name, err := client.ClientGetName(ctx).Result()
	require.NoError(t, err)
	assert.Equal(t, "my-conn", name)
}
