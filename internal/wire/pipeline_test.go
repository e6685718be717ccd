package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kalbasit/ferrumdb/internal/wire"
)

// TestPipeline_ChunkedFeed exercises the pipeline-atomicity property from
// the store's external interface contract: a buffer fed to the decoder one
// byte at a time must yield exactly the same sequence of records as the
// whole buffer decoded at once, with ErrIncomplete surfacing on every
// partial prefix along the way.
func TestPipeline_ChunkedFeed(t *testing.T) {
	commands := [][]byte{
		wire.BulkArray([]byte("SET"), []byte("foo"), []byte("bar")).Bytes(),
		wire.BulkArray([]byte("GET"), []byte("foo")).Bytes(),
		wire.BulkArray([]byte("DEL"), []byte("foo")).Bytes(),
	}

	var whole []byte
	for _, c := range commands {
		whole = append(whole, c...)
	}

	var (
		got []wire.Value
		buf []byte
	)

	for i := 0; i < len(whole); i++ {
		buf = append(buf, whole[i])

		for {
			v, n, err := wire.Decode(buf)
			if err == wire.ErrIncomplete { //nolint:errorlint // sentinel comparison is intentional here
				break
			}

			require.NoError(t, err)
			got = append(got, v)
			buf = buf[n:]
		}
	}

	require.Empty(t, buf)
	require.Len(t, got, len(commands))

	for i, c := range commands {
		want, _, err := wire.Decode(c)
		require.NoError(t, err)
		require.True(t, got[i].Equal(want))
	}
}

// TestPipeline_AtomicArrayAcrossChunks ensures a multi-bulk command that
// straddles many incremental reads never produces a spuriously partial
// array — only ErrIncomplete or a fully formed record.
func TestPipeline_AtomicArrayAcrossChunks(t *testing.T) {
	raw := wire.BulkArray([]byte("MSET"), []byte("a"), []byte("1"), []byte("b"), []byte("2")).Bytes()

	for split := 1; split < len(raw); split++ {
		first := raw[:split]

		v, n, err := wire.Decode(first)
		if err == wire.ErrIncomplete { //nolint:errorlint // sentinel comparison is intentional here
			continue
		}

		require.NoError(t, err)
		require.Equal(t, split, n)
		require.Equal(t, wire.KindArray, v.Kind)
	}
}
