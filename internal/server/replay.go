package server

import (
	"fmt"

	"github.com/kalbasit/ferrumdb/internal/shard"
	"github.com/kalbasit/ferrumdb/internal/store"
	"github.com/kalbasit/ferrumdb/internal/wire"
)

// replayInto decodes one AOF payload (a RESP2 array-of-bulk command, as
// committed) and applies it directly to st, without going through a
// shard's work-item queue — there is no client waiting during replay.
func replayInto(st *store.Store, payload []byte) error {
	v, n, err := wire.Decode(payload)
	if err != nil {
		return fmt.Errorf("server: decode aof payload: %w", err)
	}

	if n != len(payload) {
		return fmt.Errorf("server: aof payload had %d trailing bytes", len(payload)-n)
	}

	args, ok := v.StringArgs()
	if !ok || len(args) == 0 {
		return fmt.Errorf("server: aof payload is not a non-empty command array")
	}

	shard.Apply(st, string(args[0]), args[1:])

	return nil
}
