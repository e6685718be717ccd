package server

import (
	"context"
	"fmt"

	"github.com/kalbasit/ferrumdb/internal/wire"
)

// Inject enqueues a synthetic command directly to shardID, bypassing the
// TCP listener entirely — the entry point spec.md §6 reserves for an
// interactive console.
func (s *Server) Inject(ctx context.Context, shardID int, cmd string, args [][]byte) (wire.Value, error) {
	if shardID < 0 || shardID >= len(s.shards) {
		return wire.Value{}, fmt.Errorf("server: shard index %d out of range [0, %d)", shardID, len(s.shards))
	}

	return s.exec(ctx, shardID, cmd, args), nil
}
