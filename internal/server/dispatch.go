package server

import (
	"context"
	"errors"
	"strings"

	"github.com/kalbasit/ferrumdb/internal/router"
	"github.com/kalbasit/ferrumdb/internal/shard"
	"github.com/kalbasit/ferrumdb/internal/wire"
)

// adminBroadcastCommands cover every shard. FLUSHDB and KEYS are fanned
// out to every shard and aggregated; INFO is rendered from every shard's
// metrics snapshot without entering a shard's queue (see dispatchBroadcast).
var adminBroadcastCommands = map[string]bool{
	"FLUSHDB": true,
	"KEYS":    true,
	"INFO":    true,
}

// multiKeyCommands accept more than one key and must be partitioned across
// the shards those keys route to, with their per-shard results summed.
var multiKeyCommands = map[string]bool{
	"DEL":    true,
	"EXISTS": true,
}

// dispatch classifies cmd and routes it to the shard(s) that must execute
// it, returning the already-aggregated RESP2 reply.
func (s *Server) dispatch(ctx context.Context, cc *clientContext, cmd string, args [][]byte) wire.Value {
	upper := strings.ToUpper(cmd)

	if upper == "CLIENT" {
		return s.dispatchClient(cc, args)
	}

	if adminBroadcastCommands[upper] {
		return s.dispatchBroadcast(ctx, upper, args)
	}

	if multiKeyCommands[upper] {
		return s.dispatchMultiKey(ctx, upper, args)
	}

	if upper == "RENAME" {
		return s.dispatchRename(ctx, args)
	}

	if len(args) == 0 {
		return wire.Err("ERR", "wrong number of arguments for '"+cmd+"' command")
	}

	target := s.router.Route(args[0])

	return s.exec(ctx, target, upper, args)
}

// exec sends one command to a specific shard and blocks for its reply.
func (s *Server) exec(ctx context.Context, shardIdx int, cmd string, args [][]byte) wire.Value {
	item := shard.NewWorkItem(cmd, args)
	s.shards[shardIdx].Enqueue(item)

	select {
	case v := <-item.Reply:
		return v
	case <-ctx.Done():
		return wire.Err("ERR", "connection closed")
	}
}

func (s *Server) dispatchMultiKey(ctx context.Context, cmd string, args [][]byte) wire.Value {
	if len(args) == 0 {
		return wire.Err("ERR", "wrong number of arguments for '"+cmd+"' command")
	}

	byShard := s.router.RouteAll(args)

	total := int64(0)

	for shardIdx, keys := range byShard {
		reply := s.exec(ctx, shardIdx, cmd, keys)
		if reply.Kind == wire.KindError {
			return reply
		}

		total += reply.Int
	}

	return wire.Int64(total)
}

func (s *Server) dispatchRename(ctx context.Context, args [][]byte) wire.Value {
	if len(args) != 2 {
		return wire.Err("ERR", "wrong number of arguments for 'rename' command")
	}

	src, dst := s.router.Route(args[0]), s.router.Route(args[1])
	if src != dst {
		return wire.Err("ERR", "keys not in same shard")
	}

	return s.exec(ctx, src, "RENAME", args)
}

// broadcastError wraps a shard's error reply so router.Broadcast can
// propagate it as a Go error while dispatchBroadcast still recovers the
// original RESP2 reply to send back to the client.
type broadcastError struct {
	reply wire.Value
}

func (e *broadcastError) Error() string { return e.reply.ErrTag + " " + e.reply.ErrMsg }

func (s *Server) dispatchBroadcast(ctx context.Context, cmd string, args [][]byte) wire.Value {
	if cmd == "INFO" {
		// INFO is answered straight from the metrics registry's atomics —
		// it never needs to cross a shard's work-item queue.
		return s.info()
	}

	n := s.router.N()

	results, err := router.Broadcast(ctx, n, func(ctx context.Context, shardIdx int) (wire.Value, error) {
		reply := s.exec(ctx, shardIdx, cmd, args)
		if reply.Kind == wire.KindError {
			return reply, &broadcastError{reply: reply}
		}

		return reply, nil
	})
	if err != nil {
		var be *broadcastError
		if errors.As(err, &be) {
			return be.reply
		}

		return wire.Err("ERR", err.Error())
	}

	switch cmd {
	case "FLUSHDB":
		return wire.Simple("OK")
	case "KEYS":
		var all [][]byte
		for _, r := range results {
			for _, item := range r.Array {
				all = append(all, item.Bulk)
			}
		}

		return wire.BulkArray(all...)
	default:
		return wire.Err("ERR", "unsupported broadcast command '"+cmd+"'")
	}
}
