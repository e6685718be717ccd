package server

import (
	"fmt"
	"strings"

	"github.com/kalbasit/ferrumdb/internal/wire"
)

// info renders the INFO bulk string from the metrics registry's current
// snapshot of every shard, with the sections spec.md §4.4 names.
func (s *Server) info() wire.Value {
	var b strings.Builder

	fmt.Fprintf(&b, "# Server\r\n")
	fmt.Fprintf(&b, "run_id:%s\r\n", s.runID)
	fmt.Fprintf(&b, "tcp_port:%d\r\n", s.cfg.Port)
	fmt.Fprintf(&b, "shard_count:%d\r\n", len(s.shards))
	fmt.Fprintf(&b, "uptime_in_seconds:%d\r\n", int64(now().Sub(processStart).Seconds()))
	b.WriteString("\r\n")

	totalKeys := 0
	totalBytes := int64(0)
	totalOK := uint64(0)
	totalErr := uint64(0)

	for i := range s.shards {
		snap := s.metrics.Shard(i).Snapshot()
		totalKeys += snap.Keys
		totalBytes += snap.ApproxBytes
		totalOK += snap.CommandsOK
		totalErr += snap.CommandsErr
	}

	fmt.Fprintf(&b, "# Memory\r\n")
	fmt.Fprintf(&b, "approx_bytes:%d\r\n", totalBytes)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "# Stats\r\n")
	fmt.Fprintf(&b, "total_keys:%d\r\n", totalKeys)
	fmt.Fprintf(&b, "total_commands_ok:%d\r\n", totalOK)
	fmt.Fprintf(&b, "total_commands_err:%d\r\n", totalErr)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "# Shards\r\n")

	for i := range s.shards {
		snap := s.metrics.Shard(i).Snapshot()
		fmt.Fprintf(&b, "shard%d:keys=%d,ok=%d,err=%d,aof_offset=%d,alive=%t\r\n",
			i, snap.Keys, snap.CommandsOK, snap.CommandsErr, snap.LastAOFOffset, snap.Alive)
	}

	return wire.BulkString(b.String())
}
