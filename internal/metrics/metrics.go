// Package metrics tracks per-shard operational counters and exposes them
// both as a lightweight snapshot struct (for the interactive console /
// future dashboard) and as Prometheus collectors (for a real /metrics
// HTTP handler bolted on outside this module).
package metrics

import "sync/atomic"

// Snapshot is a read-only view of one shard's health at a point in time.
type Snapshot struct {
	Keys          int
	ApproxBytes   int64
	CommandsOK    uint64
	CommandsErr   uint64
	LastAOFOffset int64
	Alive         bool
}

// ShardMetrics accumulates one shard's counters. Every field is an atomic
// so the owning shard goroutine can update it on the hot path while a
// Prometheus scrape or a console Snapshot() call reads it concurrently,
// without taking a lock on the command-execution path.
type ShardMetrics struct {
	keys          atomic.Int64
	approxBytes   atomic.Int64
	commandsOK    atomic.Uint64
	commandsErr   atomic.Uint64
	lastAOFOffset atomic.Int64
	alive         atomic.Bool
}

// NewShardMetrics returns a ShardMetrics with Alive initialized to true.
func NewShardMetrics() *ShardMetrics {
	m := &ShardMetrics{}
	m.alive.Store(true)

	return m
}

// RecordOK increments the success counter.
func (m *ShardMetrics) RecordOK() { m.commandsOK.Add(1) }

// RecordErr increments the command-error counter.
func (m *ShardMetrics) RecordErr() { m.commandsErr.Add(1) }

// SetKeys records the current live-key count.
func (m *ShardMetrics) SetKeys(n int) { m.keys.Store(int64(n)) }

// SetApproxBytes records an approximate resident size for the shard's
// keyspace.
func (m *ShardMetrics) SetApproxBytes(n int64) { m.approxBytes.Store(n) }

// SetAOFOffset records the AOF file's current size.
func (m *ShardMetrics) SetAOFOffset(n int64) { m.lastAOFOffset.Store(n) }

// SetAlive flips liveness, used when a persistence failure takes a shard
// out of service.
func (m *ShardMetrics) SetAlive(v bool) { m.alive.Store(v) }

// Snapshot returns a consistent-enough-for-observability copy of the
// current counters. Fields are read independently, not under a shared
// lock — acceptable for a metrics surface, per spec.md §6's "lightweight
// snapshot interface."
func (m *ShardMetrics) Snapshot() Snapshot {
	return Snapshot{
		Keys:          int(m.keys.Load()),
		ApproxBytes:   m.approxBytes.Load(),
		CommandsOK:    m.commandsOK.Load(),
		CommandsErr:   m.commandsErr.Load(),
		LastAOFOffset: m.lastAOFOffset.Load(),
		Alive:         m.alive.Load(),
	}
}
