package server

import "github.com/kalbasit/ferrumdb/internal/aof"

// Config assembles everything server.Run needs. The CLI layer
// (cmd/ferrumdb) is responsible for parsing flags/env/config-file into one
// of these and nothing more — per spec.md's "process launcher... interfaces
// only" exclusion, the CLI never reaches into server internals directly.
type Config struct {
	Bind string
	Port int

	// Shards, when > 0, overrides router.NumShards()'s automatic
	// GOMAXPROCS-derived count. Zero means "compute it."
	Shards int

	AOFDir    string
	AOFSync   aof.SyncPolicy
	AOFReplay bool

	ActiveExpireInterval   string // cron spec or Go duration, e.g. "@every 1s" or "2s"; intervals under 1s run once a second
	ActiveExpireSampleSize int

	PrometheusEnabled bool
}
