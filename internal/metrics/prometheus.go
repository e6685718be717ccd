package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry owns the process-wide Prometheus registerer and the per-shard
// metric collectors derived from it. It does not serve HTTP itself — that
// surface belongs to the dashboard this module treats as an external
// collaborator — but a caller can hand reg.Gatherer to promhttp.Handler
// without touching shard code.
type Registry struct {
	reg    *prometheus.Registry
	shards []*ShardMetrics
}

// NewRegistry builds a Registry wired with one ShardMetrics (and matching
// Prometheus collectors) per shard index in [0, n).
func NewRegistry(n int) *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{reg: reg, shards: make([]*ShardMetrics, n)}

	for i := 0; i < n; i++ {
		sm := NewShardMetrics()
		r.shards[i] = sm
		registerShardCollectors(reg, i, sm)
	}

	return r
}

// Gatherer exposes the underlying prometheus.Gatherer for an external
// /metrics HTTP handler to scrape.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Shard returns the ShardMetrics for shard index i.
func (r *Registry) Shard(i int) *ShardMetrics { return r.shards[i] }

func registerShardCollectors(reg *prometheus.Registry, shardID int, sm *ShardMetrics) {
	label := prometheus.Labels{"shard": strconv.Itoa(shardID)}

	factory := promauto.With(reg)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "ferrumdb",
		Subsystem:   "shard",
		Name:        "keys",
		Help:        "Number of live keys owned by this shard.",
		ConstLabels: label,
	}, func() float64 { return float64(sm.keys.Load()) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "ferrumdb",
		Subsystem:   "shard",
		Name:        "approx_bytes",
		Help:        "Approximate resident size of this shard's keyspace.",
		ConstLabels: label,
	}, func() float64 { return float64(sm.approxBytes.Load()) })

	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   "ferrumdb",
		Subsystem:   "shard",
		Name:        "commands_ok_total",
		Help:        "Commands this shard executed successfully.",
		ConstLabels: label,
	}, func() float64 { return float64(sm.commandsOK.Load()) })

	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   "ferrumdb",
		Subsystem:   "shard",
		Name:        "commands_err_total",
		Help:        "Commands this shard rejected with a command-level error.",
		ConstLabels: label,
	}, func() float64 { return float64(sm.commandsErr.Load()) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "ferrumdb",
		Subsystem:   "shard",
		Name:        "aof_offset_bytes",
		Help:        "Current size of this shard's AOF file.",
		ConstLabels: label,
	}, func() float64 { return float64(sm.lastAOFOffset.Load()) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "ferrumdb",
		Subsystem:   "shard",
		Name:        "alive",
		Help:        "1 if the shard is accepting work, 0 if a persistence failure took it out of service.",
		ConstLabels: label,
	}, func() float64 {
		if sm.alive.Load() {
			return 1
		}

		return 0
	})
}
