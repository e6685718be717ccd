// Package server wires the shard executors, the AOF logs, the shard
// router, and the TCP connection handlers into one running ferrumdb
// process — the Router / Connection Handler component of spec.md §2.
package server

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kalbasit/ferrumdb/internal/aof"
	"github.com/kalbasit/ferrumdb/internal/metrics"
	"github.com/kalbasit/ferrumdb/internal/router"
	"github.com/kalbasit/ferrumdb/internal/shard"
	"github.com/kalbasit/ferrumdb/internal/store"
)

// Server owns every shard, the router that addresses them, the
// live-connection registry, and the TCP listener.
type Server struct {
	cfg      Config
	router   *router.Router
	shards   []*shard.Shard
	logs     []*aof.Log
	metrics  *metrics.Registry
	registry *registry
	runID    string

	listener net.Listener
	cron     *cron.Cron
}

// New assembles a Server from cfg. It opens (and, if configured, replays)
// every shard's AOF file but does not yet start accepting connections —
// call Run for that.
func New(ctx context.Context, cfg Config) (*Server, error) {
	logger := zerolog.Ctx(ctx)

	n := cfg.Shards
	if n <= 0 {
		n = router.NumShards()
	}

	s := &Server{
		cfg:      cfg,
		router:   router.New(n),
		shards:   make([]*shard.Shard, n),
		logs:     make([]*aof.Log, n),
		metrics:  metrics.NewRegistry(n),
		registry: newRegistry(),
		runID:    uuid.NewString(),
	}

	shardCfg := shard.Config{
		ActiveExpireSample: cfg.ActiveExpireSampleSize,
	}

	for i := 0; i < n; i++ {
		path := filepath.Join(cfg.AOFDir, fmt.Sprintf("ferrumdb_shard_%d.aof", i))

		l, err := aof.Open(path, cfg.AOFSync)
		if err != nil {
			return nil, fmt.Errorf("server: open aof for shard %d: %w", i, err)
		}

		s.logs[i] = l

		st := store.New()

		if cfg.AOFReplay {
			applied, err := l.Replay(func(payload []byte) error {
				return replayInto(st, payload)
			})
			if err != nil {
				return nil, fmt.Errorf("server: replay shard %d: %w", i, err)
			}

			logger.Info().Int("shard", i).Int("records", applied).Msg("aof replay complete")
		}

		sm := s.metrics.Shard(i)
		sm.SetKeys(st.Len())
		sm.SetAOFOffset(l.Offset())

		s.shards[i] = shard.New(i, st, l, sm, shardCfg)
	}

	return s, nil
}

// Run starts accepting TCP connections and runs every shard executor, the
// AOF fsync ticker, and the active-expiration ticker under one
// errgroup.Group tied to ctx. It blocks until ctx is canceled or a
// shard reports a fatal persistence failure, then drains and returns.
func (s *Server) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	addr := net.JoinHostPort(s.cfg.Bind, strconv.Itoa(s.cfg.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}

	s.listener = ln

	logger.Info().Str("addr", addr).Int("shards", len(s.shards)).Msg("ferrumdb listening")

	g, gctx := errgroup.WithContext(ctx)

	for _, sh := range s.shards {
		sh := sh
		g.Go(func() error { return sh.Run(gctx) })
	}

	s.cron = cron.New()
	s.scheduleMaintenance(logger)
	s.cron.Start()

	g.Go(func() error { return s.acceptLoop(gctx) })

	g.Go(func() error {
		<-gctx.Done()

		return s.shutdown(logger)
	})

	return g.Wait() //nolint:wrapcheck // errgroup errors are already shard/listener-scoped
}

func (s *Server) scheduleMaintenance(logger *zerolog.Logger) {
	expireSpec := s.cfg.ActiveExpireInterval
	if expireSpec == "" {
		expireSpec = "@every 1s"
	} else if _, err := time.ParseDuration(expireSpec); err == nil {
		expireSpec = "@every " + expireSpec
	}

	for _, sh := range s.shards {
		sh := sh

		if _, err := s.cron.AddFunc(expireSpec, func() {
			sh.ScheduleActiveExpire()
		}); err != nil {
			logger.Error().Err(err).Msg("failed to schedule active-expire ticker")
		}
	}

	for i, l := range s.logs {
		if l.Policy() != aof.SyncEverySec {
			continue
		}

		l := l
		i := i

		if _, err := s.cron.AddFunc("@every 1s", func() {
			if err := l.Flush(); err != nil {
				logger.Error().Err(err).Int("shard", i).Msg("everysec aof flush failed")
			}
		}); err != nil {
			logger.Error().Err(err).Msg("failed to schedule aof flush ticker")
		}
	}
}

func (s *Server) shutdown(logger *zerolog.Logger) error {
	logger.Info().Msg("shutting down: closing listener and flushing AOF")

	if s.listener != nil {
		_ = s.listener.Close()
	}

	if s.cron != nil {
		cronCtx := s.cron.Stop()
		<-cronCtx.Done()
	}

	for i, l := range s.logs {
		if err := l.Flush(); err != nil {
			logger.Error().Err(err).Int("shard", i).Msg("final aof flush failed")
		}
	}

	return nil
}

// RunID returns the process's run identifier, surfaced in INFO's
// "# Server" section.
func (s *Server) RunID() string { return s.runID }

// MetricsGatherer exposes the process's Prometheus registry for an HTTP
// /metrics endpoint; the CLI layer owns mounting it, per spec.md's
// "process launcher... interfaces only" exclusion.
func (s *Server) MetricsGatherer() prometheus.Gatherer { return s.metrics.Gatherer() }

// now is overridable only by tests that need a deterministic uptime in
// INFO output.
var now = time.Now

// processStart marks when this package was loaded, used to compute INFO's
// uptime_in_seconds.
var processStart = time.Now()
