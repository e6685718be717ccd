package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/kalbasit/ferrumdb/internal/aof"
	"github.com/kalbasit/ferrumdb/internal/server"
)

func serveCommand(flagSources flagSourcesFn) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the ferrumdb server",
		Action: serveAction(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "bind",
				Usage:   "The address to bind the RESP2 listener to",
				Sources: flagSources("server.bind", "FERRUMDB_BIND"),
				Value:   "127.0.0.1",
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "The port to bind the RESP2 listener to",
				Sources: flagSources("server.port", "FERRUMDB_PORT"),
				Value:   6379,
			},
			&cli.IntFlag{
				Name:    "shards",
				Usage:   "Number of shards; 0 selects min(16, GOMAXPROCS)",
				Sources: flagSources("server.shards", "FERRUMDB_SHARDS"),
				Value:   0,
			},
			&cli.StringFlag{
				Name:    "aof-dir",
				Usage:   "Directory holding one AOF file per shard",
				Sources: flagSources("aof.dir", "FERRUMDB_AOF_DIR"),
				Value:   defaultAOFDir(),
			},
			&cli.StringFlag{
				Name:    "aof-sync",
				Usage:   "AOF fsync policy: always, everysec, or no",
				Sources: flagSources("aof.sync", "FERRUMDB_AOF_SYNC"),
				Value:   "everysec",
				Validator: func(s string) error {
					_, err := aof.ParseSyncPolicy(s)

					return err
				},
			},
			&cli.BoolFlag{
				Name:    "aof-replay",
				Usage:   "Replay each shard's AOF file on startup",
				Sources: flagSources("aof.replay", "FERRUMDB_AOF_REPLAY"),
				Value:   true,
			},
			&cli.StringFlag{
				Name:    "active-expire-interval",
				Usage:   "Cron spec for the active-expiration sweep ticker",
				Sources: flagSources("expire.active-interval", "FERRUMDB_ACTIVE_EXPIRE_INTERVAL"),
				Value:   "@every 1s",
			},
			&cli.IntFlag{
				Name:    "active-expire-sample-size",
				Usage:   "Number of TTL-bearing keys sampled per active-expiration pass",
				Sources: flagSources("expire.active-sample-size", "FERRUMDB_ACTIVE_EXPIRE_SAMPLE_SIZE"),
				Value:   20,
			},
			&cli.BoolFlag{
				Name:    "prometheus-enabled",
				Usage:   "Serve Prometheus metrics at /metrics on --prometheus-addr",
				Sources: flagSources("prometheus.enabled", "FERRUMDB_PROMETHEUS_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "prometheus-addr",
				Usage:   "Address for the /metrics HTTP endpoint",
				Sources: flagSources("prometheus.addr", "FERRUMDB_PROMETHEUS_ADDR"),
				Value:   ":9121",
			},
		},
	}
}

func serveAction() cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		logger := zerolog.Ctx(ctx).With().Str("cmd", "serve").Logger()
		ctx = logger.WithContext(ctx)
		parent := ctx

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)

		// Apply the container CPU quota before server.New derives the shard
		// count from GOMAXPROCS; autoMaxProcs below keeps it refreshed.
		if _, err := maxprocs.Set(maxprocs.Logger(diffInfof(logger))); err != nil {
			logger.Error().Err(err).Msg("failed to set GOMAXPROCS")
		}

		g.Go(func() error {
			return autoMaxProcs(ctx, autoMaxProcsInterval, logger)
		})

		syncPolicy, err := aof.ParseSyncPolicy(cmd.String("aof-sync"))
		if err != nil {
			return fmt.Errorf("parsing --aof-sync: %w", err)
		}

		cfg := server.Config{
			Bind:                   cmd.String("bind"),
			Port:                   cmd.Int("port"),
			Shards:                 cmd.Int("shards"),
			AOFDir:                 cmd.String("aof-dir"),
			AOFSync:                syncPolicy,
			AOFReplay:              cmd.Bool("aof-replay"),
			ActiveExpireInterval:   cmd.String("active-expire-interval"),
			ActiveExpireSampleSize: cmd.Int("active-expire-sample-size"),
			PrometheusEnabled:      cmd.Bool("prometheus-enabled"),
		}

		srv, err := server.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("assembling the server: %w", err)
		}

		if cfg.PrometheusEnabled {
			addr := cmd.String("prometheus-addr")

			g.Go(func() error {
				return serveMetrics(ctx, logger, addr, srv)
			})
		}

		g.Go(func() error {
			return srv.Run(ctx)
		})

		if err := g.Wait(); err != nil && parent.Err() == nil {
			return fmt.Errorf("ferrumdb exited: %w", err)
		}

		return nil
	}
}

func serveMetrics(ctx context.Context, logger zerolog.Logger, addr string, srv *server.Server) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(srv.MetricsGatherer(), promhttp.HandlerOpts{}))

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)

	go func() { errCh <- httpSrv.ListenAndServe() }()

	logger.Info().Str("addr", addr).Msg("prometheus metrics listening")

	select {
	case <-ctx.Done():
		return httpSrv.Close()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics server: %w", err)
		}

		return nil
	}
}
