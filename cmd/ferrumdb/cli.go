package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/json"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// flagSourcesFn builds the chain a flag's value is resolved from when it is
// not given on the command line: the config file (toml/yaml/json, whichever
// the file parses as) first, then the environment variable. A flag given on
// the command line overrides both. This matches the teacher's layered
// configuration pattern.
type flagSourcesFn func(configFileKey, envVar string) cli.ValueSourceChain

func newCLI() *cli.Command {
	var configPath string

	flagSources := func(configFileKey, envVar string) cli.ValueSourceChain {
		return cli.NewValueSourceChain(
			toml.TOML(configFileKey, altsrc.NewStringPtrSourcer(&configPath)),
			yaml.YAML(configFileKey, altsrc.NewStringPtrSourcer(&configPath)),
			json.JSON(configFileKey, altsrc.NewStringPtrSourcer(&configPath)),
			cli.EnvVar(envVar),
		)
	}

	return &cli.Command{
		Name:    "ferrumdb",
		Usage:   "an in-memory, RESP2-compatible, sharded key-value store",
		Version: Version,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			lvl, err := zerolog.ParseLevel(cmd.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("parsing --log-level %q: %w", cmd.String("log-level"), err)
			}

			logger := zerolog.Ctx(ctx).Level(lvl)

			return logger.WithContext(ctx), nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to a configuration file (toml, yaml, or json)",
				Sources:     cli.EnvVars("FERRUMDB_CONFIG_FILE"),
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Set the log level",
				Sources: flagSources("log.level", "FERRUMDB_LOG_LEVEL"),
				Value:   "info",
				Validator: func(lvl string) error {
					_, err := zerolog.ParseLevel(lvl)

					return err
				},
			},
		},
		Commands: []*cli.Command{
			serveCommand(flagSources),
		},
	}
}

// defaultAOFDir returns the user cache directory joined with "ferrumdb"
// (os.UserCacheDir, i.e. $XDG_CACHE_HOME/ferrumdb on Linux), or the OS temp
// directory itself when no cache directory can be determined.
func defaultAOFDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return os.TempDir()
	}

	return filepath.Join(dir, "ferrumdb")
}

// autoMaxProcsInterval is how often the cgroup CPU quota is re-read after
// the initial synchronous set, per the teacher's maxprocs.go.
const autoMaxProcsInterval = 30 * time.Second
