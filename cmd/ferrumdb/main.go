package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Version defines the version of the binary, meant to be set with ldflags at build time.
//
//nolint:gochecknoglobals
var Version = "dev"

func main() {
	os.Exit(realMain())
}

func realMain() int {
	logger := newLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctx = logger.WithContext(ctx)

	cmd := newCLI()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Printf("error running ferrumdb: %s", err)

		return 1
	}

	return 0
}

func newLogger() zerolog.Logger {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return zerolog.New(zerolog.ConsoleWriter{Out: colorable.NewColorableStdout()}).
			With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
