// File: cmd/memlab/main.go
// Package main
// Command-line runner for the memlab memory-management scenarios.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(ctx, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("memlab failed")
	}
}
