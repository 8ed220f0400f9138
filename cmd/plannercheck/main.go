// Package main is the entry point for the plannercheck CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"plannercheck/internal/api"
	"plannercheck/internal/backend/mongostore"
	"plannercheck/internal/backend/plannerapi"
	"plannercheck/internal/cli"
	"plannercheck/internal/commands"
	"plannercheck/internal/config"
	"plannercheck/internal/store"
)

func main() {
	// Cancel on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	backends := commands.Backends{
		Store: func(ctx context.Context, cfg *config.Config) (store.Store, error) {
			s, err := mongostore.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		API: func(cfg *config.Config) api.Client {
			return plannerapi.New(cfg)
		},
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, backends)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
