package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "wanderlist",
		Usage: "Track places you have visited and places you want to visit",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("WANDERLIST_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			initConfigCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "wanderlist: %v\n", err)
		os.Exit(1)
	}
}
