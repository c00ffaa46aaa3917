package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/mmynk/wanderlist/internal/config"
	"github.com/mmynk/wanderlist/internal/storage/sqlite"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Action: withStore(migrateUp),
			},
			{
				Name:   "down",
				Usage:  "Roll back the most recent migration",
				Action: withStore(migrateDown),
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: withStore(migrateStatus),
			},
		},
	}
}

func initConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write an example configuration file",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("config")
			if err := config.CreateConfigFile(path); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
}

// withStore opens the database without migrating it and passes it to fn.
func withStore(fn func(context.Context, *sqlite.SQLiteStore) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		store, err := sqlite.Open(cfg.Database.Path, sqlite.Options{MaxOpenConns: cfg.Database.MaxOpenConns})
		if err != nil {
			return err
		}
		defer store.Close()

		logger.Debug("Opened database", "database", cfg.Database.Path)
		return fn(ctx, store)
	}
}

func migrateUp(ctx context.Context, store *sqlite.SQLiteStore) error {
	n, err := store.MigrateUp(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Applied %d migration(s)\n", n)
	return nil
}

func migrateDown(ctx context.Context, store *sqlite.SQLiteStore) error {
	if err := store.MigrateDown(ctx); err != nil {
		return err
	}
	fmt.Println("Rolled back 1 migration")
	return nil
}

func migrateStatus(ctx context.Context, store *sqlite.SQLiteStore) error {
	statuses, err := store.MigrationStatus(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, s := range statuses {
		applied := "-"
		if !s.AppliedAt.IsZero() {
			applied = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
	}
	return w.Flush()
}
