package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

const usage = `usage: migrate <command> [flags]

commands:
  status            list migrations and whether they are applied
  up                apply pending migrations
  refresh -force    drop every table and recreate the schema
  seed -file FILE   upsert categories and products from a JSON file

flags:
`

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	flags := flag.NewFlagSet("migrate", flag.ContinueOnError)
	force := flags.Bool("force", false, "confirm a destructive refresh")
	seedFile := flags.String("file", "", "seed file for the seed command")
	flags.Usage = func() {
		fmt.Fprint(flags.Output(), usage)
		flags.PrintDefaults()
	}

	if len(args) == 0 {
		flags.Usage()
		return 2
	}
	command := args[0]
	if err := flags.Parse(args[1:]); err != nil {
		return 2
	}

	cfg := config.Load()

	log, err := logger.New(logger.Options{
		Env:       cfg.Server.Env,
		Level:     cfg.Server.LogLevel,
		Component: "migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := database.NewStore(database.Select(cfg.Database), log)
	defer store.Close()

	if err := run(ctx, command, store, *force, *seedFile, log); err != nil {
		log.Error("Command failed", zap.String("command", command), zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, command string, store *database.Store, force bool, seedFile string, log *zap.Logger) error {
	schema := database.NewSchema(store, log)

	switch command {
	case "status":
		statuses, err := schema.Status(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
		for _, s := range statuses {
			appliedAt := "-"
			if !s.AppliedAt.IsZero() {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, appliedAt, s.Source.Path)
		}
		return tw.Flush()

	case "up":
		return schema.Ensure(ctx)

	case "refresh":
		if !force {
			return errors.New("refresh drops all data, rerun with -force to confirm")
		}
		return schema.Refresh(ctx)

	case "seed":
		if seedFile == "" {
			return errors.New("seed requires -file")
		}
		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("failed to open seed file: %w", err)
		}
		defer f.Close()

		data, err := database.DecodeSeed(f)
		if err != nil {
			return err
		}
		_, err = database.Seed(ctx, store, data, log)
		return err

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
