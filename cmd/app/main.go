package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"billing-engine/internal/adapters/cli"
	"billing-engine/internal/app"
	"billing-engine/internal/config"
	"billing-engine/internal/logger"
	"billing-engine/internal/store"

	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.WithComponent("cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	open := func(ctx context.Context) (app.ApplicationService, func(), error) {
		backend, closeFn, err := store.Open(ctx, cfg, logger.WithComponent("store"))
		if err != nil {
			return nil, closeFn, err
		}
		return app.New(backend, cfg), closeFn, nil
	}

	root := cli.NewRootCommand(open)
	root.AddCommand(migrateCommand(cfg))

	if err := root.ExecuteContext(ctx); err != nil {
		log.Debug().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

func migrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema migrations in DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
