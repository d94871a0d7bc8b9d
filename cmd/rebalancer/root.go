package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rebalancer/internal/config"
	"rebalancer/internal/repository"
	"rebalancer/pkg/logger"
)

// globalFlags holds the persistent flags every subcommand reads.
type globalFlags struct {
	dbURL     string
	logLevel  string
	logPretty bool
}

// Execute builds the root command and runs it against ctx.
func Execute(ctx context.Context) error {
	env := config.LoadEnv()
	flags := globalFlags{dbURL: env.DatabaseURL, logLevel: env.LogLevel, logPretty: env.LogPretty}

	root := &cobra.Command{
		Use:   "rebalancer",
		Short: "Multi-asset portfolio rebalancing engine",
	}
	root.PersistentFlags().StringVar(&flags.dbURL, "db-url", flags.dbURL, "Postgres connection string")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", flags.logLevel, "debug|info|warn|error")
	root.PersistentFlags().BoolVar(&flags.logPretty, "log-pretty", flags.logPretty, "pretty-print logs to a terminal")

	root.AddCommand(runCmd(&flags))
	root.AddCommand(simulateCmd(&flags))

	return root.ExecuteContext(ctx)
}

// openRepository wires a zerolog.Logger plus a repository.Database from the
// resolved global flags, the shared setup every subcommand needs before it
// can load a Goal.
func openRepository(ctx context.Context, flags *globalFlags) (*repository.Database, zerolog.Logger, error) {
	log := logger.New(logger.Config{Level: flags.logLevel, Pretty: flags.logPretty})
	db, err := repository.NewDatabase(ctx, flags.dbURL)
	if err != nil {
		return nil, log, err
	}
	return db, log, nil
}
