package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"jacksonjar/internal/infra"
)

var (
	flagDatabaseURL string
	flagTimeout     time.Duration
	flagVerbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "jarctl",
	Short:         "Jackson Jar operator tool",
	Long:          "Apply the schema, inspect connected merchants and reconcile donations against Stripe.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", "", "Postgres URL (defaults to $DATABASE_URL)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 2*time.Minute, "Overall command timeout")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every SQL statement")

	rootCmd.AddCommand(schemaCmd, merchantsCmd, reconcileCmd)
}

func cliLogger(cmd string) zerolog.Logger {
	logger := infra.NewLogger("cli").With().Str("cmd", cmd).Logger()
	if flagVerbose {
		logger = logger.Level(zerolog.DebugLevel)
	}
	return logger
}

func databaseURL() (string, error) {
	if u := strings.TrimSpace(flagDatabaseURL); u != "" {
		return u, nil
	}
	if u := strings.TrimSpace(os.Getenv("DATABASE_URL")); u != "" {
		return u, nil
	}
	return "", errors.New("DATABASE_URL is required")
}

// openRunner connects to Postgres and wraps the pool in the marker-checking
// SQL runner. The caller closes the pool.
func openRunner(ctx context.Context, logger zerolog.Logger) (*pgxpool.Pool, *infra.SQLRunner, error) {
	dbURL, err := databaseURL()
	if err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, infra.NewSQLRunner(pool, logger), nil
}
