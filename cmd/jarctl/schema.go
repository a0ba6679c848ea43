package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"jacksonjar/internal/infra"
	"jacksonjar/internal/sqlinline"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the merchant and donation tables if missing",
	RunE:  runSchema,
}

func runSchema(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	logger := cliLogger("schema")
	pool, runner, err := openRunner(ctx, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := applySchema(ctx, runner); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %d schema statements\n", len(sqlinline.Schema))
	return nil
}

func applySchema(ctx context.Context, sql infra.SQLExecutor) error {
	for i, stmt := range sqlinline.Schema {
		if _, err := sql.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
