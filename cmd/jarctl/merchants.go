package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"jacksonjar/internal/adapter/repo"
	"jacksonjar/internal/domain"
	"jacksonjar/internal/format"
)

var merchantsCmd = &cobra.Command{
	Use:   "merchants",
	Short: "List connected merchants and their Jackson counts",
	RunE:  runMerchants,
}

func runMerchants(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	logger := cliLogger("merchants")
	pool, runner, err := openRunner(ctx, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	return listMerchants(ctx, cmd.OutOrStdout(), repo.NewMerchantRepository(runner), repo.NewDonationRepository(runner))
}

func listMerchants(ctx context.Context, out io.Writer, merchants domain.MerchantRepository, donations domain.DonationRepository) error {
	list, err := merchants.List(ctx)
	if err != nil {
		return fmt.Errorf("list merchants: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTRIPE ACCOUNT\tNAME\tEMAIL\tJACKSONS")
	for _, m := range list {
		n, err := donations.CountForMerchant(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("count donations for merchant %d: %w", m.ID, err)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.StripeUserID, m.DisplayName(), m.Email, format.CountVerbose(n))
	}
	return tw.Flush()
}
