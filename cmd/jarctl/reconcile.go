package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jacksonjar/internal/adapter/repo"
	"jacksonjar/internal/infra"
	"jacksonjar/internal/jar"
	"jacksonjar/internal/payments"
)

var (
	flagSince  string
	flagDryRun bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Record Stripe charges that never made it into the donation table",
	Long: "Lists succeeded charges created since --since that carry jar metadata and records\n" +
		"every one without a matching donation row. Safe to run repeatedly.",
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&flagSince, "since", "72h", "Look-back window as a duration (72h) or a date (2006-01-02)")
	reconcileCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Report what would be recorded without writing")
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(flagSince, time.Now())
	if err != nil {
		return err
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	logger := cliLogger("reconcile")
	pool, runner, err := openRunner(ctx, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	platform := payments.New(payments.Config{
		SecretKey:     cfg.SecretKey,
		ClientID:      cfg.ClientID,
		WebhookSecret: cfg.WebhookSecret,
		Timeout:       cfg.StripeTimeout,
		MaxRetries:    cfg.StripeRetries,
		Logger:        logger,
	})
	svc := jar.NewService(repo.NewMerchantRepository(runner), repo.NewDonationRepository(runner), platform, jar.Settings{
		JacksonCents:   cfg.JacksonCents,
		PlatformFee:    cfg.PlatformFee,
		Currency:       cfg.Currency,
		PublishableKey: cfg.PublishableKey,
	}, logger)

	rep, err := svc.Reconcile(ctx, since, flagDryRun)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	verb := "recorded"
	if flagDryRun {
		verb = "would record"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "scanned %d charges since %s: %s %d, already present %d, orphaned %d\n",
		rep.Scanned, since.Format(time.RFC3339), verb, rep.Recorded, rep.Present, rep.Orphaned)
	return nil
}

// parseSince accepts either a look-back duration or an absolute date.
func parseSince(v string, now time.Time) (time.Time, error) {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("--since must be positive, got %s", v)
		}
		return now.Add(-d), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			if t.After(now) {
				return time.Time{}, fmt.Errorf("--since %s is in the future", v)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --since %q: want a duration like 72h or a date like 2006-01-02", v)
}
